package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"recipegen/internal/config"
	"recipegen/internal/generation"
	"recipegen/internal/recipes"
	"recipegen/internal/sessions"
	"recipegen/internal/static"
	"recipegen/internal/templates"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

type recipeServer interface {
	Register(*http.ServeMux)
	Close()
	Wait()
}

type app struct {
	handler http.Handler
	store   *sessions.Store
	recipes recipeServer
}

// newApp wires sessions, pages and the operational endpoints around client.
// Templates and static paths must be initialised first.
func newApp(cfg *config.Config, client generation.ModelClient, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*app, error) {
	options, err := recipes.LoadOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe options: %w", err)
	}

	store := sessions.NewStore(func(id string) *generation.Orchestrator {
		return generation.New(client, generation.Config{Timeout: cfg.Generation.Timeout, SessionID: id})
	}, cfg.Sessions.TTL)

	mux := http.NewServeMux()
	static.Register(mux)

	recipeHandler := recipes.NewHandler(store, options)
	recipeHandler.Register(mux)

	ro := &readyOnce{}
	ro.Add(readinessChecks(client, options)...)
	mux.Handle("GET /ready", ro)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &app{
		handler: WithMiddleware(mux, reg),
		store:   store,
		recipes: recipeHandler,
	}, nil
}

// readinessChecks gate /ready until the pages can render and a generation
// could actually reach a model.
func readinessChecks(client generation.ModelClient, options *recipes.Options) []Readyable {
	return []Readyable{
		readyFunc(func(context.Context) error {
			if templates.Home == nil || templates.Spin == nil || templates.Recipe == nil {
				return errors.New("templates not loaded")
			}
			return nil
		}),
		readyFunc(func(ctx context.Context) error {
			if client == nil {
				return errors.New("model client not configured")
			}
			if r, ok := client.(Readyable); ok {
				return r.Ready(ctx)
			}
			return nil
		}),
		readyFunc(func(context.Context) error {
			if options == nil || len(options.Cuisines) == 0 || len(options.Diets) == 0 {
				return errors.New("recipe options not loaded")
			}
			return nil
		}),
	}
}

// runServer serves on ln until ctx is done, sweeping idle sessions alongside.
func runServer(ctx context.Context, a *app, ln net.Listener) error {
	server := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Serving recipegen", "address", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.store.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received", "cause", context.Cause(gctx))
		return gracefulShutdown(server, a.recipes)
	})
	return g.Wait()
}

func gracefulShutdown(svr *http.Server, recipeHandler recipeServer) error {
	// Give outstanding requests 25 seconds to complete (kubernetes has 30 second grace period)
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	// hijacked websocket streams are not tracked by Shutdown
	recipeHandler.Close()

	if err := svr.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown error", "error", err)
		// Force close after timeout
		if closeErr := svr.Close(); closeErr != nil {
			slog.Error("Server close error", "error", closeErr)
		}
		return err
	}

	done := make(chan struct{})
	go func() {
		recipeHandler.Wait()
		close(done)
	}()

	slog.Info("Waiting for recipe generation goroutines to complete")

	select {
	case <-done:
		slog.Info("All recipe generation goroutines completed")
	case <-ctx.Done():
		slog.Warn("Timeout waiting for recipe generation goroutines")
		return ctx.Err()
	}
	return nil
}
