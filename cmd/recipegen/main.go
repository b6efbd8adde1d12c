package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipegen/internal/ai"
	"recipegen/internal/config"
	"recipegen/internal/logging"
	"recipegen/internal/logsink"
	"recipegen/internal/static"
	"recipegen/internal/telemetry"
	"recipegen/internal/templates"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	var addr string
	var help bool

	flag.StringVar(&addr, "addr", "", "Address to bind (overrides LISTEN_ADDR)")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.BoolVar(&help, "h", false, "Show help message")
	flag.Parse()

	if help {
		showHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if addr != "" {
		cfg.Addr = addr
	}

	if err := run(cfg); err != nil {
		slog.Error("recipegen exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown error", "error", err)
		}
	}()

	var extra []slog.Handler
	if providers.LogHandler != nil {
		extra = append(extra, providers.LogHandler)
	}
	if cfg.Log.SinkEnabled() {
		sink, err := logsink.New(ctx, logsink.Config{
			AccountName: cfg.Log.SinkAccount,
			AccountKey:  cfg.Log.SinkKey,
			Container:   cfg.Log.SinkContainer,
			Level:       logging.ParseLevel(cfg.Log.Level),
		})
		if err != nil {
			return fmt.Errorf("failed to create log sink: %w", err)
		}
		defer sink.Close()
		extra = append(extra, sink)
	}
	logging.New(cfg.Log.Level, extra...)

	client, err := ai.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	static.Init()
	if err := templates.Init(static.StyleAssetPath, static.ScriptAssetPath); err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	a, err := newApp(cfg, client, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return runServer(ctx, a, ln)
}

func showHelp() {
	fmt.Println("recipegen - AI Recipe Generator")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  recipegen [-addr :8080]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -addr           Address to bind (default LISTEN_ADDR or :8080)")
	fmt.Println("  -help, -h       Show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  GEMINI_API_KEY  Gemini key for recipes and images (alias API_KEY)")
	fmt.Println("  AI_PROVIDER     gemini, openrouter, anthropic or mock")
}
