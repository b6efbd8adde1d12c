package recipes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"recipegen/internal/ai"
	"recipegen/internal/generation"
	"recipegen/internal/sessions"
)

var (
	ErrEmptyIngredient   = errors.New("Please enter an ingredient.")
	ErrMissingIngredient = errors.New("missing ingredient")
)

// refreshSeconds is the loading page fallback for browsers without websockets.
const refreshSeconds = "3"

type server struct {
	sessions *sessions.Store
	options  *Options

	done      chan struct{}
	closeOnce sync.Once
}

// NewHandler serves the recipe generator page and its form actions. Each
// browser gets its own orchestrator through the session store.
func NewHandler(store *sessions.Store, options *Options) *server {
	return &server{
		sessions: store,
		options:  options,
		done:     make(chan struct{}),
	}
}

func (s *server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /ingredients", s.handleAddIngredient)
	mux.HandleFunc("POST /ingredients/remove", s.handleRemoveIngredient)
	mux.HandleFunc("POST /preferences", s.handlePreferences)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /start-over", s.handleStartOver)
	mux.HandleFunc("POST /abandon", s.handleAbandon)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /events", s.handleEvents)
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.snapshot(r), http.StatusOK, "")
}

// snapshot reads the caller's state without creating a session. Only form
// posts create one, so page views and polling never grow the store.
func (s *server) snapshot(r *http.Request) generation.Snapshot {
	if _, o, ok := s.sessions.Existing(r); ok {
		return o.Snapshot()
	}
	return generation.Snapshot{Phase: generation.PhaseIdle, Constraints: ai.DefaultConstraints()}
}

func (s *server) handleAddIngredient(w http.ResponseWriter, r *http.Request) {
	_, o := s.sessions.FromRequest(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	ingredient := strings.TrimSpace(r.PostForm.Get("ingredient"))
	if ingredient == "" {
		s.renderError(w, r, o, ErrEmptyIngredient)
		return
	}
	if _, err := o.AddIngredient(ingredient); err != nil {
		s.renderError(w, r, o, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	_, o := s.sessions.FromRequest(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	ingredient := r.PostForm.Get("ingredient")
	if strings.TrimSpace(ingredient) == "" {
		http.Error(w, ErrMissingIngredient.Error(), http.StatusBadRequest)
		return
	}
	if _, err := o.RemoveIngredient(ingredient); err != nil {
		s.renderError(w, r, o, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	_, o := s.sessions.FromRequest(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	if err := s.applyPreferences(o, r); err != nil {
		s.renderError(w, r, o, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleGenerate saves the submitted preferences and starts generation. The
// response does not wait for the model; the loading page follows the state.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, o := s.sessions.FromRequest(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	if err := s.applyPreferences(o, r); err != nil {
		s.renderError(w, r, o, err)
		return
	}
	if err := o.Generate(ctx); err != nil {
		slog.InfoContext(ctx, "generation rejected", "session", id, "error", err)
		s.renderError(w, r, o, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// applyPreferences only touches the fields present in the form.
func (s *server) applyPreferences(o *generation.Orchestrator, r *http.Request) error {
	cuisine := strings.TrimSpace(r.PostForm.Get("cuisine"))
	diet := strings.TrimSpace(r.PostForm.Get("diet"))
	if err := s.options.Validate(cuisine, diet); err != nil {
		return err
	}
	if r.PostForm.Has("cuisine") {
		if err := o.SetCuisine(cuisine); err != nil {
			return err
		}
	}
	if r.PostForm.Has("diet") {
		if err := o.SetDiet(diet); err != nil {
			return err
		}
	}
	return nil
}

func (s *server) handleStartOver(w http.ResponseWriter, r *http.Request) {
	_, o, ok := s.sessions.Existing(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := o.StartOver(); err != nil {
		s.renderError(w, r, o, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	id, o, ok := s.sessions.Existing(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if o.Snapshot().Loading() {
		slog.InfoContext(r.Context(), "generation abandoned", "session", id)
	}
	o.Abandon()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(r)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode state", "error", err)
	}
}

// statusFor maps orchestrator and form errors to a response code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, generation.ErrBusy), errors.Is(err, generation.ErrLocked):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *server) renderError(w http.ResponseWriter, r *http.Request, o *generation.Orchestrator, err error) {
	s.render(w, r, o.Snapshot(), statusFor(err), err.Error())
}

// Close ends open event streams.
func (s *server) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Wait blocks until all background generations have finished.
func (s *server) Wait() {
	s.sessions.Wait()
}
