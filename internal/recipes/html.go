package recipes

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"recipegen/internal/ai"
	"recipegen/internal/generation"
	"recipegen/internal/templates"
)

type pageData struct {
	State           generation.Snapshot
	Options         *Options
	Message         string
	RefreshInterval string // seconds
}

// ErrorMessage is the banner text: the inline message of this response, or
// the failure recorded in the state.
func (p pageData) ErrorMessage() string {
	if p.Message != "" {
		return p.Message
	}
	return p.State.Error
}

// ImageURL only lets generated data URIs and https links into the page.
func (p pageData) ImageURL() template.URL {
	url := p.State.ImageURL
	if strings.HasPrefix(url, "data:image/") || strings.HasPrefix(url, "https://") {
		return template.URL(url)
	}
	return template.URL(ai.PlaceholderImageURL)
}

func pageTemplate(phase generation.Phase) *template.Template {
	switch phase {
	case generation.PhaseLoading:
		return templates.Spin
	case generation.PhaseSuccess:
		return templates.Recipe
	default:
		return templates.Home
	}
}

// render writes the page for the snapshot's phase.
func (s *server) render(w http.ResponseWriter, r *http.Request, snap generation.Snapshot, status int, message string) {
	data := pageData{
		State:           snap,
		Options:         s.options,
		Message:         message,
		RefreshInterval: refreshSeconds,
	}
	var buf bytes.Buffer
	if err := pageTemplate(snap.Phase).Execute(&buf, data); err != nil {
		slog.ErrorContext(r.Context(), "page template execute error", "phase", snap.Phase, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to write page", "error", err)
	}
}
