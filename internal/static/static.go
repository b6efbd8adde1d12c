package static

import (
	"crypto/sha256"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
)

//go:embed style.css
var styleCSS []byte

//go:embed live.js
var liveJS []byte

//go:embed favicon.svg
var favicon []byte

var (
	StyleAssetPath  string
	ScriptAssetPath string
)

func Init() {
	StyleAssetPath = hashedPath("style", styleCSS, "css")
	ScriptAssetPath = hashedPath("live", liveJS, "js")
}

func hashedPath(name string, content []byte, ext string) string {
	hash := fmt.Sprintf("%x", sha256.Sum256(content))
	return fmt.Sprintf("/static/%s.%s.%s", name, hash[:12], ext)
}

// Register serves static assets. Init must run first.
func Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+StyleAssetPath, asset(styleCSS, "text/css; charset=utf-8"))
	mux.HandleFunc("GET "+ScriptAssetPath, asset(liveJS, "application/javascript; charset=utf-8"))
	mux.HandleFunc("GET /favicon.svg", asset(favicon, "image/svg+xml"))
}

func asset(content []byte, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		if _, err := w.Write(content); err != nil {
			slog.ErrorContext(r.Context(), "failed to write static asset", "path", r.URL.Path, "error", err)
		}
	}
}
