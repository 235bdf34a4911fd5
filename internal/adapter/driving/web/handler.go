// Package web serves the embedded browser client for the auth and conversion API.
package web

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
)

// Handler serves the client shell page.
type Handler struct {
	index  []byte
	logger *slog.Logger
}

// NewHandler loads the embedded index page.
func NewHandler(logger *slog.Logger) (*Handler, error) {
	index, err := fs.ReadFile(StaticFS, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("read embedded index: %w", err)
	}
	return &Handler{index: index, logger: logger}, nil
}

// Index writes the client shell. Session state is resolved client-side via /api/auth/profile.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:")
	if _, err := w.Write(h.index); err != nil {
		h.logger.Debug("failed to write index page", "error", err)
	}
}
