package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/codeconvert/internal/application"
	"github.com/ericfisherdev/codeconvert/internal/domain/model"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	auth          *application.AuthService
	converter     *application.ConverterService
	health        *application.HealthService
	secureCookies bool
	allowedOrigin string
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. secureCookies
// marks the session cookie Secure; allowedOrigin is the single browser origin
// permitted to make credentialed cross-origin and WebSocket requests.
func NewHandler(
	auth *application.AuthService,
	converter *application.ConverterService,
	health *application.HealthService,
	secureCookies bool,
	allowedOrigin string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:          auth,
		converter:     converter,
		health:        health,
		secureCookies: secureCookies,
		allowedOrigin: allowedOrigin,
		logger:        logger,
	}
}

// RegisterAPIRoutes registers all /api routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/profile", h.requireAuth(h.Profile))

	mux.HandleFunc("POST /api/converter/convert", h.requireAuth(h.Convert))
	mux.HandleFunc("GET /api/converter/languages", h.requireAuth(h.Languages))
	mux.HandleFunc("GET /api/converter/test", h.requireAuth(h.Probe))
	mux.HandleFunc("GET /api/converter/stream", h.requireAuth(h.Stream))

	mux.HandleFunc("GET /api/health", h.Health)
}

// ApplyMiddleware wraps the handler with recovery, CORS, and request logging.
func ApplyMiddleware(next http.Handler, allowedOrigin string, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = corsMiddleware(allowedOrigin, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// NewServeMux creates an http.Handler serving only the API routes, wrapped
// with the standard middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, h.allowedOrigin, logger)
}

// Health reports whether the credential store is reachable and whether a
// completion provider is configured.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.health.Check(r.Context())

	resp := HealthResponse{
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Database: "ok",
		Provider: "configured",
	}
	if !status.ProviderConfigured {
		resp.Provider = "not_configured"
	}

	code := http.StatusOK
	if !status.Healthy() {
		h.logger.Warn("health check failed", "error", status.StoreErr)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, resp)
}

// decodeBody decodes a size-limited JSON request body into v, writing a 400
// or 413 response and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// statusFor maps the domain error taxonomy onto an HTTP status and a message
// that is safe to show to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest, detail(err, model.ErrInvalidRequest)
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, detail(err, model.ErrUnauthorized)
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, detail(err, model.ErrConflict)
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests, "AI service quota exceeded. Please try again later."
	case errors.Is(err, model.ErrServiceUnavailable):
		return http.StatusInternalServerError, "AI service is unavailable. Please try again later."
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" || msg == sentinel.Error() {
		return sentinel.Error()
	}
	return msg
}

// writeServiceError writes the mapped error response, logging anything that
// is not the caller's fault.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, op string) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", "error", err)
	} else if status == http.StatusTooManyRequests {
		h.logger.Warn(op+" rate limited", "error", err)
	}
	writeError(w, status, msg)
}
