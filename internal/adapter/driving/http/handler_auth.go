package httphandler

import (
	"net/http"
	"time"

	"github.com/ericfisherdev/codeconvert/internal/application"
	"github.com/ericfisherdev/codeconvert/internal/domain/model"
)

const sessionCookieName = "auth_token"

// Register creates an account and starts a session.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.auth.Register(r.Context(), application.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.writeServiceError(w, err, "register")
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    toUserResponse(res.User),
	})
}

// Login verifies credentials and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err, "login")
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    toUserResponse(res.User),
	})
}

// Logout clears the session cookie. It succeeds with or without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), sessionToken(r)); err != nil {
		h.writeServiceError(w, err, "logout")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Profile returns the authenticated user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided, authorization denied")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: toUserResponse(user)})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token model.SessionToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		MaxAge:   max(int(time.Until(token.ExpiresAt).Seconds()), 1),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
