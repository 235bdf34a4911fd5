package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// MessageResponse is the body of error responses and of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the JSON representation of a user. Credential material is never included.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// AuthResponse is returned by register, login, and profile.
type AuthResponse struct {
	Message string       `json:"message,omitempty"`
	User    UserResponse `json:"user"`
}

// RegisterRequest is the JSON body for the register endpoint.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the JSON body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ConvertRequest is the JSON body for the convert endpoint and the first
// message of a WebSocket conversion.
type ConvertRequest struct {
	SourceCode string `json:"sourceCode"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// LanguageResponse is a single entry of the language catalog.
type LanguageResponse struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Supported bool   `json:"supported"`
}

// LanguagesResponse is the JSON body of the languages endpoint.
type LanguagesResponse struct {
	Message    string             `json:"message"`
	Languages  []LanguageResponse `json:"languages"`
	AIPowered  bool               `json:"aiPowered"`
	AIProvider string             `json:"aiProvider"`
}

// ProbeResponse is the JSON body of the provider connectivity check.
type ProbeResponse struct {
	Message      string `json:"message"`
	Success      bool   `json:"success"`
	TestResponse string `json:"testResponse,omitempty"`
	APIProvider  string `json:"apiProvider,omitempty"`
	Model        string `json:"model,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database"`
	Provider string `json:"provider"`
}

// StreamMessage is a frame sent to WebSocket conversion clients.
type StreamMessage struct {
	Type    string `json:"type"` // "chunk", "done", or "error"
	Data    string `json:"data,omitempty"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r ConvertRequest) toModel() model.ConversionRequest {
	return model.ConversionRequest{
		SourceCode: r.SourceCode,
		SourceLang: r.SourceLang,
		TargetLang: r.TargetLang,
	}
}

// toUserResponse converts a domain PublicUser to its JSON representation.
func toUserResponse(u model.PublicUser) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toLanguageResponses(langs []model.Language) []LanguageResponse {
	resp := make([]LanguageResponse, 0, len(langs))
	for _, l := range langs {
		resp = append(resp, LanguageResponse{Value: l.Value, Label: l.Label, Supported: l.Supported})
	}
	return resp
}
