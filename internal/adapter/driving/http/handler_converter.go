package httphandler

import (
	"errors"
	"net/http"
)

const (
	conversionStatusHeader = "X-Conversion-Status"
	providerName           = "Google Gemini"
)

// httpStreamSink writes conversion fragments to a chunked text/plain
// response, flushing after every fragment.
type httpStreamSink struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newHTTPStreamSink(w http.ResponseWriter) *httpStreamSink {
	return &httpStreamSink{w: w, rc: http.NewResponseController(w)}
}

func (s *httpStreamSink) Begin() error {
	h := s.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Trailer", conversionStatusHeader)
	s.w.WriteHeader(http.StatusOK)
	return s.flush()
}

func (s *httpStreamSink) Send(fragment string) error {
	if _, err := s.w.Write([]byte(fragment)); err != nil {
		return err
	}
	return s.flush()
}

func (s *httpStreamSink) flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// Convert relays a conversion as a chunked plain-text stream. Failures before
// the first fragment are JSON errors; later failures end the stream with an
// in-band error marker and an "interrupted" trailer.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, _ := userFromContext(r.Context())
	res, err := h.converter.Convert(r.Context(), req.toModel(), newHTTPStreamSink(w))

	if res.Started {
		status := "complete"
		if res.Interrupted {
			status = "interrupted"
		}
		w.Header().Set(conversionStatusHeader, status)
	}

	switch {
	case err == nil:
		h.logger.Info("conversion completed",
			"user_id", user.ID,
			"source_lang", req.SourceLang,
			"target_lang", req.TargetLang,
			"fragments", res.Fragments,
			"bytes", res.Bytes,
		)
	case r.Context().Err() != nil:
		h.logger.Info("conversion canceled by client", "user_id", user.ID, "fragments", res.Fragments)
	case res.Started:
		h.logger.Error("conversion interrupted", "user_id", user.ID, "fragments", res.Fragments, "error", err)
	default:
		h.writeServiceError(w, err, "convert")
	}
}

// Languages returns the supported language catalog.
func (h *Handler) Languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, LanguagesResponse{
		Message:    "All languages supported with Gemini AI-powered conversion",
		Languages:  toLanguageResponses(h.converter.Languages()),
		AIPowered:  true,
		AIProvider: providerName,
	})
}

// Probe runs a short completion to check provider connectivity.
func (h *Handler) Probe(w http.ResponseWriter, r *http.Request) {
	if !h.converter.Configured() {
		writeJSON(w, http.StatusInternalServerError, ProbeResponse{Message: "Gemini API key not configured"})
		return
	}

	reply, err := h.converter.Probe(r.Context())
	if err != nil {
		status, _ := statusFor(err)
		h.logger.Error("provider probe failed", "error", err)
		writeJSON(w, status, ProbeResponse{Message: "Gemini AI connection failed"})
		return
	}

	writeJSON(w, http.StatusOK, ProbeResponse{
		Message:      "Gemini AI connection successful",
		Success:      true,
		TestResponse: reply,
		APIProvider:  providerName,
		Model:        h.converter.Model(),
	})
}

