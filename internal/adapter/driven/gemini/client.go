// Package gemini adapts the Google Gemini API to the Completer port.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.0-flash"

// Compile-time interface satisfaction check.
var _ driven.Completer = (*Client)(nil)

// Config holds the provider settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // Overrides the API endpoint; empty uses the default.

	// RequestsPerSecond bounds how fast new streams are opened. Zero disables the limit.
	RequestsPerSecond float64
	Burst             int
}

// streamFunc opens a response stream for a prompt.
type streamFunc func(ctx context.Context, model, prompt string) iter.Seq2[*genai.GenerateContentResponse, error]

// Client streams completions from Gemini.
type Client struct {
	model   string
	open    streamFunc
	limiter *rate.Limiter
}

// NewClient creates a Client authenticated with cfg.APIKey.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	open := func(ctx context.Context, model, prompt string) iter.Seq2[*genai.GenerateContentResponse, error] {
		return gc.Models.GenerateContentStream(ctx, model, genai.Text(prompt), nil)
	}

	return newClient(cfg, open), nil
}

func newClient(cfg Config, open streamFunc) *Client {
	c := &Client{
		model: cfg.Model,
		open:  open,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if cfg.RequestsPerSecond > 0 {
		burst := max(cfg.Burst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// StreamCompletion opens a streaming generation for prompt. Requests over the
// local rate limit fail immediately with model.ErrRateLimited.
func (c *Client) StreamCompletion(ctx context.Context, prompt string) (driven.CompletionStream, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, fmt.Errorf("%w: local request limit reached", model.ErrRateLimited)
	}

	next, stop := iter.Pull2(c.open(ctx, c.model, prompt))
	return &stream{next: next, stop: stop}, nil
}

// stream adapts the push iterator returned by the SDK to a pull-based CompletionStream.
type stream struct {
	next   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	done   bool
	closed bool
}

func (s *stream) Next(ctx context.Context) (string, error) {
	for {
		if s.done || s.closed {
			return "", io.EOF
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err, ok := s.next()
		if !ok {
			s.done = true
			return "", io.EOF
		}
		if err != nil {
			s.done = true
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", classify(err)
		}
		if resp == nil {
			continue
		}
		if text := resp.Text(); text != "" {
			return text, nil
		}
	}
}

func (s *stream) Close() error {
	if !s.closed {
		s.closed = true
		s.stop()
	}
	return nil
}

// classify maps SDK errors onto the domain error taxonomy.
func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
			apiErr = *apiErrPtr
		}
	}

	msg := strings.ToLower(apiErr.Message + " " + err.Error())

	switch {
	case apiErr.Code == http.StatusTooManyRequests,
		apiErr.Status == "RESOURCE_EXHAUSTED",
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%w: %w", model.ErrRateLimited, err)
	case apiErr.Code == http.StatusUnauthorized,
		apiErr.Code == http.StatusForbidden,
		apiErr.Status == "UNAUTHENTICATED",
		apiErr.Status == "PERMISSION_DENIED",
		strings.Contains(msg, "api key"):
		return fmt.Errorf("%w: authentication failed: %w", model.ErrServiceUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", model.ErrServiceUnavailable, err)
	}
}
