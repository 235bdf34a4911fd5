package gemini

import (
	"context"
	"errors"
	"io"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

// scripted returns a streamFunc that yields the given texts and then err, if non-nil.
func scripted(texts []string, err error, yielded *int) streamFunc {
	return func(_ context.Context, _, _ string) iter.Seq2[*genai.GenerateContentResponse, error] {
		return func(yield func(*genai.GenerateContentResponse, error) bool) {
			for _, text := range texts {
				if yielded != nil {
					*yielded++
				}
				if !yield(textResponse(text), nil) {
					return
				}
			}
			if err != nil {
				yield(nil, err)
			}
		}
	}
}

func drain(t *testing.T, c *Client) ([]string, error) {
	t.Helper()
	s, err := c.StreamCompletion(context.Background(), "prompt")
	require.NoError(t, err)
	defer s.Close()

	var out []string
	for {
		frag, err := s.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, frag)
	}
}

func TestClient_StreamsFragments(t *testing.T) {
	c := newClient(Config{}, scripted([]string{"a", "", "b"}, nil, nil))

	out, err := drain(t, c)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, out, "empty chunks are skipped")
	assert.Equal(t, DefaultModel, c.Model())
}

func TestClient_PassesModelAndPrompt(t *testing.T) {
	var gotModel, gotPrompt string
	c := newClient(Config{Model: "gemini-test"}, func(_ context.Context, m, p string) iter.Seq2[*genai.GenerateContentResponse, error] {
		gotModel, gotPrompt = m, p
		return scripted(nil, nil, nil)(context.Background(), m, p)
	})

	_, err := drain(t, c)
	require.NoError(t, err)

	assert.Equal(t, "gemini-test", gotModel)
	assert.Equal(t, "prompt", gotPrompt)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "429 api error", err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, want: model.ErrRateLimited},
		{name: "quota pointer error", err: &genai.APIError{Code: 400, Message: "Quota exceeded for metric"}, want: model.ErrRateLimited},
		{name: "bad api key", err: genai.APIError{Code: 400, Message: "API key not valid"}, want: model.ErrServiceUnavailable},
		{name: "permission denied", err: genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, want: model.ErrServiceUnavailable},
		{name: "transport error", err: errors.New("connection reset"), want: model.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(Config{}, scripted([]string{"partial"}, tt.err, nil))

			out, err := drain(t, c)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, []string{"partial"}, out)
		})
	}
}

func TestClient_CloseStopsUpstream(t *testing.T) {
	var yielded int
	c := newClient(Config{}, scripted([]string{"1", "2", "3", "4"}, nil, &yielded))

	s, err := c.StreamCompletion(context.Background(), "prompt")
	require.NoError(t, err)

	frag, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", frag)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, yielded, "no fragments are produced after close")

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestClient_CanceledContext(t *testing.T) {
	c := newClient(Config{}, scripted([]string{"1", "2"}, nil, nil))

	s, err := c.StreamCompletion(context.Background(), "prompt")
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_LocalRateLimit(t *testing.T) {
	c := newClient(Config{RequestsPerSecond: 0.001, Burst: 1}, scripted([]string{"ok"}, nil, nil))

	first, err := c.StreamCompletion(context.Background(), "prompt")
	require.NoError(t, err)
	defer first.Close()

	_, err = c.StreamCompletion(context.Background(), "prompt")
	require.ErrorIs(t, err, model.ErrRateLimited)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	require.Error(t, err)
}
