package driven

import "context"

// Completer defines the driven port for the generative-AI text completion
// provider. Errors should wrap model.ErrRateLimited or
// model.ErrServiceUnavailable so callers can classify them.
type Completer interface {
	// StreamCompletion submits the prompt and returns the ordered fragment
	// stream. The provider connection lives until the stream is closed or ctx ends.
	StreamCompletion(ctx context.Context, prompt string) (CompletionStream, error)

	// Model returns the provider model identifier, for diagnostics.
	Model() string
}

// CompletionStream is a pull-based sequence of text fragments.
// It is not safe for concurrent use.
type CompletionStream interface {
	// Next returns the next non-empty fragment, io.EOF after the last one, or
	// the provider error that terminated the stream.
	Next(ctx context.Context) (string, error)

	// Close releases the upstream connection. It is safe to call more than once.
	Close() error
}
