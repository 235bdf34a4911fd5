package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
)

// ErrorMarker prefixes the in-band notice appended to a stream that failed
// after the response was committed. Clients look for it to show an error state.
const ErrorMarker = "// Error:"

const (
	probePrompt  = "Say hello"
	probeTimeout = 30 * time.Second
)

// StreamSink is the client side of a conversion stream. Begin commits the
// response to streaming mode and is called at most once, before any Send.
type StreamSink interface {
	Begin() error
	Send(fragment string) error
}

// ConvertResult summarizes a relayed conversion.
type ConvertResult struct {
	Started     bool // Begin was called; errors after this point are reported in-band.
	Fragments   int
	Bytes       int
	Interrupted bool
}

// ConverterService relays a conversion from the completion provider to a
// client sink. Each call owns exactly one upstream stream.
type ConverterService struct {
	completer     driven.Completer
	streamTimeout time.Duration
	logger        *slog.Logger
}

// NewConverterService creates a ConverterService. completer may be nil when no
// provider credentials are configured; conversions then fail with
// model.ErrServiceUnavailable. A zero streamTimeout disables the time bound.
func NewConverterService(completer driven.Completer, streamTimeout time.Duration, logger *slog.Logger) *ConverterService {
	return &ConverterService{
		completer:     completer,
		streamTimeout: streamTimeout,
		logger:        logger,
	}
}

// Configured reports whether a completion provider is available.
func (s *ConverterService) Configured() bool {
	return s.completer != nil
}

// Model returns the provider model identifier, or "" when unconfigured.
func (s *ConverterService) Model() string {
	if s.completer == nil {
		return ""
	}
	return s.completer.Model()
}

// Languages returns the languages offered by the converter.
func (s *ConverterService) Languages() []model.Language {
	return model.Languages()
}

// Convert validates req, opens one upstream stream, and forwards cleaned
// fragments to sink in arrival order.
//
// Errors returned while ConvertResult.Started is false happen before the sink
// was committed and should be reported as a structured response. Once
// started, upstream failures are appended to the stream as an ErrorMarker
// notice and returned wrapping model.ErrUpstreamFailure. Cancelling ctx stops
// the upstream stream and nothing more is written.
func (s *ConverterService) Convert(ctx context.Context, req model.ConversionRequest, sink StreamSink) (ConvertResult, error) {
	var res ConvertResult

	prompt, err := BuildPrompt(req)
	if err != nil {
		return res, err
	}
	if s.completer == nil {
		return res, fmt.Errorf("%w: completion provider not configured", model.ErrServiceUnavailable)
	}

	if s.streamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.streamTimeout)
		defer cancel()
	}

	stream, err := s.completer.StreamCompletion(ctx, prompt)
	if err != nil {
		return res, preStreamError(err)
	}
	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			s.logger.Warn("failed to close completion stream", "error", closeErr)
		}
	}()

	// Pull the first fragment before committing so that credential and
	// request errors still get a real status code.
	fragment, err := stream.Next(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return res, preStreamError(err)
	}

	// The response may already be committed when Begin fails.
	res.Started = true
	if beginErr := sink.Begin(); beginErr != nil {
		return res, fmt.Errorf("begin stream: %w", beginErr)
	}

	var fences FenceStripper
	for err == nil {
		if sendErr := send(sink, fences.Write(fragment), &res); sendErr != nil {
			return res, fmt.Errorf("relay fragment: %w", sendErr)
		}
		fragment, err = stream.Next(ctx)
	}

	if errors.Is(err, io.EOF) {
		if sendErr := send(sink, fences.Flush(), &res); sendErr != nil {
			return res, fmt.Errorf("relay fragment: %w", sendErr)
		}
		return res, nil
	}

	res.Interrupted = true
	if errors.Is(ctx.Err(), context.Canceled) {
		return res, fmt.Errorf("client disconnected: %w", ctx.Err())
	}

	if sendErr := send(sink, fences.Flush(), &res); sendErr != nil {
		return res, fmt.Errorf("relay fragment: %w", sendErr)
	}
	notice := fmt.Sprintf("\n\n%s %s\n", ErrorMarker, interruptNotice(ctx, err))
	if sendErr := sink.Send(notice); sendErr != nil {
		s.logger.Warn("failed to send error notice", "error", sendErr)
	}

	return res, fmt.Errorf("%w: %w", model.ErrUpstreamFailure, err)
}

// Probe runs a short completion to verify provider connectivity and returns
// the provider's reply.
func (s *ConverterService) Probe(ctx context.Context) (string, error) {
	if s.completer == nil {
		return "", fmt.Errorf("%w: completion provider not configured", model.ErrServiceUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	stream, err := s.completer.StreamCompletion(ctx, probePrompt)
	if err != nil {
		return "", preStreamError(err)
	}
	defer stream.Close()

	var b strings.Builder
	for {
		fragment, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", preStreamError(err)
		}
		b.WriteString(fragment)
	}

	return strings.TrimSpace(b.String()), nil
}

func send(sink StreamSink, text string, res *ConvertResult) error {
	if text == "" {
		return nil
	}
	res.Fragments++
	res.Bytes += len(text)
	return sink.Send(text)
}

// preStreamError maps a provider failure that happened before the sink was
// committed onto the error taxonomy.
func preStreamError(err error) error {
	switch {
	case errors.Is(err, model.ErrRateLimited), errors.Is(err, model.ErrServiceUnavailable):
		return err
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("client disconnected: %w", err)
	default:
		return fmt.Errorf("%w: %w", model.ErrServiceUnavailable, err)
	}
}

func interruptNotice(ctx context.Context, err error) string {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "conversion timed out before the AI service finished"
	case errors.Is(err, model.ErrRateLimited):
		return "AI service quota exceeded, please try again later"
	default:
		return "conversion interrupted by an AI service error"
	}
}
