package model

import (
	"fmt"
	"strings"
)

// MaxSourceBytes bounds the size of source code accepted for a single conversion.
const MaxSourceBytes = 100 * 1024

// ConversionRequest is a single, ephemeral request to translate source code
// from one language to another. It is never persisted.
type ConversionRequest struct {
	SourceCode string
	SourceLang string
	TargetLang string
}

// Normalize trims and lower-cases the language identifiers.
func (r ConversionRequest) Normalize() ConversionRequest {
	r.SourceLang = strings.ToLower(strings.TrimSpace(r.SourceLang))
	r.TargetLang = strings.ToLower(strings.TrimSpace(r.TargetLang))
	return r
}

// Validate reports ErrInvalidRequest when a field is missing, the source is
// whitespace-only or too large, or both languages are the same.
// Language identifiers are compared after normalization.
func (r ConversionRequest) Validate() error {
	n := r.Normalize()

	if n.SourceCode == "" || n.SourceLang == "" || n.TargetLang == "" {
		return fmt.Errorf("%w: source code, source language, and target language are required", ErrInvalidRequest)
	}
	if strings.TrimSpace(n.SourceCode) == "" {
		return fmt.Errorf("%w: source code is empty", ErrInvalidRequest)
	}
	if len(n.SourceCode) > MaxSourceBytes {
		return fmt.Errorf("%w: source code exceeds %d bytes", ErrInvalidRequest, MaxSourceBytes)
	}
	if n.SourceLang == n.TargetLang {
		return fmt.Errorf("%w: source and target languages cannot be the same", ErrInvalidRequest)
	}

	return nil
}
