package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateJob      = errors.New("duplicate job")
	ErrNoExtractableText = errors.New("no text found in the document")
)

// GenerationExhaustedError reports that every scene attempt failed and zero
// images were produced. It is distinct from ErrNoExtractableText so callers
// can tell "nothing to illustrate" apart from "tried and failed".
type GenerationExhaustedError struct {
	LastErr error
}

func (e *GenerationExhaustedError) Error() string {
	if e.LastErr == nil {
		return "failed to generate any images"
	}
	return fmt.Sprintf("failed to generate any images: %v", e.LastErr)
}

func (e *GenerationExhaustedError) Unwrap() error {
	return e.LastErr
}
