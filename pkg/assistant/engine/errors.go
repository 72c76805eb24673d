package engine

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage    = errors.New("Message cannot be empty")
	ErrSessionNotFound = errors.New("chat session not found")
	ErrAPIKeyMissing   = errors.New("OpenAI API key not configured")
)

// ProviderError wraps a failed model call. The user message and a system
// error note are already stored when it is returned.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("AI provider request failed (%s): %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
