// Package ai holds the completion providers the verdict stage talks to.
// Providers return free text; callers must treat it as untrusted.
package ai

import (
	"context"
	"errors"
)

var (
	// ErrEmptyCompletion is returned when a provider answers with no text.
	ErrEmptyCompletion = errors.New("ai: empty completion")
	// ErrNoAPIKey is returned when a hosted provider is configured without a key.
	ErrNoAPIKey = errors.New("ai: API key is required")
)

// Completer turns a prompt into free text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
