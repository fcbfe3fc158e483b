package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Client abstracts LLM providers. Complete sends a single user prompt and
// returns the model's text reply.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client when no provider
// credentials are available.
var ErrNotConfigured = errors.New("llm provider not configured")

// ErrEmptyResponse is returned when a provider answers without text.
var ErrEmptyResponse = errors.New("llm response empty")

// PlaceholderClient stands in for a provider that could not be built.
type PlaceholderClient struct {
	Reason string
}

// Complete returns ErrNotConfigured.
func (p PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	if p.Reason != "" {
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, p.Reason)
	}
	return "", ErrNotConfigured
}

// StatusError is a non-success HTTP answer from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s http status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
