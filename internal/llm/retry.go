package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"rezum-backend/internal/shared/metrics"
	"rezum-backend/internal/shared/telemetry"
)

// RetryPolicy bounds outbound LLM calls.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Timeout applies to each attempt separately.
	Timeout time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 300 * time.Millisecond, Timeout: 120 * time.Second}
}

type retryingClient struct {
	base     Client
	provider string
	policy   RetryPolicy
}

// WithRetry wraps base with a per-attempt timeout and doubling backoff
// between attempts. Only transient failures are retried.
func WithRetry(base Client, provider string, policy RetryPolicy) Client {
	if base == nil {
		return nil
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &retryingClient{base: base, provider: provider, policy: policy}
}

func (r *retryingClient) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	delay := r.policy.BaseDelay
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		out, err := r.attempt(ctx, prompt)
		if err == nil {
			metrics.IncLLMAttempt(r.provider, "ok")
			return out, nil
		}
		lastErr = err
		metrics.IncLLMAttempt(r.provider, "error")

		if ctx.Err() != nil || !ShouldRetry(err) || attempt == r.policy.MaxAttempts {
			break
		}
		telemetry.Warn("llm.retry", map[string]any{
			"provider": r.provider,
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
			"err":      err,
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay *= 2
	}
	return "", lastErr
}

func (r *retryingClient) attempt(ctx context.Context, prompt string) (string, error) {
	if r.policy.Timeout <= 0 {
		return r.base.Complete(ctx, prompt)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
	defer cancel()
	return r.base.Complete(attemptCtx, prompt)
}

// ShouldRetry reports whether err looks transient.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "client.timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof") {
		return true
	}
	return false
}
