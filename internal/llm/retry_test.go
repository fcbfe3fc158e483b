package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rezum-backend/internal/shared/telemetry"
)

type scriptedClient struct {
	calls   atomic.Int32
	results []error
	block   bool
}

func (s *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	n := int(s.calls.Add(1)) - 1
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if n < len(s.results) && s.results[n] != nil {
		return "", s.results[n]
	}
	return "reply to " + prompt, nil
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Timeout: time.Second}
}

func TestRetryRecoversFromTransientStatus(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	base := &scriptedClient{results: []error{
		&StatusError{Provider: "test", StatusCode: http.StatusServiceUnavailable},
		&StatusError{Provider: "test", StatusCode: http.StatusTooManyRequests},
	}}

	out, err := WithRetry(base, "test", fastPolicy(3)).Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "reply to hi", out)
	assert.Equal(t, int32(3), base.calls.Load())
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	transient := &StatusError{Provider: "test", StatusCode: http.StatusBadGateway}
	base := &scriptedClient{results: []error{transient, transient, transient, transient}}

	_, err := WithRetry(base, "test", fastPolicy(2)).Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, int32(2), base.calls.Load())
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	base := &scriptedClient{results: []error{&StatusError{Provider: "test", StatusCode: http.StatusUnauthorized}}}

	_, err := WithRetry(base, "test", fastPolicy(3)).Complete(context.Background(), "hi")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, int32(1), base.calls.Load())
}

func TestRetryPerAttemptTimeout(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	base := &scriptedClient{block: true}
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, Timeout: 20 * time.Millisecond}

	start := time.Now()
	_, err := WithRetry(base, "test", policy).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), base.calls.Load())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRetryHonorsCanceledParent(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	base := &scriptedClient{block: true}

	_, err := WithRetry(base, "test", fastPolicy(3)).Complete(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), base.calls.Load())
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "not configured", err: fmt.Errorf("wrap: %w", ErrNotConfigured), want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: true},
		{name: "500", err: &StatusError{StatusCode: 500}, want: true},
		{name: "429", err: &StatusError{StatusCode: 429}, want: true},
		{name: "400", err: &StatusError{StatusCode: 400}, want: false},
		{name: "connection reset", err: errors.New("read tcp: connection reset by peer"), want: true},
		{name: "other", err: errors.New("invalid prompt"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetry(tt.err))
		})
	}
}

func TestPlaceholderClient(t *testing.T) {
	_, err := PlaceholderClient{Reason: "GOOGLE_API_KEY is empty"}.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}
