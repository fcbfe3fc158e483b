package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rezum-backend/internal/llm"
	"rezum-backend/internal/shared/metrics"
	"rezum-backend/internal/shared/telemetry"
	"rezum-backend/internal/uploads"
)

// TextSource yields the extracted text of a stored file.
type TextSource interface {
	ExtractText(ctx context.Context, fileID string) (string, error)
}

// Service runs resume analyses.
type Service struct {
	Text     TextSource
	LLM      llm.Client
	Provider string
	Now      func() time.Time
}

// NewService constructs a Service.
func NewService(text TextSource, client llm.Client, provider string) *Service {
	return &Service{Text: text, LLM: client, Provider: provider, Now: time.Now}
}

// Analyze extracts the file's text, asks the LLM for ATS feedback and parses
// the score from the reply.
func (s *Service) Analyze(ctx context.Context, fileID string) (Result, error) {
	startedAt := s.now()

	text, err := s.Text.ExtractText(ctx, fileID)
	if err != nil {
		s.finish(ctx, fileID, outcomeForExtractError(err), startedAt, err)
		return Result{}, err
	}
	if strings.TrimSpace(text) == "" {
		s.finish(ctx, fileID, "empty_text", startedAt, ErrEmptyText)
		return Result{}, ErrEmptyText
	}

	reply, err := s.LLM.Complete(ctx, llm.BuildATSPrompt(text))
	if err != nil {
		wrapped := fmt.Errorf("%w: %s: %w", ErrUpstream, classifyFailure(err), err)
		s.finish(ctx, fileID, "llm_failed", startedAt, wrapped)
		return Result{}, wrapped
	}

	result := Result{
		Analysis:      reply,
		FileID:        fileID,
		ExtractedText: text,
		ATSScore:      ParseATSScore(reply),
	}
	s.finish(ctx, fileID, "ok", startedAt, nil)
	return result, nil
}

func (s *Service) finish(ctx context.Context, fileID, outcome string, startedAt time.Time, err error) {
	elapsed := s.now().Sub(startedAt)
	metrics.IncAnalysis(outcome)
	metrics.ObserveAnalysisDuration(elapsed)

	fields := map[string]any{
		"file_id":        fileID,
		"outcome":        outcome,
		"provider":       s.Provider,
		"prompt_version": llm.ATSPromptVersion,
		"duration_ms":    float64(elapsed.Microseconds()) / 1000.0,
	}
	if id := requestIDFromContext(ctx); id != "" {
		fields["request_id"] = id
	}
	if err != nil {
		fields["err"] = sanitizeError(err)
		telemetry.Warn("analysis.failed", fields)
		return
	}
	telemetry.Info("analysis.complete", fields)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func outcomeForExtractError(err error) string {
	switch {
	case errors.Is(err, uploads.ErrNotFound):
		return "not_found"
	case errors.Is(err, uploads.ErrNotPDF):
		return "not_pdf"
	case errors.Is(err, uploads.ErrExtractionFailed):
		return "extraction_failed"
	default:
		return "internal"
	}
}

func classifyFailure(err error) string {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return failureNotConfigured
	case errors.Is(err, context.DeadlineExceeded):
		return failureTimeout
	case errors.As(err, &statusErr):
		return failureStatus
	case errors.Is(err, llm.ErrEmptyResponse):
		return failureEmpty
	}
	if strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return failureTimeout
	}
	return failureInternal
}

// FailureReason returns the classified cause of an ErrUpstream error.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	return classifyFailure(err)
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

type requestIDKey struct{}

// WithRequestID attaches a request ID for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
