package analyses

import "errors"

var (
	// ErrEmptyText is returned when the PDF has no extractable text layer.
	ErrEmptyText = errors.New("no extractable text")
	// ErrUpstream wraps LLM provider failures.
	ErrUpstream = errors.New("analysis upstream failed")
)

const (
	failureTimeout       = "llm_timeout"
	failureNotConfigured = "llm_not_configured"
	failureStatus        = "llm_status"
	failureEmpty         = "llm_empty"
	failureInternal      = "internal"
)
