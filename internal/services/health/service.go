package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is a backend that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	OK         bool   `json:"ok"`
	Store      string `json:"store"`
	LLM        string `json:"llm"`
	StoreError string `json:"storeError,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	store  string
	llm    string
	pinger Pinger
}

// NewService constructs a health service. pinger may be nil for in-process stores.
func NewService(store, llm string, pinger Pinger) *Service {
	return &Service{store: store, llm: llm, pinger: pinger}
}

// Status reports which backends are in use and whether the store answers.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Store: s.store, LLM: s.llm}
	if s.pinger == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.pinger.Ping(ctx); err != nil {
		st.OK = false
		st.StoreError = err.Error()
	}
	return st
}
