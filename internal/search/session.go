package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Searcher runs a query. *Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Outcome is the end of one submitted search.
type Outcome struct {
	Query   string
	Results []Result
	Err     error
	Message string // User-facing text when Err is set
}

// State is what the search page renders.
type State struct {
	Active  bool     // Steps running or request in flight
	Query   string   // Query of the active or last search
	Steps   []string // Thinking steps visible now
	Outcome *Outcome // Last finished search, nil until one completes
}

// Session runs at most one search at a time. Submit and Poll must be
// called from the same goroutine; the request itself runs in the background.
type Session struct {
	searcher Searcher
	logger   *zap.Logger
	messages []string
	delay    time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	active  bool
	query   string
	steps   Steps
	results chan Outcome
	outcome *Outcome
	closed  bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSteps replaces the thinking messages and their delay.
func WithSteps(messages []string, delay time.Duration) SessionOption {
	return func(s *Session) {
		s.messages = messages
		s.delay = delay
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession returns an idle session bound to parent. Cancelling parent or
// calling Close abandons any running search.
func NewSession(parent context.Context, searcher Searcher, opts ...SessionOption) *Session {
	s := &Session{
		searcher: searcher,
		logger:   zap.NewNop(),
		messages: ThinkingSteps,
		delay:    StepDelay,
		now:      time.Now,
		results:  make(chan Outcome, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(parent)
	return s
}

// Submit starts the thinking steps and, once they finish, the request.
// The previous outcome is cleared.
func (s *Session) Submit(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	if s.closed {
		return context.Canceled
	}
	if s.active {
		return ErrBusy
	}

	s.active = true
	s.query = query
	s.outcome = nil
	s.steps = Steps{Messages: s.messages, Delay: s.delay, Start: s.now()}
	s.logger.Info("search submitted", zap.String("query", query))

	wait := s.steps.Duration()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.results <- s.run(query, wait)
	}()
	return nil
}

// run waits for the steps, then calls the searcher
func (s *Session) run(query string, wait time.Duration) Outcome {
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-s.ctx.Done():
			return Outcome{Query: query, Err: s.ctx.Err(), Message: MsgSearchFailed}
		case <-timer.C:
		}
	}

	results, err := s.searcher.Search(s.ctx, query)
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return Outcome{Query: query, Err: err, Message: UserMessage(err, MsgSearchFailed)}
	}
	s.logger.Info("search finished", zap.String("query", query), zap.Int("results", len(results)))
	return Outcome{Query: query, Results: results}
}

// Poll collects a finished search, if any, and returns the state at now.
func (s *Session) Poll() State {
	if s.active {
		select {
		case out := <-s.results:
			s.active = false
			s.outcome = &out
		default:
		}
	}

	st := State{Active: s.active, Query: s.query, Outcome: s.outcome}
	if s.active {
		st.Steps = s.steps.Visible(s.now())
	}
	return st
}

// Close cancels a running search and waits for it. It is safe to call twice.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.wg.Wait()
}
