package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results []Result
	err     error
	block   chan struct{}
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// waitOutcome polls s until the search finishes
func waitOutcome(t *testing.T, s *Session) State {
	t.Helper()
	var st State
	require.Eventually(t, func() bool {
		st = s.Poll()
		return !st.Active
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestSteps(t *testing.T) {
	start := time.Unix(1000, 0)
	s := Steps{Messages: []string{"a", "b", "c"}, Delay: time.Second, Start: start}

	assert.Nil(t, s.Visible(start.Add(-time.Millisecond)))
	assert.Equal(t, []string{"a"}, s.Visible(start))
	assert.Equal(t, []string{"a"}, s.Visible(start.Add(999*time.Millisecond)))
	assert.Equal(t, []string{"a", "b"}, s.Visible(start.Add(time.Second)))
	assert.Equal(t, []string{"a", "b", "c"}, s.Visible(start.Add(time.Hour)))

	assert.Equal(t, 3*time.Second, s.Duration())
	assert.False(t, s.Done(start.Add(2999*time.Millisecond)))
	assert.True(t, s.Done(start.Add(3*time.Second)))
}

func TestDefaultSteps(t *testing.T) {
	s := NewSteps(time.Unix(0, 0))
	assert.Len(t, s.Messages, 7)
	assert.Equal(t, 7*StepDelay, s.Duration())
}

func TestSessionDeliversResults(t *testing.T) {
	fs := &fakeSearcher{results: []Result{{Title: "one", Link: "https://1.example"}}}
	s := NewSession(context.Background(), fs, WithSteps([]string{"thinking"}, 0))
	defer s.Close()

	require.NoError(t, s.Submit("golang"))
	st := waitOutcome(t, s)

	require.NotNil(t, st.Outcome)
	assert.Equal(t, "golang", st.Outcome.Query)
	assert.NoError(t, st.Outcome.Err)
	assert.Equal(t, fs.results, st.Outcome.Results)
	assert.Equal(t, []string{"golang"}, fs.calls())
	assert.Empty(t, st.Steps)
}

func TestSessionMapsErrors(t *testing.T) {
	fs := &fakeSearcher{err: &APIError{Status: 429}}
	s := NewSession(context.Background(), fs, WithSteps(nil, 0))
	defer s.Close()

	require.NoError(t, s.Submit("q"))
	st := waitOutcome(t, s)
	require.NotNil(t, st.Outcome)
	assert.ErrorIs(t, st.Outcome.Err, ErrRateLimited)
	assert.Equal(t, MsgRateLimited, st.Outcome.Message)
}

func TestSessionRejectsEmptyAndBusy(t *testing.T) {
	fs := &fakeSearcher{block: make(chan struct{})}
	s := NewSession(context.Background(), fs, WithSteps(nil, 0))
	defer s.Close()

	assert.ErrorIs(t, s.Submit("  "), ErrEmptyQuery)
	require.NoError(t, s.Submit("first"))
	assert.ErrorIs(t, s.Submit("second"), ErrBusy)

	close(fs.block)
	st := waitOutcome(t, s)
	assert.Equal(t, "first", st.Outcome.Query)

	require.NoError(t, s.Submit("second"))
	st = waitOutcome(t, s)
	assert.Equal(t, "second", st.Outcome.Query)
	assert.Equal(t, []string{"first", "second"}, fs.calls())
}

func TestSessionShowsStepsWhileWaiting(t *testing.T) {
	now := time.Unix(5000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	fs := &fakeSearcher{}
	s := NewSession(context.Background(), fs,
		WithSteps([]string{"a", "b", "c"}, time.Hour),
		WithClock(clock),
	)
	defer s.Close()

	require.NoError(t, s.Submit("q"))
	st := s.Poll()
	assert.True(t, st.Active)
	assert.Equal(t, []string{"a"}, st.Steps)

	mu.Lock()
	now = now.Add(90 * time.Minute)
	mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, s.Poll().Steps)
	assert.Empty(t, fs.calls())
}

func TestSessionCloseCancelsSearch(t *testing.T) {
	fs := &fakeSearcher{block: make(chan struct{})}
	s := NewSession(context.Background(), fs, WithSteps(nil, 0))

	require.NoError(t, s.Submit("q"))
	done := make(chan struct{})
	go func() {
		s.Close()
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.True(t, errors.Is(s.Submit("again"), context.Canceled))
}

func TestSessionCloseDuringSteps(t *testing.T) {
	fs := &fakeSearcher{}
	s := NewSession(context.Background(), fs, WithSteps([]string{"a"}, time.Hour))

	require.NoError(t, s.Submit("q"))
	s.Close()
	assert.Empty(t, fs.calls())
}
