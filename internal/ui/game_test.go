package ui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olivierh59500/neuralsearch/internal/config"
	"github.com/olivierh59500/neuralsearch/internal/search"
)

// fakeInput presses keys for exactly one tick
type fakeInput struct {
	keys  map[ebiten.Key]bool
	chars []rune
}

func (f *fakeInput) JustPressed(k ebiten.Key) bool { return f.keys[k] }
func (f *fakeInput) Repeating(k ebiten.Key) bool   { return f.keys[k] }
func (f *fakeInput) Chars() []rune                 { return f.chars }

type fakeBackend struct {
	mu       sync.Mutex
	searches []string
	trending int
	items    []string
	err      error
	fail     error // Returned by Search
}

func (b *fakeBackend) Search(ctx context.Context, query string) ([]search.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searches = append(b.searches, query)
	if b.fail != nil {
		return nil, b.fail
	}
	return []search.Result{{Title: query, Link: "https://example.com/" + query}}, nil
}

func (b *fakeBackend) Trending(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trending++
	return b.items, b.err
}

func (b *fakeBackend) counts() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.searches), b.trending
}

type harness struct {
	game    *Game
	in      *fakeInput
	backend *fakeBackend
	cfg     *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, &fakeBackend{items: []string{"llms", "vector search"}}, nil)
}

// newHarnessWith runs without a backend when backend is nil
func newHarnessWith(t *testing.T, backend *fakeBackend, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 7
	cfg.Field.Count = 40
	cfg.Field.Capacity = 40
	cfg.Field.Radius = 100
	cfg.PollInterval = time.Hour
	cfg.PresetPath = filepath.Join(t.TempDir(), "preset.json")
	if mutate != nil {
		mutate(cfg)
	}

	h := &harness{
		in:      &fakeInput{keys: map[ebiten.Key]bool{}},
		backend: backend,
		cfg:     cfg,
	}
	deps := Deps{Config: cfg, Logger: zap.NewNop()}
	if backend != nil {
		deps.Backend = backend
	}
	now := time.Unix(1000, 0)
	clock := func() time.Time {
		now = now.Add(16 * time.Millisecond)
		return now
	}
	g, err := NewGame(deps, WithInput(h.in), WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(g.Close)
	h.game = g
	return h
}

// tick runs one Update with the given keys held
func (h *harness) tick(t *testing.T, keys ...ebiten.Key) error {
	t.Helper()
	for _, k := range keys {
		h.in.keys[k] = true
	}
	err := h.game.Update()
	h.in.keys = map[ebiten.Key]bool{}
	h.in.chars = nil
	return err
}

func (h *harness) typeText(t *testing.T, s string) {
	t.Helper()
	h.in.chars = []rune(s)
	require.NoError(t, h.tick(t))
}

func TestNewGameMountsLanding(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, Landing, h.game.Current())
	_, ok := h.game.page.(*landingPage)
	assert.True(t, ok)

	_, err := NewGame(Deps{})
	assert.Error(t, err)
}

func TestNavigationUnmountsPreviousPage(t *testing.T) {
	h := newHarness(t)
	landing := h.game.page.(*landingPage)

	require.NoError(t, h.tick(t, ebiten.KeyTab))
	assert.Equal(t, Docs, h.game.Current())
	assert.True(t, landing.field.Disposed())

	require.NoError(t, h.tick(t, ebiten.KeyTab))
	assert.Equal(t, Search, h.game.Current())
	sp := h.game.page.(*searchPage)

	require.NoError(t, h.tick(t, ebiten.KeyF1))
	assert.Equal(t, Landing, h.game.Current())
	assert.ErrorIs(t, sp.ctx.Err(), context.Canceled)
	assert.NotSame(t, landing, h.game.page)
}

func TestFailedNavigationKeepsPreviousPage(t *testing.T) {
	h := newHarnessWith(t, nil, nil)
	landing := h.game.page.(*landingPage)

	require.NoError(t, h.tick(t, ebiten.KeyF3))
	assert.Equal(t, Landing, h.game.Current())
	require.NotNil(t, h.game.page)
	assert.True(t, landing.field.Disposed())
	assert.NotSame(t, landing, h.game.page)
	require.NoError(t, h.tick(t))

	require.NoError(t, h.tick(t, ebiten.KeyF2))
	require.NoError(t, h.tick(t, ebiten.KeyTab))
	assert.Equal(t, Docs, h.game.Current())
	_, ok := h.game.page.(*docsPage)
	assert.True(t, ok)
	require.NoError(t, h.tick(t))

	assert.Error(t, h.game.Navigate(Search))
	assert.Equal(t, Docs, h.game.Current())
}

func TestEscapeTerminates(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.tick(t, ebiten.KeyEscape), ebiten.Termination)
}

func TestPauseFreezesField(t *testing.T) {
	h := newHarness(t)
	landing := h.game.page.(*landingPage)

	require.NoError(t, h.tick(t))
	require.NoError(t, h.tick(t))
	assert.Equal(t, uint64(2), landing.field.Stats().Frames)

	require.NoError(t, h.tick(t, ebiten.KeyF4))
	require.NoError(t, h.tick(t))
	assert.Equal(t, uint64(2), landing.field.Stats().Frames)

	require.NoError(t, h.tick(t, ebiten.KeyF4))
	assert.Equal(t, uint64(3), landing.field.Stats().Frames)
}

func TestLayoutResizesPage(t *testing.T) {
	h := newHarness(t)
	w, ht := h.game.Layout(640, 480)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, ht)

	cw, ch := h.game.page.(*landingPage).cam.Size()
	assert.Equal(t, 640, cw)
	assert.Equal(t, 480, ch)

	w, ht = h.game.Layout(0, 0)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, ht)
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	landing := h.game.page.(*landingPage)
	h.game.Close()
	h.game.Close()

	assert.True(t, landing.field.Disposed())
	assert.ErrorIs(t, h.game.Update(), ebiten.Termination)
	assert.True(t, errors.Is(h.game.Navigate(Docs), ErrClosed))
}

func TestLandingControls(t *testing.T) {
	h := newHarness(t)
	landing := h.game.page.(*landingPage)
	start := landing.field.Config()

	require.NoError(t, h.tick(t, ebiten.KeyF6))
	assert.Equal(t, !start.LimitConnections, landing.field.Config().LimitConnections)

	require.NoError(t, h.tick(t, ebiten.KeyF7))
	assert.NotEqual(t, start.Index, landing.field.Config().Index)

	require.NoError(t, h.tick(t, ebiten.KeyPageUp))
	assert.Equal(t, start.MinDistance+distanceStep, landing.field.Config().MinDistance)

	require.NoError(t, h.tick(t, ebiten.KeyF8))
	saved := landing.field.Config()

	require.NoError(t, h.tick(t, ebiten.KeyPageDown))
	before := landing.field
	require.NoError(t, h.tick(t, ebiten.KeyF9))
	assert.NotSame(t, before, landing.field)
	assert.True(t, before.Disposed())
	assert.Equal(t, saved, landing.field.Config())
	assert.Contains(t, landing.Status(), "loaded")
}

func TestLandingLoadMissingPresetKeepsField(t *testing.T) {
	h := newHarness(t)
	landing := h.game.page.(*landingPage)
	before := landing.field

	require.NoError(t, h.tick(t, ebiten.KeyF9))
	assert.Same(t, before, landing.field)
	assert.False(t, before.Disposed())
	assert.Contains(t, landing.Status(), "load failed")
}

// updateUntil ticks the game until cond holds or the deadline passes
func updateUntil(t *testing.T, h *harness, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, h.tick(t))
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestSearchPageTrendingAndSubmit(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.tick(t, ebiten.KeyF3))
	sp := h.game.page.(*searchPage)

	updateUntil(t, h, func() bool { return len(sp.trending) == 2 })
	assert.True(t, sp.live)

	h.typeText(t, "go ")
	h.typeText(t, "x")
	require.NoError(t, h.tick(t, ebiten.KeyBackspace))
	assert.Equal(t, "go ", string(sp.query))

	require.NoError(t, h.tick(t, ebiten.KeyEnter))
	assert.True(t, sp.state.Active)
	assert.Equal(t, "go", sp.state.Query)
	assert.Equal(t, []string{search.ThinkingSteps[0]}, sp.state.Steps)

	require.NoError(t, h.tick(t, ebiten.KeyF2))
	searches, _ := h.backend.counts()
	assert.Zero(t, searches)
}

func TestSearchPageShowsResults(t *testing.T) {
	h := newHarnessWith(t, &fakeBackend{}, func(c *config.Config) { c.StepDelay = time.Millisecond })
	require.NoError(t, h.tick(t, ebiten.KeyF3))
	sp := h.game.page.(*searchPage)

	h.typeText(t, "rust")
	require.NoError(t, h.tick(t, ebiten.KeyEnter))
	updateUntil(t, h, func() bool { return sp.state.Outcome != nil })

	assert.False(t, sp.state.Active)
	require.Len(t, sp.state.Outcome.Results, 1)
	assert.Equal(t, "rust", sp.state.Outcome.Results[0].Title)
	assert.Empty(t, sp.errMsg)
	assert.Contains(t, sp.Status(), "results 1")
}

func TestSearchPageShowsFailure(t *testing.T) {
	backend := &fakeBackend{fail: &search.APIError{Status: 503, Detail: "index offline"}}
	h := newHarnessWith(t, backend, func(c *config.Config) { c.StepDelay = time.Millisecond })
	require.NoError(t, h.tick(t, ebiten.KeyF3))
	sp := h.game.page.(*searchPage)

	h.typeText(t, "rust")
	require.NoError(t, h.tick(t, ebiten.KeyEnter))
	updateUntil(t, h, func() bool { return sp.state.Outcome != nil })
	assert.Equal(t, "index offline", sp.errMsg)
	assert.Empty(t, sp.state.Outcome.Results)

	backend.mu.Lock()
	backend.fail = errors.New("connection refused")
	backend.mu.Unlock()
	require.NoError(t, h.tick(t, ebiten.KeyEnter))
	assert.Empty(t, sp.errMsg)
	updateUntil(t, h, func() bool { return sp.state.Outcome != nil })
	assert.Equal(t, search.MsgSearchFailed, sp.errMsg)
}

func TestSearchPageStartsLive(t *testing.T) {
	h := newHarnessWith(t, &fakeBackend{}, nil)
	require.NoError(t, h.tick(t, ebiten.KeyF3))
	sp := h.game.page.(*searchPage)
	assert.True(t, sp.live)
}

func TestSearchPageSubmitsSelectedTrending(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.tick(t, ebiten.KeyF3))
	sp := h.game.page.(*searchPage)
	updateUntil(t, h, func() bool { return len(sp.trending) == 2 })

	require.NoError(t, h.tick(t, ebiten.KeyArrowDown))
	require.NoError(t, h.tick(t, ebiten.KeyArrowDown))
	assert.Equal(t, 1, sp.selected)

	require.NoError(t, h.tick(t, ebiten.KeyEnter))
	assert.Equal(t, "vector search", sp.state.Query)
	assert.Equal(t, -1, sp.selected)
}

func TestSearchPageKeepsTrendingOnFailure(t *testing.T) {
	sp := &searchPage{selected: -1}
	sp.applyTrending(search.TrendingUpdate{Items: []string{"a", "b"}, Live: true})
	sp.selected = 1

	sp.applyTrending(search.TrendingUpdate{Err: errors.New("down"), Message: search.MsgTrendingFailed})
	assert.Equal(t, []string{"a", "b"}, sp.trending)
	assert.False(t, sp.live)
	assert.Equal(t, search.MsgTrendingFailed, sp.trendingMsg)

	sp.applyTrending(search.TrendingUpdate{Live: true})
	assert.Equal(t, []string{"a", "b"}, sp.trending)
	assert.Empty(t, sp.trendingMsg)

	sp.applyTrending(search.TrendingUpdate{Items: []string{"c"}, Live: true})
	assert.Equal(t, []string{"c"}, sp.trending)
	assert.Equal(t, -1, sp.selected)
}

func TestSearchPageCloseStopsPoller(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.tick(t, ebiten.KeyF3))
	sp := h.game.page.(*searchPage)
	updateUntil(t, h, func() bool { _, n := h.backend.counts(); return n >= 1 })

	sp.Close()
	sp.Close()
	_, before := h.backend.counts()
	time.Sleep(20 * time.Millisecond)
	_, after := h.backend.counts()
	assert.Equal(t, before, after)
	assert.ErrorIs(t, sp.session.Submit("late"), context.Canceled)
}

func TestDocsScrollIsClamped(t *testing.T) {
	p := newDocsPage(800, 200)
	in := &fakeInput{keys: map[ebiten.Key]bool{ebiten.KeyArrowUp: true}}
	require.NoError(t, p.Update(in, time.Now(), 0))
	assert.Zero(t, p.offset)

	in.keys = map[ebiten.Key]bool{ebiten.KeyEnd: true}
	require.NoError(t, p.Update(in, time.Now(), 0))
	assert.Equal(t, p.maxOffset(), p.offset)
	assert.Positive(t, p.offset)

	p.Resize(800, 10000)
	assert.Zero(t, p.offset)
}

func TestSearchPageNeedsBackend(t *testing.T) {
	_, err := newSearchPage(context.Background(), Deps{Config: config.Default(), Logger: zap.NewNop()}, 100, 100, nil)
	assert.Error(t, err)
}
