// Package ui is the desktop front end: a landing page with the particle globe,
// a docs page and the search page, driven by Ebitengine.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/olivierh59500/neuralsearch/internal/field"
)

// ErrClosed is returned when navigating a closed game.
var ErrClosed = errors.New("game closed")

// Game implements ebiten.Game. Exactly one page is mounted at a time.
type Game struct {
	deps   Deps
	logger *zap.Logger
	in     Input
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	width, height int
	current       PageID
	page          Page
	last          time.Time
	paused        bool
	hud           bool
	closed        bool
}

// Option configures a Game
type Option func(*Game)

// WithInput replaces the live keyboard.
func WithInput(in Input) Option {
	return func(g *Game) { g.in = in }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// NewGame mounts the landing page.
func NewGame(deps Deps, opts ...Option) (*Game, error) {
	if deps.Config == nil {
		return nil, errors.New("ui: nil config")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		deps:    deps,
		logger:  deps.Logger.Named("ui"),
		in:      &ebitenInput{},
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		width:   deps.Config.Window.Width,
		height:  deps.Config.Window.Height,
		current: Landing,
		hud:     true,
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.Navigate(Landing); err != nil {
		cancel()
		return nil, err
	}
	return g, nil
}

// Current returns the mounted page.
func (g *Game) Current() PageID {
	return g.current
}

// Navigate unmounts the current page and mounts id. If id cannot be mounted
// the previous page is mounted again.
func (g *Game) Navigate(id PageID) error {
	if g.closed {
		return ErrClosed
	}
	prev, hadPage := g.current, g.page != nil
	if g.page != nil {
		g.page.Close()
		g.page = nil
	}
	g.last = time.Time{}
	page, err := g.deps.mount(g.ctx, id, g.width, g.height)
	if err != nil {
		err = fmt.Errorf("mount %v: %w", id, err)
		if hadPage && prev != id {
			if back, berr := g.deps.mount(g.ctx, prev, g.width, g.height); berr == nil {
				g.page = back
			}
		}
		return err
	}
	g.page = page
	g.current = id
	g.logger.Debug("page mounted", zap.Stringer("page", id))
	return nil
}

// navigate is Navigate for key presses: a page that cannot be mounted is logged
func (g *Game) navigate(id PageID) {
	if err := g.Navigate(id); err != nil {
		g.logger.Warn("navigation failed", zap.Stringer("page", id), zap.Error(err))
	}
}

// Update advances the mounted page by the wall time since the last tick.
func (g *Game) Update() error {
	if g.closed {
		return ebiten.Termination
	}
	now := g.now()
	elapsed := field.ReferenceFrame
	if !g.last.IsZero() {
		elapsed = now.Sub(g.last)
	}
	g.last = now

	switch {
	case g.in.JustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case g.in.JustPressed(ebiten.KeyTab):
		g.navigate((g.current + 1) % pageCount)
		return nil
	case g.in.JustPressed(ebiten.KeyF1):
		g.navigate(Landing)
		return nil
	case g.in.JustPressed(ebiten.KeyF2):
		g.navigate(Docs)
		return nil
	case g.in.JustPressed(ebiten.KeyF3):
		g.navigate(Search)
		return nil
	case g.in.JustPressed(ebiten.KeyF4):
		g.paused = !g.paused
	case g.in.JustPressed(ebiten.KeyF10):
		g.hud = !g.hud
	}

	if g.page == nil {
		return nil
	}
	if g.paused {
		elapsed = 0
	}
	return g.page.Update(g.in, now, elapsed)
}

// Draw renders the mounted page and the HUD
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	if g.page == nil {
		return
	}
	g.page.Draw(screen)
	if !g.hud {
		return
	}
	status := fmt.Sprintf("%s | TPS %.0f FPS %.0f | %s", g.current, ebiten.ActualTPS(), ebiten.ActualFPS(), g.page.Status())
	if g.paused {
		status += " | paused"
	}
	ebitenutil.DebugPrintAt(screen, status, 8, g.height-20)
	ebitenutil.DebugPrintAt(screen, "Tab/F1-F3 pages  F4 pause  F10 hud  Esc quit", 8, g.height-36)
}

// Layout follows the window size and resizes the mounted page
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != g.width || outsideHeight != g.height) {
		g.width, g.height = outsideWidth, outsideHeight
		if g.page != nil {
			g.page.Resize(g.width, g.height)
		}
	}
	return g.width, g.height
}

// Close unmounts the page and stops everything it started.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.page != nil {
		g.page.Close()
		g.page = nil
	}
	g.cancel()
}
