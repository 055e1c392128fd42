package ui

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/olivierh59500/neuralsearch/internal/config"
	"github.com/olivierh59500/neuralsearch/internal/search"
)

// PageID names a page.
type PageID int

const (
	Landing PageID = iota
	Docs
	Search
	pageCount
)

func (id PageID) String() string {
	switch id {
	case Landing:
		return "landing"
	case Docs:
		return "docs"
	case Search:
		return "search"
	default:
		return fmt.Sprintf("page(%d)", int(id))
	}
}

// Page is a mounted screen. It owns everything it allocates and gives it
// back in Close, which must be safe to call more than once.
type Page interface {
	// Update is called once per tick. elapsed is zero while the game is paused.
	Update(in Input, now time.Time, elapsed time.Duration) error
	Draw(screen *ebiten.Image)
	Resize(width, height int)
	// Status is a short line for the HUD.
	Status() string
	Close()
}

// Backend is the search service as seen by the pages.
type Backend interface {
	search.Searcher
	search.TrendingSource
}

// Deps are shared by every page. Pages never mutate them.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Backend Backend
}

// rng returns a fresh random source for one mount
func (d Deps) rng() *rand.Rand {
	seed := d.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// mount builds the page for id
func (d Deps) mount(ctx context.Context, id PageID, width, height int) (Page, error) {
	switch id {
	case Landing:
		return newLandingPage(d, width, height, d.rng())
	case Docs:
		return newDocsPage(width, height), nil
	case Search:
		return newSearchPage(ctx, d, width, height, d.rng())
	default:
		return nil, fmt.Errorf("unknown page %v", id)
	}
}
