// Package flow animates the horizontal light streaks behind the search page.
package flow

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Streak constants
const (
	DefaultCount   = 50
	DefaultDrift   = 6.0   // Max vertical wander in pixels
	DefaultShimmer = 0.35  // Fraction of opacity modulated by noise
	noiseScale     = 0.004 // Noise sampled per pixel travelled
	minSpeed       = 1.0
	speedRange     = 2.0
	minLength      = 50.0
	lengthRange    = 100.0
	minOpacity     = 0.1
	opacityRange   = 0.3
)

// ErrInvalidConfig is returned for unusable streak parameters.
var ErrInvalidConfig = errors.New("invalid flow config")

// Config describes the streak field
type Config struct {
	Count   int     `yaml:"count" json:"count"`
	Drift   float64 `yaml:"drift" json:"drift"`
	Shimmer float64 `yaml:"shimmer" json:"shimmer"`
}

// DefaultConfig returns the search page backdrop
func DefaultConfig() Config {
	return Config{Count: DefaultCount, Drift: DefaultDrift, Shimmer: DefaultShimmer}
}

// Validate checks the config
func (c Config) Validate() error {
	switch {
	case c.Count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidConfig, c.Count)
	case c.Drift < 0:
		return fmt.Errorf("%w: drift must not be negative, got %v", ErrInvalidConfig, c.Drift)
	case c.Shimmer < 0 || c.Shimmer > 1:
		return fmt.Errorf("%w: shimmer must be in [0,1], got %v", ErrInvalidConfig, c.Shimmer)
	}
	return nil
}

// Streak is one line moving left to right
type Streak struct {
	X, Y    float64 // Left end; Y is the lane before drift
	Speed   float64 // Pixels per reference frame
	Length  float64
	Opacity float64 // Base opacity
	lane    float64 // Noise coordinate of the lane
}

// Background owns the streaks of one mounted page
type Background struct {
	cfg     Config
	width   float64
	height  float64
	rng     *rand.Rand
	noise   *perlin.Perlin
	streaks []Streak
}

// New creates cfg.Count streaks on a width x height canvas
func New(cfg Config, width, height int, rng *rand.Rand) (*Background, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	b := &Background{
		cfg:     cfg,
		rng:     rng,
		noise:   perlin.NewPerlin(2, 2, 3, rng.Int63()),
		streaks: make([]Streak, cfg.Count),
	}
	b.Resize(width, height)
	for i := range b.streaks {
		b.reset(&b.streaks[i])
		b.streaks[i].lane = float64(i) * 7.31
	}
	return b, nil
}

// reset moves a streak back to the left edge with fresh parameters
func (b *Background) reset(s *Streak) {
	s.X = 0
	s.Y = b.rng.Float64() * b.height
	s.Speed = minSpeed + b.rng.Float64()*speedRange
	s.Length = minLength + b.rng.Float64()*lengthRange
	s.Opacity = minOpacity + b.rng.Float64()*opacityRange
}

// Resize changes the canvas. Streaks past the new right edge restart on the next step.
func (b *Background) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	b.width = float64(width)
	b.height = float64(height)
}

// Step moves every streak by scale reference frames
func (b *Background) Step(scale float64) {
	for i := range b.streaks {
		s := &b.streaks[i]
		s.X += s.Speed * scale
		if s.X > b.width {
			b.reset(s)
		}
	}
}

// Streaks returns the streaks. Callers must not modify them.
func (b *Background) Streaks() []Streak {
	return b.streaks
}

// Segment returns the drawn line of s: both ends share the drifted Y.
func (b *Background) Segment(s Streak) (x0, y0, x1, y1, alpha float64) {
	n := b.noise.Noise2D(s.X*noiseScale, s.lane)
	y := s.Y + n*b.cfg.Drift
	alpha = s.Opacity * (1 - b.cfg.Shimmer*(0.5-0.5*n))
	if alpha < 0 {
		alpha = 0
	}
	return s.X, y, s.X + s.Length, y, alpha
}
