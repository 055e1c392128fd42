package field

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// IndexKind selects how candidate pairs are found each frame.
type IndexKind string

const (
	// IndexBrute checks every unordered pair.
	IndexBrute IndexKind = "brute"
	// IndexGrid only checks pairs in neighbouring cells of side MinDistance.
	IndexGrid IndexKind = "grid"
)

// Default field parameters
const (
	DefaultCount          = 400
	DefaultCapacity       = 500
	DefaultRadius         = 400.0
	DefaultMinDistance    = 100.0
	DefaultMaxDistance    = 300.0
	DefaultMaxConnections = 15
	DefaultSpeed          = 0.5
	DefaultLineColor      = "#4F46E5"

	// MaxCapacity bounds the particle buffers. The segment buffers grow with its square.
	MaxCapacity = 2000
)

// Config describes a particle field.
type Config struct {
	Count            int       `yaml:"count" json:"count"`
	Capacity         int       `yaml:"capacity" json:"capacity"`
	Radius           float32   `yaml:"radius" json:"radius"`
	MinDistance      float32   `yaml:"min_distance" json:"min_distance"`
	MaxDistance      float32   `yaml:"max_distance" json:"max_distance"`
	MaxConnections   int       `yaml:"max_connections" json:"max_connections"`
	LimitConnections bool      `yaml:"limit_connections" json:"limit_connections"`
	Speed            float32   `yaml:"speed" json:"speed"`
	LineColor        string    `yaml:"line_color" json:"line_color"`
	Index            IndexKind `yaml:"index" json:"index"`
}

// DefaultConfig returns the globe used on the landing page.
func DefaultConfig() Config {
	return Config{
		Count:            DefaultCount,
		Capacity:         DefaultCapacity,
		Radius:           DefaultRadius,
		MinDistance:      DefaultMinDistance,
		MaxDistance:      DefaultMaxDistance,
		MaxConnections:   DefaultMaxConnections,
		LimitConnections: true,
		Speed:            DefaultSpeed,
		LineColor:        DefaultLineColor,
		Index:            IndexBrute,
	}
}

// normalized fills in the fields whose zero value has an obvious meaning.
func (c Config) normalized() Config {
	if c.Capacity == 0 {
		c.Capacity = c.Count
	}
	if c.MaxDistance == 0 {
		c.MaxDistance = c.MinDistance
	}
	if c.LineColor == "" {
		c.LineColor = DefaultLineColor
	}
	if c.Index == "" {
		c.Index = IndexBrute
	}
	return c
}

// Validate reports the first problem with the config, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	c = c.normalized()
	switch {
	case c.Count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidConfig, c.Count)
	case !(c.Radius > 0) || math.IsInf(float64(c.Radius), 0):
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidConfig, c.Radius)
	case c.Capacity < c.Count:
		return fmt.Errorf("%w: capacity %d is smaller than count %d", ErrInvalidConfig, c.Capacity, c.Count)
	case c.Capacity > MaxCapacity:
		return fmt.Errorf("%w: capacity %d exceeds %d", ErrInvalidConfig, c.Capacity, MaxCapacity)
	case !(c.MinDistance >= 0):
		return fmt.Errorf("%w: min distance must not be negative, got %v", ErrInvalidConfig, c.MinDistance)
	case c.MaxDistance < c.MinDistance:
		return fmt.Errorf("%w: max distance %v is below min distance %v", ErrInvalidConfig, c.MaxDistance, c.MinDistance)
	case c.MaxConnections < 0:
		return fmt.Errorf("%w: max connections must not be negative, got %d", ErrInvalidConfig, c.MaxConnections)
	case !(c.Speed >= 0):
		return fmt.Errorf("%w: speed must not be negative, got %v", ErrInvalidConfig, c.Speed)
	}
	if c.Index != IndexBrute && c.Index != IndexGrid {
		return fmt.Errorf("%w: unknown index %q", ErrInvalidConfig, c.Index)
	}
	if _, err := ParseColor(c.LineColor); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ParseColor converts "#RRGGBB" (or "RRGGBB") to RGB components in [0,1].
func ParseColor(hex string) (mgl32.Vec3, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("color %q: want #RRGGBB", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return mgl32.Vec3{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
