package field

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Simulation constants
const (
	ReferenceRate = 60.0 // Frames per second the velocities are expressed in
	MaxStepScale  = 4.0  // Upper bound on reference frames integrated in one step
)

// ReferenceFrame is the elapsed time that advances particles by exactly one velocity.
const ReferenceFrame = time.Second / ReferenceRate

// Particle is a single point of the cloud
type Particle struct {
	Pos         mgl32.Vec3 // Position
	Vel         mgl32.Vec3 // Velocity per reference frame
	Connections int        // Connections made in the current frame
}

// Frame is what one step publishes to a renderer. The slices alias the
// field's buffers and stay valid until the next Step.
type Frame struct {
	Connections int       // Connected pairs
	DrawCount   int       // Line vertices to draw (Connections * 2)
	Vertices    []float32 // xyz per line vertex
	Colors      []float32 // rgb per line vertex
	Points      []float32 // xyz per active particle
}

// Stats summarises the frames stepped so far.
type Stats struct {
	Frames          uint64
	Connections     int
	PeakConnections int
}

// Field owns a fixed particle pool and the buffers derived from it
type Field struct {
	cfg       Config
	line      mgl32.Vec3
	particles []Particle
	vertices  []float32
	colors    []float32
	points    []float32
	grid      grid
	stats     Stats
	disposed  bool
}

// New creates a field of cfg.Count particles. All randomness comes from rng.
func New(cfg Config, rng *rand.Rand) (*Field, error) {
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	line, _ := ParseColor(cfg.LineColor)

	segments := cfg.Capacity * cfg.Capacity
	f := &Field{
		cfg:       cfg,
		line:      line,
		particles: make([]Particle, cfg.Capacity),
		vertices:  make([]float32, segments*3),
		colors:    make([]float32, segments*3),
		points:    make([]float32, cfg.Capacity*3),
	}

	// Start inside the shell [R/4, R/2]
	for i := range f.particles {
		radius := float64(cfg.Radius)/4 + rng.Float64()*float64(cfg.Radius)/4
		pos := randomDirection(rng).Mul(float32(radius))
		f.particles[i] = Particle{
			Pos: pos,
			Vel: randomDirection(rng).Mul(cfg.Speed),
		}
		f.points[i*3] = pos[0]
		f.points[i*3+1] = pos[1]
		f.points[i*3+2] = pos[2]
	}
	return f, nil
}

// randomDirection returns a uniformly distributed unit vector
func randomDirection(rng *rand.Rand) mgl32.Vec3 {
	u := rng.Float64()*2 - 1
	theta := rng.Float64() * 2 * math.Pi
	s := math.Sqrt(1 - u*u)
	return mgl32.Vec3{float32(s * math.Cos(theta)), float32(u), float32(s * math.Sin(theta))}
}

// StepScale converts elapsed wall time into reference frames.
func StepScale(elapsed time.Duration) float32 {
	if elapsed <= 0 {
		return 1
	}
	scale := float64(elapsed) / float64(ReferenceFrame)
	if scale > MaxStepScale {
		scale = MaxStepScale
	}
	return float32(scale)
}

// Step advances the field by elapsed and rebuilds the connection buffers
func (f *Field) Step(elapsed time.Duration) Frame {
	if f.disposed {
		return Frame{}
	}
	n := f.cfg.Count
	active := f.particles[:n]
	scale := StepScale(elapsed)

	for i := range active {
		active[i].Connections = 0
	}

	// Integrate and bounce off the bounding sphere
	for i := range active {
		p := &active[i]
		p.Pos = p.Pos.Add(p.Vel.Mul(scale))
		if d := p.Pos.Len(); d > f.cfg.Radius {
			normal := p.Pos.Mul(-1 / d)
			// Only turn particles that are still heading out.
			if p.Vel.Dot(normal) < 0 {
				p.Vel = reflect(p.Vel, normal)
			}
		}
		f.points[i*3] = p.Pos[0]
		f.points[i*3+1] = p.Pos[1]
		f.points[i*3+2] = p.Pos[2]
	}

	connected := 0
	if f.cfg.MinDistance > 0 {
		if f.cfg.Index == IndexGrid {
			connected = f.connectGrid(active)
		} else {
			connected = f.connectAll(active)
		}
	}

	f.stats.Frames++
	f.stats.Connections = connected
	if connected > f.stats.PeakConnections {
		f.stats.PeakConnections = connected
	}

	return Frame{
		Connections: connected,
		DrawCount:   connected * 2,
		Vertices:    f.vertices[:connected*6],
		Colors:      f.colors[:connected*6],
		Points:      f.points[:n*3],
	}
}

// connectAll checks every unordered pair
func (f *Field) connectAll(active []Particle) int {
	connected := 0
	for i := range active {
		if f.saturated(i) {
			continue
		}
		for j := i + 1; j < len(active); j++ {
			if f.saturated(j) {
				continue
			}
			if f.tryConnect(i, j, connected) {
				connected++
				if f.saturated(i) {
					break
				}
			}
		}
	}
	return connected
}

// saturated reports whether particle i reached its connection cap
func (f *Field) saturated(i int) bool {
	return f.cfg.LimitConnections && f.particles[i].Connections >= f.cfg.MaxConnections
}

// tryConnect records the pair (i, j) as connection number slot if close enough
func (f *Field) tryConnect(i, j, slot int) bool {
	a := &f.particles[i]
	b := &f.particles[j]
	d := a.Pos.Sub(b.Pos).Len()
	if d >= f.cfg.MinDistance {
		return false
	}
	a.Connections++
	b.Connections++

	alpha := 1 - d/f.cfg.MinDistance
	c := f.line.Mul(alpha)

	v := f.vertices[slot*6 : slot*6+6]
	v[0], v[1], v[2] = a.Pos[0], a.Pos[1], a.Pos[2]
	v[3], v[4], v[5] = b.Pos[0], b.Pos[1], b.Pos[2]

	col := f.colors[slot*6 : slot*6+6]
	col[0], col[1], col[2] = c[0], c[1], c[2]
	col[3], col[4], col[5] = c[0], c[1], c[2]
	return true
}

// reflect mirrors v about the plane with the given unit normal
func reflect(v, normal mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(normal.Mul(2 * v.Dot(normal)))
}

// SetMinDistance changes the connection threshold, clamped to [0, MaxDistance].
func (f *Field) SetMinDistance(d float32) {
	if d < 0 || math.IsNaN(float64(d)) {
		d = 0
	}
	if d > f.cfg.MaxDistance {
		d = f.cfg.MaxDistance
	}
	f.cfg.MinDistance = d
}

// SetLimitConnections toggles the per-particle connection cap.
func (f *Field) SetLimitConnections(on bool) {
	f.cfg.LimitConnections = on
}

// SetIndex switches the pair search strategy.
func (f *Field) SetIndex(kind IndexKind) error {
	if kind != IndexBrute && kind != IndexGrid {
		return fmt.Errorf("%w: unknown index %q", ErrInvalidConfig, kind)
	}
	f.cfg.Index = kind
	return nil
}

// Config returns the current parameters, including runtime changes.
func (f *Field) Config() Config {
	return f.cfg
}

// LineColor returns the base line color as RGB in [0,1].
func (f *Field) LineColor() mgl32.Vec3 {
	return f.line
}

// Particles returns the active pool. Callers must not modify it.
func (f *Field) Particles() []Particle {
	if f.disposed {
		return nil
	}
	return f.particles[:f.cfg.Count]
}

// Stats returns frame counters.
func (f *Field) Stats() Stats {
	return f.stats
}

// Dispose drops the buffers. It is safe to call more than once.
func (f *Field) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true
	f.particles = nil
	f.vertices = nil
	f.colors = nil
	f.points = nil
	f.grid.reset()
}

// Disposed reports whether Dispose was called.
func (f *Field) Disposed() bool {
	return f.disposed
}
