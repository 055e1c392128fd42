package field

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// cell is the integer coordinate of a grid bin
type cell [3]int32

// grid bins particle indices into cubes of side size
type grid struct {
	size       float32
	bins       map[cell][]int
	candidates []int
}

// reset drops all bins
func (g *grid) reset() {
	g.bins = nil
	g.candidates = nil
}

// cellOf returns the bin containing pos
func (g *grid) cellOf(pos mgl32.Vec3) cell {
	return cell{
		int32(math.Floor(float64(pos[0] / g.size))),
		int32(math.Floor(float64(pos[1] / g.size))),
		int32(math.Floor(float64(pos[2] / g.size))),
	}
}

// build assigns particles to bins
func (g *grid) build(active []Particle, size float32) {
	g.size = size
	if g.bins == nil {
		g.bins = make(map[cell][]int)
	}
	for key, bin := range g.bins {
		g.bins[key] = bin[:0]
	}
	for i := range active {
		key := g.cellOf(active[i].Pos)
		g.bins[key] = append(g.bins[key], i)
	}
	// Keep the map from growing without bound as particles drift.
	if len(g.bins) > 4*len(active) {
		for key, bin := range g.bins {
			if len(bin) == 0 {
				delete(g.bins, key)
			}
		}
	}
}

// neighbours returns the indices greater than i found in the 27 bins around pos, ascending
func (g *grid) neighbours(i int, pos mgl32.Vec3) []int {
	g.candidates = g.candidates[:0]
	c := g.cellOf(pos)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				for _, j := range g.bins[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if j > i {
						g.candidates = append(g.candidates, j)
					}
				}
			}
		}
	}
	sort.Ints(g.candidates)
	return g.candidates
}

// connectGrid is connectAll restricted to neighbouring bins. Pairs are
// visited in the same order, so both produce identical buffers.
func (f *Field) connectGrid(active []Particle) int {
	f.grid.build(active, f.cfg.MinDistance)
	connected := 0
	for i := range active {
		if f.saturated(i) {
			continue
		}
		for _, j := range f.grid.neighbours(i, active[i].Pos) {
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
