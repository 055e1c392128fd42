package field

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridMatchesBruteForce(t *testing.T) {
	for _, limit := range []bool{false, true} {
		cfg := smallConfig(150, 200, 45)
		cfg.MaxConnections = 4
		cfg.LimitConnections = limit

		brute := newTestField(t, cfg, 21)
		cfg.Index = IndexGrid
		indexed := newTestField(t, cfg, 21)

		for frame := 0; frame < 60; frame++ {
			want := brute.Step(ReferenceFrame)
			got := indexed.Step(ReferenceFrame)
			require.Equal(t, want.Connections, got.Connections, "limit=%v frame %d", limit, frame)
			require.Equal(t, want.Vertices, got.Vertices, "limit=%v frame %d", limit, frame)
			require.Equal(t, want.Colors, got.Colors, "limit=%v frame %d", limit, frame)
		}
	}
}

func TestSetIndex(t *testing.T) {
	f := newTestField(t, smallConfig(4, 100, 1000), 1)

	require.NoError(t, f.SetIndex(IndexGrid))
	assert.Equal(t, IndexGrid, f.Config().Index)
	assert.Equal(t, 6, f.Step(ReferenceFrame).Connections)

	assert.ErrorIs(t, f.SetIndex("kd"), ErrInvalidConfig)
	assert.Equal(t, IndexGrid, f.Config().Index)
}

func TestGridNeighboursAscending(t *testing.T) {
	active := []Particle{
		{Pos: mgl32.Vec3{0, 0, 0}},
		{Pos: mgl32.Vec3{25, 0, 0}},
		{Pos: mgl32.Vec3{-5, 5, 5}},
		{Pos: mgl32.Vec3{500, 0, 0}},
		{Pos: mgl32.Vec3{9, -9, 1}},
	}
	var g grid
	g.build(active, 10)

	assert.Equal(t, []int{2, 4}, g.neighbours(0, active[0].Pos))
	assert.Empty(t, g.neighbours(3, active[3].Pos))
}
