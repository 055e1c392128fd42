// Package camera projects the particle cloud onto the screen. Resizing the
// viewport only changes the projection here; the field is never touched.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera defaults
const (
	DefaultFOV      = 45.0   // Vertical field of view in degrees
	DefaultNear     = 1.0    // Near clip plane
	DefaultFar      = 4000.0 // Far clip plane
	DefaultDistance = 1200.0 // Eye distance from the origin on +Z
	GroupSpin       = 0.1    // Group rotation in radians per second
	AutoRotate      = 0.3    // Orbit speed, in turns per minute at 60 fps
)

// Camera is a perspective camera orbiting the origin
type Camera struct {
	fov      float32
	near     float32
	far      float32
	distance float32
	width    int
	height   int
	orbit    float32 // Orbit angle around Y
	spin     float32 // Group rotation around Y
	proj     mgl32.Mat4
	viewProj mgl32.Mat4
}

// New returns a camera for a width x height viewport
func New(width, height int) *Camera {
	c := &Camera{
		fov:      DefaultFOV,
		near:     DefaultNear,
		far:      DefaultFar,
		distance: DefaultDistance,
	}
	c.Resize(width, height)
	return c
}

// Resize updates the aspect ratio. Non-positive sizes are ignored.
func (c *Camera) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.fov), float32(width)/float32(height), c.near, c.far)
	c.update()
}

// Size returns the viewport size
func (c *Camera) Size() (int, int) {
	return c.width, c.height
}

// Advance rotates the group and the orbit by elapsed seconds
func (c *Camera) Advance(seconds float64) {
	c.spin = float32(math.Mod(float64(c.spin)+seconds*GroupSpin, 2*math.Pi))
	// Orbit controls turn 2π/60/60 * speed per frame at 60 fps.
	c.orbit = float32(math.Mod(float64(c.orbit)+seconds*2*math.Pi/60*AutoRotate, 2*math.Pi))
	c.update()
}

// update rebuilds the combined matrix
func (c *Camera) update() {
	eye := mgl32.Vec3{
		c.distance * float32(math.Sin(float64(c.orbit))),
		0,
		c.distance * float32(math.Cos(float64(c.orbit))),
	}
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	model := mgl32.HomogRotate3DY(c.spin)
	c.viewProj = c.proj.Mul4(view).Mul4(model)
}

// Project maps a world point to screen pixels. ok is false for points
// behind the camera or outside the clip volume depth.
func (c *Camera) Project(p mgl32.Vec3) (x, y float32, ok bool) {
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	w := clip[3]
	if w <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	if ndc[2] < -1 || ndc[2] > 1 {
		return 0, 0, false
	}
	x = (ndc[0] + 1) / 2 * float32(c.width)
	y = (1 - ndc[1]) / 2 * float32(c.height)
	return x, y, true
}

// ProjectBuffer projects consecutive xyz triples of buf into out as xy
// pairs, with NaN for clipped points. out is grown as needed and returned.
func (c *Camera) ProjectBuffer(buf []float32, out []float32) []float32 {
	n := len(buf) / 3
	if cap(out) < n*2 {
		out = make([]float32, n*2)
	}
	out = out[:n*2]
	nan := float32(math.NaN())
	for i := 0; i < n; i++ {
		x, y, ok := c.Project(mgl32.Vec3{buf[i*3], buf[i*3+1], buf[i*3+2]})
		if !ok {
			x, y = nan, nan
		}
		out[i*2], out[i*2+1] = x, y
	}
	return out
}
