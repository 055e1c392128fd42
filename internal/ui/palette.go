package ui

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Palette
var (
	background = color.RGBA{0, 0, 0, 255}
	pointColor = color.RGBA{0x63, 0x66, 0xf1, 0xff}
	panelColor = color.RGBA{0, 0, 0, 0x4d}
	dimText    = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	errorColor = color.RGBA{0xf8, 0x71, 0x71, 0xff}
)

// Heading hues for the docs sections: blue, purple, pink, yellow, green
var headingHues = []float64{215, 270, 330, 48, 142}

// Saturation and value of the heading hues
const (
	hueSaturation = 0.7
	hueValue      = 1.0
)

// hue returns an opaque color of hue h in degrees. Each channel n (5 red,
// 3 green, 1 blue) is v - v*s*clamp(min(k, 4-k)) with k = (n + h/60) mod 6.
func hue(h float64) color.RGBA {
	sector := math.Mod(h/60, 6)
	if sector < 0 {
		sector += 6
	}
	var rgb mgl32.Vec3
	for i, n := range [3]float64{5, 3, 1} {
		k := math.Mod(n+sector, 6)
		rgb[i] = float32(hueValue - hueValue*hueSaturation*math.Max(0, math.Min(1, math.Min(k, 4-k))))
	}
	return premultiplied(rgb, 1)
}

// premultiplied returns rgb at the given alpha as a premultiplied color.
// Components are clamped to [0,1].
func premultiplied(rgb mgl32.Vec3, alpha float32) color.RGBA {
	a := clamp01(alpha)
	return color.RGBA{
		R: uint8(clamp01(rgb[0]) * a * 255),
		G: uint8(clamp01(rgb[1]) * a * 255),
		B: uint8(clamp01(rgb[2]) * a * 255),
		A: uint8(a * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
