package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input is the keyboard state for one tick.
type Input interface {
	JustPressed(k ebiten.Key) bool
	// Repeating is true on the first tick a key is held and then at a steady
	// rate while it stays down.
	Repeating(k ebiten.Key) bool
	Chars() []rune
}

// Key repeat timing in ticks
const (
	repeatDelay    = 24
	repeatInterval = 3
)

// ebitenInput reads the live keyboard
type ebitenInput struct {
	chars []rune
}

func (in *ebitenInput) JustPressed(k ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(k)
}

func (in *ebitenInput) Repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	if d == 1 {
		return true
	}
	return d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

func (in *ebitenInput) Chars() []rune {
	in.chars = ebiten.AppendInputChars(in.chars[:0])
	return in.chars
}
