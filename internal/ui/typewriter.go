package ui

import "time"

// Typewriter timings
const (
	TypeDelay   = 100 * time.Millisecond
	HoldDelay   = 2 * time.Second
	DeleteDelay = 50 * time.Millisecond
	PauseDelay  = time.Second
	BlinkPeriod = time.Second
)

// Typewriter types Text one rune at a time, holds it, deletes it and pauses,
// forever. It is a pure function of elapsed time.
type Typewriter struct {
	Text        string
	TypeDelay   time.Duration
	Hold        time.Duration
	DeleteDelay time.Duration
	Pause       time.Duration
}

// NewTypewriter uses the default timings.
func NewTypewriter(text string) Typewriter {
	return Typewriter{
		Text:        text,
		TypeDelay:   TypeDelay,
		Hold:        HoldDelay,
		DeleteDelay: DeleteDelay,
		Pause:       PauseDelay,
	}
}

// phases returns the length of the typing and deleting phases
func (t Typewriter) phases() (typing, deleting time.Duration) {
	n := time.Duration(len([]rune(t.Text)) + 1)
	return n * t.TypeDelay, n * t.DeleteDelay
}

// Cycle is the length of one full type, hold, delete and pause loop.
func (t Typewriter) Cycle() time.Duration {
	typing, deleting := t.phases()
	return typing + t.Hold + deleting + t.Pause
}

// At returns the visible prefix after elapsed.
func (t Typewriter) At(elapsed time.Duration) string {
	cycle := t.Cycle()
	if elapsed < 0 || cycle <= 0 {
		return ""
	}
	runes := []rune(t.Text)
	n := len(runes)
	typing, deleting := t.phases()

	e := elapsed % cycle
	switch {
	case e < typing:
		return string(runes[:int(e/t.TypeDelay)])
	case e < typing+t.Hold:
		return t.Text
	case e < typing+t.Hold+deleting:
		i := n - int((e-typing-t.Hold)/t.DeleteDelay)
		return string(runes[:i])
	default:
		return ""
	}
}

// Cursor reports whether the blinking cursor is shown after elapsed.
func Cursor(elapsed time.Duration) bool {
	if elapsed < 0 {
		return true
	}
	return elapsed%BlinkPeriod < BlinkPeriod/2
}
