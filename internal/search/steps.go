package search

import "time"

// StepDelay is the pause after each thinking step.
const StepDelay = 800 * time.Millisecond

// ThinkingSteps are shown one by one before the request is sent.
var ThinkingSteps = []string{
	"Initializing neural networks...",
	"Extracting meaningful features from the search query and page content using NLP techniques....",
	"Feeding extracted features into a neural network model (MLPRegressor) ...",
	"Processing semantic analysis...",
	"Using Neural Networks to process multiple features ...",
	"Synthesizing information streams...",
	"Optimizing result coherence...",
}

// Steps reveals messages at a fixed interval from Start. The first message
// is visible immediately; the sequence ends one delay after the last one.
type Steps struct {
	Messages []string
	Delay    time.Duration
	Start    time.Time
}

// NewSteps starts the default sequence at start.
func NewSteps(start time.Time) Steps {
	return Steps{Messages: ThinkingSteps, Delay: StepDelay, Start: start}
}

// Visible returns the messages shown at now.
func (s Steps) Visible(now time.Time) []string {
	if len(s.Messages) == 0 || now.Before(s.Start) {
		return nil
	}
	if s.Delay <= 0 {
		return s.Messages
	}
	n := int(now.Sub(s.Start)/s.Delay) + 1
	if n > len(s.Messages) {
		n = len(s.Messages)
	}
	return s.Messages[:n]
}

// Duration is the time from Start until the sequence completes.
func (s Steps) Duration() time.Duration {
	if s.Delay <= 0 {
		return 0
	}
	return time.Duration(len(s.Messages)) * s.Delay
}

// Done reports whether the sequence completed at now.
func (s Steps) Done(now time.Time) bool {
	return !now.Before(s.Start.Add(s.Duration()))
}
