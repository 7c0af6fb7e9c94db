// Package tone drives the panel's piezo buzzer.
package tone

import "time"

// Player produces a single tone. Play blocks the caller for the
// duration. The longest panel tone is half a second; the control
// loop's ticker drops any ticks missed while a tone plays.
type Player interface {
	Play(freqHz float64, d time.Duration)
}

// Silent is a Player that produces no sound and returns immediately.
type Silent struct{}

// Play does nothing.
func (Silent) Play(freqHz float64, d time.Duration) {}
