//go:build !linux

package tone

import (
	"errors"
	"time"
)

// Buzzer is not available on non-Linux platforms.
type Buzzer struct{}

// NewBuzzer returns an error on non-Linux platforms.
func NewBuzzer(chipName string, pin int) (*Buzzer, error) {
	return nil, errors.New("tone: gpio buzzer not supported on this platform (requires Linux)")
}

// Play is not implemented on non-Linux platforms.
func (b *Buzzer) Play(freqHz float64, d time.Duration) {}

// Close is not implemented on non-Linux platforms.
func (b *Buzzer) Close() error { return nil }
