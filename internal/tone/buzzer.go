//go:build linux

package tone

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/alarm-panel/internal/log"
)

// Buzzer drives a piezo element with a software square wave through the
// Linux GPIO character device.
type Buzzer struct {
	chip   *gpiocdev.Chip
	line   *gpiocdev.Line
	logger zerolog.Logger
	failed bool
}

// NewBuzzer requests the buzzer line on the given chip (usually
// "gpiochip0").
func NewBuzzer(chipName string, pin int) (*Buzzer, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}

	return &Buzzer{chip: chip, line: line, logger: log.WithComponent("tone")}, nil
}

// Play bit-bangs a 50% duty square wave at the given frequency for the
// given duration, then leaves the line low. A write failure cuts the
// tone short; the panel keeps running without sound.
func (b *Buzzer) Play(freqHz float64, d time.Duration) {
	if freqHz <= 0 || d <= 0 {
		return
	}

	half := time.Duration(float64(time.Second) / freqHz / 2)
	deadline := time.Now().Add(d)
	level := 0
	for time.Now().Before(deadline) {
		level = 1 - level
		if !b.set(level) {
			return
		}
		time.Sleep(half)
	}
	b.set(0)
}

// set writes the line level, logging the first failure of an outage.
func (b *Buzzer) set(level int) bool {
	if err := b.line.SetValue(level); err != nil {
		if !b.failed {
			b.failed = true
			b.logger.Warn().Err(err).Msg("buzzer write failed, sound degraded")
		}
		return false
	}
	b.failed = false
	return true
}

// Close silences the buzzer and releases the line. The pin is put back
// to input so the element cannot be left driven after shutdown.
func (b *Buzzer) Close() error {
	var errs []error
	if b.line != nil {
		if err := b.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("silence buzzer: %w", err))
		}
		if err := b.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure buzzer: %w", err))
		}
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close buzzer: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
