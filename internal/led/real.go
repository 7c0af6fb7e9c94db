//go:build linux

package led

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/alarm-panel/internal/log"
)

// RealRGB drives a common-cathode RGB LED through the Linux GPIO
// character device.
type RealRGB struct {
	chip   *gpiocdev.Chip
	lines  *gpiocdev.Lines
	logger zerolog.Logger
	failed bool
}

// NewRealRGB requests the red, green and blue lines on the given chip
// (usually "gpiochip0"), in that order, all driven low.
func NewRealRGB(chipName string, rPin, gPin, bPin int) (*RealRGB, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines([]int{rPin, gPin, bPin}, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request led pins %d/%d/%d: %w", rPin, gPin, bPin, err)
	}

	return &RealRGB{chip: chip, lines: lines, logger: log.WithComponent("led")}, nil
}

// Set drives the three channels. The first failed write of an outage is
// logged; the panel keeps running with a stale color.
func (l *RealRGB) Set(r, g, b bool) {
	if err := l.lines.SetValues([]int{bit(r), bit(g), bit(b)}); err != nil {
		if !l.failed {
			l.failed = true
			l.logger.Warn().Err(err).Msg("led write failed, indicator degraded")
		}
		return
	}
	l.failed = false
}

// Close darkens the LED and releases the lines.
func (l *RealRGB) Close() error {
	var errs []error
	if l.lines != nil {
		if err := l.lines.SetValues([]int{0, 0, 0}); err != nil {
			errs = append(errs, fmt.Errorf("darken led: %w", err))
		}
		if err := l.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close led lines: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func bit(on bool) int {
	if on {
		return 1
	}
	return 0
}
