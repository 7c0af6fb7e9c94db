//go:build linux

package sensor

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealInputs reads the PIR and door detectors through the Linux GPIO
// character device.
type RealInputs struct {
	chip  *gpiocdev.Chip
	outer *gpiocdev.Line
	inner *gpiocdev.Line
	door  *gpiocdev.Line
}

// NewRealInputs requests the detector lines on the given chip (usually
// "gpiochip0"). PIR pins use pull-down to match Pi boot defaults; the
// door contact shorts its line to ground while closed, so that pin is
// pulled up and reads high when the door is open.
func NewRealInputs(chipName string, outerPin, innerPin, doorPin int) (*RealInputs, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	outer, err := chip.RequestLine(outerPin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request outer PIR pin %d: %w", outerPin, err)
	}

	inner, err := chip.RequestLine(innerPin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		outer.Close()
		chip.Close()
		return nil, fmt.Errorf("request inner PIR pin %d: %w", innerPin, err)
	}

	door, err := chip.RequestLine(doorPin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		inner.Close()
		outer.Close()
		chip.Close()
		return nil, fmt.Errorf("request door pin %d: %w", doorPin, err)
	}

	return &RealInputs{chip: chip, outer: outer, inner: inner, door: door}, nil
}

// MotionOuter reports the external PIR level. PIR modules drive the line
// high while movement is detected.
func (r *RealInputs) MotionOuter() (bool, error) {
	v, err := r.outer.Value()
	if err != nil {
		return false, fmt.Errorf("read outer PIR: %w", err)
	}
	return v == 1, nil
}

// MotionInner reports the internal PIR level.
func (r *RealInputs) MotionInner() (bool, error) {
	v, err := r.inner.Value()
	if err != nil {
		return false, fmt.Errorf("read inner PIR: %w", err)
	}
	return v == 1, nil
}

// DoorOpen reports the door contact level: high means open.
func (r *RealInputs) DoorOpen() (bool, error) {
	v, err := r.door.Value()
	if err != nil {
		return false, fmt.Errorf("read door contact: %w", err)
	}
	return v == 1, nil
}

// Close releases the detector lines and chip.
func (r *RealInputs) Close() error {
	var errs []error
	if r.outer != nil {
		if err := r.outer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close outer PIR: %w", err))
		}
	}
	if r.inner != nil {
		if err := r.inner.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close inner PIR: %w", err))
		}
	}
	if r.door != nil {
		if err := r.door.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close door contact: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// HC-SR04 timing. The trigger pulse must hold at least 10 us; the echo
// waits are hard timeouts so one bad ping cannot stall the control loop.
const (
	triggerPulse     = 10 * time.Microsecond
	echoStartTimeout = 10 * time.Millisecond
	echoEndTimeout   = 25 * time.Millisecond
)

// RealRanger drives an HC-SR04 ultrasonic ranger through the Linux GPIO
// character device.
type RealRanger struct {
	chip *gpiocdev.Chip
	trig *gpiocdev.Line
	echo *gpiocdev.Line
}

// NewRealRanger requests the trigger and echo lines on the given chip.
func NewRealRanger(chipName string, trigPin, echoPin int) (*RealRanger, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	trig, err := chip.RequestLine(trigPin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request trigger pin %d: %w", trigPin, err)
	}

	echo, err := chip.RequestLine(echoPin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		trig.Close()
		chip.Close()
		return nil, fmt.Errorf("request echo pin %d: %w", echoPin, err)
	}

	return &RealRanger{chip: chip, trig: trig, echo: echo}, nil
}

// MeasureDistance fires one ping and times the echo pulse. An echo that
// never starts within 10 ms or never ends within 25 ms reads as
// MaxRangeCm, as does anything outside the sensor's physical range.
func (r *RealRanger) MeasureDistance() (float64, error) {
	if err := r.trig.SetValue(0); err != nil {
		return 0, fmt.Errorf("clear trigger: %w", err)
	}
	time.Sleep(2 * time.Microsecond)
	if err := r.trig.SetValue(1); err != nil {
		return 0, fmt.Errorf("raise trigger: %w", err)
	}
	time.Sleep(triggerPulse)
	if err := r.trig.SetValue(0); err != nil {
		return 0, fmt.Errorf("drop trigger: %w", err)
	}

	start := time.Now()
	for {
		v, err := r.echo.Value()
		if err != nil {
			return 0, fmt.Errorf("read echo: %w", err)
		}
		if v == 1 {
			break
		}
		if time.Since(start) > echoStartTimeout {
			return MaxRangeCm, nil
		}
	}

	echoStart := time.Now()
	for {
		v, err := r.echo.Value()
		if err != nil {
			return 0, fmt.Errorf("read echo: %w", err)
		}
		if v == 0 {
			break
		}
		if time.Since(echoStart) > echoEndTimeout {
			return MaxRangeCm, nil
		}
	}

	// Round trip at the speed of sound, 343 m/s, halved for the return leg.
	distance := time.Since(echoStart).Seconds() * 34300 / 2

	if distance < MinRangeCm || distance > MaxRangeCm {
		return MaxRangeCm, nil
	}
	return distance, nil
}

// Close releases the ranger lines and chip. The trigger pin is put back
// to input first so it does not keep driving the sensor after shutdown.
func (r *RealRanger) Close() error {
	var errs []error
	if r.trig != nil {
		if err := r.trig.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure trigger: %w", err))
		}
		if err := r.trig.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trigger: %w", err))
		}
	}
	if r.echo != nil {
		if err := r.echo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close echo: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
