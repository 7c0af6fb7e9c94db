//go:build linux

package keypad

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Default BCM pin assignments for the 4x4 membrane keypad.
var (
	DefaultRowPins = [4]int{5, 6, 13, 19}
	DefaultColPins = [4]int{12, 16, 20, 21}
)

// layout maps matrix position to key, row-major.
var layout = [4][4]Key{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// settleDelay is the per-row wait after driving a row before the columns are
// sampled.
const settleDelay = time.Millisecond

// MatrixSource scans a 4x4 keypad matrix through the Linux GPIO character
// device. Rows are driven low one at a time; columns idle high on pull-ups
// and read low when the key at the crossing is held.
type MatrixSource struct {
	chip *gpiocdev.Chip
	rows *gpiocdev.Lines
	cols *gpiocdev.Lines
}

// NewMatrixSource requests the row and column lines on the given chip
// (usually "gpiochip0").
func NewMatrixSource(chipName string, rowPins, colPins [4]int) (*MatrixSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	rows, err := chip.RequestLines(rowPins[:], gpiocdev.AsOutput(1, 1, 1, 1))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request keypad rows %v: %w", rowPins, err)
	}

	cols, err := chip.RequestLines(colPins[:], gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		rows.Close()
		chip.Close()
		return nil, fmt.Errorf("request keypad columns %v: %w", colPins, err)
	}

	return &MatrixSource{chip: chip, rows: rows, cols: cols}, nil
}

// Scan drives each row low in turn and samples the columns. Returns the first
// held key found in scan order, or ok=false with all keys up. Takes at most
// four settle delays.
func (m *MatrixSource) Scan() (Key, bool, error) {
	values := make([]int, 4)
	for row := 0; row < 4; row++ {
		drive := []int{1, 1, 1, 1}
		drive[row] = 0
		if err := m.rows.SetValues(drive); err != nil {
			return 0, false, fmt.Errorf("drive row %d: %w", row, err)
		}
		time.Sleep(settleDelay)

		if err := m.cols.Values(values); err != nil {
			return 0, false, fmt.Errorf("read columns: %w", err)
		}
		for col := 0; col < 4; col++ {
			if values[col] == 0 {
				return layout[row][col], true, nil
			}
		}
	}
	return 0, false, nil
}

// Close releases the matrix lines and chip.
func (m *MatrixSource) Close() error {
	var errs []error
	if m.rows != nil {
		if err := m.rows.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rows: %w", err))
		}
	}
	if m.cols != nil {
		if err := m.cols.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close columns: %w", err))
		}
	}
	if m.chip != nil {
		if err := m.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
