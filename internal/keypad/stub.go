//go:build !linux

package keypad

import "errors"

// Default BCM pin assignments for the 4x4 membrane keypad.
var (
	DefaultRowPins = [4]int{5, 6, 13, 19}
	DefaultColPins = [4]int{12, 16, 20, 21}
)

// MatrixSource is not available on non-Linux platforms.
type MatrixSource struct{}

// NewMatrixSource returns an error on non-Linux platforms.
func NewMatrixSource(chipName string, rowPins, colPins [4]int) (*MatrixSource, error) {
	return nil, errors.New("keypad: matrix scanning not supported on this platform (requires Linux)")
}

// Scan is not implemented on non-Linux platforms.
func (m *MatrixSource) Scan() (Key, bool, error) {
	return 0, false, errors.New("keypad: not supported")
}

// Close is not implemented on non-Linux platforms.
func (m *MatrixSource) Close() error { return nil }
