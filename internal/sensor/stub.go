//go:build !linux

package sensor

import "errors"

// RealInputs is not available on non-Linux platforms.
type RealInputs struct{}

// NewRealInputs returns an error on non-Linux platforms.
func NewRealInputs(chipName string, outerPin, innerPin, doorPin int) (*RealInputs, error) {
	return nil, errors.New("sensor: gpio not supported on this platform (requires Linux)")
}

// MotionOuter is not implemented on non-Linux platforms.
func (r *RealInputs) MotionOuter() (bool, error) {
	return false, errors.New("sensor: not supported")
}

// MotionInner is not implemented on non-Linux platforms.
func (r *RealInputs) MotionInner() (bool, error) {
	return false, errors.New("sensor: not supported")
}

// DoorOpen is not implemented on non-Linux platforms.
func (r *RealInputs) DoorOpen() (bool, error) {
	return false, errors.New("sensor: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealInputs) Close() error { return nil }

// RealRanger is not available on non-Linux platforms.
type RealRanger struct{}

// NewRealRanger returns an error on non-Linux platforms.
func NewRealRanger(chipName string, trigPin, echoPin int) (*RealRanger, error) {
	return nil, errors.New("sensor: gpio not supported on this platform (requires Linux)")
}

// MeasureDistance is not implemented on non-Linux platforms.
func (r *RealRanger) MeasureDistance() (float64, error) {
	return 0, errors.New("sensor: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealRanger) Close() error { return nil }
