//go:build !linux

package led

import "errors"

// RealRGB is not available on non-Linux platforms.
type RealRGB struct{}

// NewRealRGB returns an error on non-Linux platforms.
func NewRealRGB(chipName string, rPin, gPin, bPin int) (*RealRGB, error) {
	return nil, errors.New("led: gpio not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (l *RealRGB) Set(r, g, b bool) {}

// Close is not implemented on non-Linux platforms.
func (l *RealRGB) Close() error { return nil }
