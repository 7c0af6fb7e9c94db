// Package keypad turns raw 4x4 matrix scans into single debounced keypress
// events. The Source abstraction reports which key is currently held; the
// real implementation scans the matrix through the Linux GPIO character
// device, the fake scripts key levels for tests.
package keypad

import "github.com/sweeney/alarm-panel/internal/metrics"

// Key is one physical key: '0'-'9', 'A'-'D', '*' or '#'.
type Key byte

// Command keys.
const (
	KeyArmHome   Key = 'A'
	KeyArmAway   Key = 'B'
	KeyDisarm    Key = 'C'
	KeyPanic     Key = 'D'
	KeyBackspace Key = '*'
	KeyConfirm   Key = '#'
)

// IsDigit reports whether k is a numeric key.
func (k Key) IsDigit() bool { return k >= '0' && k <= '9' }

// Digit returns the key's byte value for use in the code buffer.
func (k Key) Digit() byte { return byte(k) }

// Source reports the key currently held down, already electrically settled.
// Implementations must not block beyond their own settle delays.
type Source interface {
	// Scan returns the held key, or ok=false when no key is down.
	Scan() (Key, bool, error)

	// Close releases scanner resources.
	Close() error
}

// Input derives one event per physical press-release cycle from a Source's
// level reads. Holding a key yields exactly one event; a read fault counts
// as no key and never blocks the tick.
type Input struct {
	src  Source
	held Key // nonzero while a reported key remains down
}

// NewInput wraps a Source.
func NewInput(src Source) *Input {
	return &Input{src: src}
}

// Poll returns at most one key per call. The key is reported on its press
// edge and suppressed until the Source sees it released.
func (in *Input) Poll() (Key, bool) {
	k, ok, err := in.src.Scan()
	if err != nil {
		// Held state survives a fault blip so the key is not re-reported.
		metrics.IncSensorFault("keypad")
		return 0, false
	}
	if !ok {
		in.held = 0
		return 0, false
	}
	if k == in.held {
		return 0, false
	}
	in.held = k
	return k, true
}
