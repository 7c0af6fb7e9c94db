// Package code implements the fixed-length security code entry buffer.
// The buffer holds at most four decimal digits; overflow appends and
// underflow backspaces are no-ops so callers never need to range-check.
package code

// Length is the fixed security code length.
const Length = 4

// Buffer accumulates entered digits. The zero value is an empty buffer.
// Not safe for concurrent use; the panel loop is the only writer.
type Buffer struct {
	digits [Length]byte
	n      int
}

// Append adds one digit ('0'-'9'). Non-digits and appends past the fixed
// length are ignored. Reports whether the digit was accepted.
func (b *Buffer) Append(d byte) bool {
	if d < '0' || d > '9' {
		return false
	}
	if b.n >= Length {
		return false
	}
	b.digits[b.n] = d
	b.n++
	return true
}

// Backspace removes the most recent digit. Empty-buffer backspaces are
// ignored. Reports whether a digit was removed.
func (b *Buffer) Backspace() bool {
	if b.n == 0 {
		return false
	}
	b.n--
	b.digits[b.n] = 0
	return true
}

// Len returns the number of digits currently entered, always in [0, Length].
func (b *Buffer) Len() int { return b.n }

// IsComplete reports whether the buffer holds a full code.
func (b *Buffer) IsComplete() bool { return b.n == Length }

// Validate compares a complete buffer against the configured code.
// An incomplete buffer never validates.
func (b *Buffer) Validate(expected string) bool {
	if b.n != Length || len(expected) != Length {
		return false
	}
	return string(b.digits[:b.n]) == expected
}

// Clear resets the buffer to empty. Called after every validation attempt and
// whenever a state transition abandons code entry.
func (b *Buffer) Clear() {
	b.digits = [Length]byte{}
	b.n = 0
}
