package keypad

// FakeSource is a test double that replays scripted key levels.
// Each Scan consumes the next level; 0 means no key held.
type FakeSource struct {
	// Levels holds the scripted per-scan key levels.
	Levels []Key

	// ScanError, if set, is returned by every Scan.
	ScanError error

	// Closed tracks whether Close was called.
	Closed bool

	index int
}

// NewFakeSource creates a FakeSource over the given levels.
func NewFakeSource(levels ...Key) *FakeSource {
	return &FakeSource{Levels: levels}
}

// Scan returns the next scripted level. Exhausted scripts read as no key.
func (f *FakeSource) Scan() (Key, bool, error) {
	if f.ScanError != nil {
		return 0, false, f.ScanError
	}
	if f.index >= len(f.Levels) {
		return 0, false, nil
	}
	k := f.Levels[f.index]
	f.index++
	if k == 0 {
		return 0, false, nil
	}
	return k, true, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// Press appends a press-release cycle for k to the script.
func (f *FakeSource) Press(k Key) {
	f.Levels = append(f.Levels, k, 0)
}
