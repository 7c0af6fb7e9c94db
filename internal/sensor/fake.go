package sensor

// FakeInputs is a test double whose detector levels are set directly on
// the struct between polls.
type FakeInputs struct {
	Outer bool
	Inner bool
	Door  bool

	// OuterErr, InnerErr and DoorErr, if set, are returned by the
	// corresponding read.
	OuterErr error
	InnerErr error
	DoorErr  error

	// Closed tracks if Close was called.
	Closed bool
}

// MotionOuter returns the scripted outer PIR level.
func (f *FakeInputs) MotionOuter() (bool, error) {
	if f.OuterErr != nil {
		return false, f.OuterErr
	}
	return f.Outer, nil
}

// MotionInner returns the scripted inner PIR level.
func (f *FakeInputs) MotionInner() (bool, error) {
	if f.InnerErr != nil {
		return false, f.InnerErr
	}
	return f.Inner, nil
}

// DoorOpen returns the scripted door contact level.
func (f *FakeInputs) DoorOpen() (bool, error) {
	if f.DoorErr != nil {
		return false, f.DoorErr
	}
	return f.Door, nil
}

// Close marks the inputs as closed.
func (f *FakeInputs) Close() error {
	f.Closed = true
	return nil
}

// FakeRanger is a test double that returns scripted distances.
type FakeRanger struct {
	// Distances contains scripted readings in centimetres. Each call to
	// MeasureDistance consumes the next one; once exhausted the last
	// reading repeats. An empty script reads as MaxRangeCm.
	Distances []float64

	// Err, if set, is returned by MeasureDistance.
	Err error

	// Calls counts MeasureDistance invocations.
	Calls int

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeRanger creates a FakeRanger with the given scripted readings.
func NewFakeRanger(distances ...float64) *FakeRanger {
	return &FakeRanger{Distances: distances}
}

// MeasureDistance returns the next scripted distance.
func (f *FakeRanger) MeasureDistance() (float64, error) {
	f.Calls++
	if f.Err != nil {
		return 0, f.Err
	}
	if len(f.Distances) == 0 {
		return MaxRangeCm, nil
	}
	d := f.Distances[f.index]
	if f.index < len(f.Distances)-1 {
		f.index++
	}
	return d, nil
}

// Close marks the ranger as closed.
func (f *FakeRanger) Close() error {
	f.Closed = true
	return nil
}
