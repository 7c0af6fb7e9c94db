package tone

import "time"

// Note is one recorded Play call.
type Note struct {
	FreqHz   float64
	Duration time.Duration
}

// Fake records every tone for tests. It never blocks.
type Fake struct {
	Notes []Note
}

// Play records the note.
func (f *Fake) Play(freqHz float64, d time.Duration) {
	f.Notes = append(f.Notes, Note{FreqHz: freqHz, Duration: d})
}

// Last returns the most recent note, or a zero Note if nothing played.
func (f *Fake) Last() Note {
	if len(f.Notes) == 0 {
		return Note{}
	}
	return f.Notes[len(f.Notes)-1]
}
