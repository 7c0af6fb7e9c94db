package display

import "time"

// Countdown is one recorded ShowEntryCountdown call.
type Countdown struct {
	Remaining int
	Filled    int
}

// Fake records every rendering call for tests.
type Fake struct {
	Statuses   []string
	Progress   []int
	Countdowns []Countdown
	Clocks     []time.Time
}

// ShowStatus records the status line.
func (f *Fake) ShowStatus(message string) {
	f.Statuses = append(f.Statuses, message)
}

// ShowCodeProgress records the filled count.
func (f *Fake) ShowCodeProgress(filled int) {
	f.Progress = append(f.Progress, filled)
}

// ShowEntryCountdown records the countdown view.
func (f *Fake) ShowEntryCountdown(remaining int, filled int) {
	f.Countdowns = append(f.Countdowns, Countdown{Remaining: remaining, Filled: filled})
}

// ShowClock records the clock refresh.
func (f *Fake) ShowClock(t time.Time) {
	f.Clocks = append(f.Clocks, t)
}

// LastStatus returns the most recent status line, or "" if none.
func (f *Fake) LastStatus() string {
	if len(f.Statuses) == 0 {
		return ""
	}
	return f.Statuses[len(f.Statuses)-1]
}
