// Package display renders panel state for the user.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sweeney/alarm-panel/internal/code"
)

// Display is the rendering surface driven by the state machine. Calls
// are fire-and-forget and must not block the control loop.
type Display interface {
	// ShowStatus replaces the current view with a status or notice line.
	ShowStatus(message string)

	// ShowCodeProgress renders the masked code entry view with the
	// given number of digits filled.
	ShowCodeProgress(filled int)

	// ShowEntryCountdown renders the entry-delay view: seconds left
	// plus the masked code progress.
	ShowEntryCountdown(remaining int, filled int)

	// ShowClock refreshes the wall-clock line.
	ShowClock(t time.Time)
}

// Console renders each view as a plain line on a writer. It stands in
// for the panel's serial LCD on development machines.
type Console struct {
	w io.Writer
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// ShowStatus writes the status line.
func (c *Console) ShowStatus(message string) {
	fmt.Fprintf(c.w, "%s\n", message)
}

// ShowCodeProgress writes the masked code entry line.
func (c *Console) ShowCodeProgress(filled int) {
	fmt.Fprintf(c.w, "Enter Code: %s\n", progress(filled))
}

// ShowEntryCountdown writes the countdown line with code progress.
func (c *Console) ShowEntryCountdown(remaining int, filled int) {
	fmt.Fprintf(c.w, "Time: %ds  Enter code: %s\n", remaining, progress(filled))
}

// ShowClock writes the wall-clock line.
func (c *Console) ShowClock(t time.Time) {
	fmt.Fprintf(c.w, "%s\n", t.Format("15:04:05"))
}

// progress renders the masked code state: one star per entered digit,
// underscores for the rest.
func progress(filled int) string {
	if filled < 0 {
		filled = 0
	}
	if filled > code.Length {
		filled = code.Length
	}
	return strings.Repeat("*", filled) + strings.Repeat("_", code.Length-filled)
}
