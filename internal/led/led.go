// Package led drives the panel's RGB status indicator.
package led

// RGB sets the three color channels of the status LED. Calls are
// fire-and-forget; a failed write leaves the previous color lit.
type RGB interface {
	Set(r, g, b bool)
}

// Color is one RGB state.
type Color struct {
	R, G, B bool
}

// Fake records the current and past colors for tests.
type Fake struct {
	Current Color
	History []Color
}

// Set records the color.
func (f *Fake) Set(r, g, b bool) {
	f.Current = Color{R: r, G: g, B: b}
	f.History = append(f.History, f.Current)
}
