// Package output creates the termenv outputs sift writes colored text to.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ColorProfile returns the profile the terminal reports. NO_COLOR selects Ascii.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI returns basic ANSI colors, which CI log viewers understand.
// NO_COLOR selects Ascii.
func ColorProfileANSI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New creates an output colored for the terminal. A nil w selects stderr, where logs go.
func New(w io.Writer) *termenv.Output {
	return NewWithProfile(w, ColorProfile())
}

// NewWithProfile creates an output with a fixed profile. Colors are emitted
// whether or not w is a terminal; the profile alone decides.
func NewWithProfile(w io.Writer, profile termenv.Profile) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(profile), termenv.WithTTY(true))
}
