// Package detector provides environment detection for color output selection.
package detector

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/ui/output"
	"go.trai.ch/zerr"
)

// ColorMode represents how output is colored.
type ColorMode int

const (
	// ColorAuto uses the color capabilities reported by the terminal.
	ColorAuto ColorMode = iota
	// ColorAlways forces basic ANSI colors, as understood by CI log viewers.
	ColorAlways
	// ColorNever disables colors.
	ColorNever
)

// DetectEnvironment returns the recommended color mode.
// CI logs get ANSI colors, a terminal gets its own profile and anything else none.
func DetectEnvironment() ColorMode {
	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return ColorAlways
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ColorNever
	}
	return ColorAuto
}

// DetectInteractive reports whether a full-screen view can be shown: stdin and
// stdout are terminals and the process does not run in CI.
func DetectInteractive() bool {
	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// ResolveUI applies the --ui flag to the detected interactivity.
// userFlag should be one of: "auto", "tui", "plain", or empty.
func ResolveUI(interactive bool, userFlag string) (bool, error) {
	switch userFlag {
	case "tui":
		return true, nil
	case "plain":
		return false, nil
	case "auto", "":
		return interactive, nil
	default:
		return false, zerr.With(domain.ErrInvalidUIMode, "ui", userFlag)
	}
}

// Profile returns the color profile of a mode.
func Profile(mode ColorMode) termenv.Profile {
	switch mode {
	case ColorAlways:
		return output.ColorProfileANSI()
	case ColorNever:
		return termenv.Ascii
	default:
		return output.ColorProfile()
	}
}

// ResolveMode applies the --color flag to the detected mode.
// userFlag should be one of: "auto", "always", "never", or empty.
func ResolveMode(autoDetected ColorMode, userFlag string) (ColorMode, error) {
	switch userFlag {
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	case "auto", "":
		return autoDetected, nil
	default:
		return autoDetected, zerr.With(domain.ErrInvalidColorMode, "color", userFlag)
	}
}
