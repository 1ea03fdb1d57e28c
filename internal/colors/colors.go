// Package colors renders ivh output with ANSI colors when the terminal
// supports them and as plain text otherwise.
package colors

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// ANSI codes used by ivh.
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"
	ColorGray  = "\033[90m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
)

var colorEnabled = detect()

// detect honors NO_COLOR and FORCE_COLOR, then requires a capable TERM and
// a terminal on stdout.
func detect() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	termName := strings.ToLower(os.Getenv("TERM"))
	if runtime.GOOS == "windows" {
		return os.Getenv("WT_SESSION") != "" || os.Getenv("VSCODE_PID") != "" ||
			strings.Contains(termName, "color") || strings.Contains(termName, "xterm")
	}
	if termName == "" || termName == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SetColorEnabled overrides detection.
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// IsColorEnabled reports whether output is colored.
func IsColorEnabled() bool {
	return colorEnabled
}

func colorize(text, code string) string {
	if !colorEnabled {
		return text
	}
	return code + text + ColorReset
}

func Gray(text string) string {
	return colorize(text, ColorGray)
}

func Bold(text string) string {
	return colorize(text, ColorBold)
}

func Dim(text string) string {
	return colorize(text, ColorDim)
}

// EntryID colors an entry id.
func EntryID(id string) string {
	return colorize(id, BrightYellow)
}

// BranchName colors a branch name, highlighting the active one.
func BranchName(name string, active bool) string {
	if active {
		return Bold(colorize(name, BrightGreen))
	}
	return colorize(name, BrightBlue)
}

// CursorMarker returns the gutter mark for an entry row.
func CursorMarker(current bool) string {
	if current {
		return colorize("*", BrightGreen)
	}
	return " "
}

// Position renders a cursor position within a branch of length, 1-based.
func Position(pos, length int) string {
	return Dim(fmt.Sprintf("[%d/%d]", pos+1, length))
}

// EventLabel colors an event type by what it did to the history.
func EventLabel(event string) string {
	switch event {
	case "record":
		return colorize(event, BrightGreen)
	case "undo", "redo", "jump":
		return colorize(event, BrightCyan)
	case "branch-created", "branch-switched":
		return colorize(event, BrightMagenta)
	default:
		return event
	}
}

func SectionHeader(text string) string {
	return Bold(text)
}

func ErrorText(text string) string {
	return colorize(text, BrightRed)
}

func SuccessText(text string) string {
	return colorize(text, BrightGreen)
}

func InfoText(text string) string {
	return colorize(text, BrightCyan)
}
