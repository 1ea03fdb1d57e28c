package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/javanhut/ivaldi-history/history"
	"github.com/javanhut/ivaldi-history/internal/colors"
	"github.com/javanhut/ivaldi-history/internal/nickname"
	"golang.org/x/term"
)

// keyReader returns one key press as "up", "down", "enter", "q", a digit,
// or "" for anything else.
type keyReader func() (string, error)

// readKey reads a single key press from stdin in raw mode.
func readKey() (string, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 3)
	n, err := os.Stdin.Read(buf)
	if err != nil {
		return "", err
	}
	return decodeKey(buf[:n]), nil
}

func decodeKey(buf []byte) string {
	// Arrow keys arrive as ESC [ A..D
	if len(buf) == 3 && buf[0] == 27 && buf[1] == '[' {
		switch buf[2] {
		case 'A':
			return "up"
		case 'B':
			return "down"
		}
		return ""
	}
	if len(buf) != 1 {
		return ""
	}
	switch c := buf[0]; {
	case c == '\r' || c == '\n':
		return "enter"
	case c == 27 || c == 'q' || c == 'Q' || c == 3: // ESC, q, ctrl-c
		return "q"
	case c == 'k':
		return "up"
	case c == 'j':
		return "down"
	case c >= '1' && c <= '9':
		return string(c)
	}
	return ""
}

// pickEntry shows entries with a movable cursor starting at start and
// returns the one chosen, or nil if the user quits.
func pickEntry(out io.Writer, branch string, entries []history.Entry[string], start int, keys keyReader) (*history.Entry[string], error) {
	if len(entries) == 0 {
		return nil, nil
	}
	cur := max(0, min(start, len(entries)-1))

	for {
		drawPicker(out, branch, entries, cur)

		key, err := keys()
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}

		switch key {
		case "up":
			if cur > 0 {
				cur--
			}
		case "down":
			if cur < len(entries)-1 {
				cur++
			}
		case "enter":
			return &entries[cur], nil
		case "q":
			return nil, nil
		default:
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(entries) {
				return &entries[n-1], nil
			}
		}
	}
}

func drawPicker(out io.Writer, branch string, entries []history.Entry[string], cur int) {
	if colors.IsColorEnabled() {
		fmt.Fprint(out, "\033[2J\033[H")
	}
	fmt.Fprintf(out, "%s %s\n", colors.SectionHeader("Entries on"), colors.BranchName(branch, true))
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s %s %q", i+1, colors.EntryID(e.ID), colors.Gray(nickname.For(e.ID)), e.Data)
		if i == cur {
			line = colors.Bold(line)
		}
		fmt.Fprintf(out, "%s %s\n", colors.CursorMarker(i == cur), line)
	}
	fmt.Fprintln(out, colors.Dim("up/down or j/k to move, enter or 1-9 to pick, q to cancel"))
}
