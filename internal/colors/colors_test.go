package colors

import (
	"strings"
	"testing"
)

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	prev := IsColorEnabled()
	SetColorEnabled(enabled)
	t.Cleanup(func() { SetColorEnabled(prev) })
}

func TestPlainWhenDisabled(t *testing.T) {
	withColor(t, false)

	if got := BranchName("main", true); got != "main" {
		t.Errorf("Expected plain text, got %q", got)
	}
	if got := Position(0, 3); got != "[1/3]" {
		t.Errorf("Expected [1/3], got %q", got)
	}
	if got := CursorMarker(false); got != " " {
		t.Errorf("Expected blank marker, got %q", got)
	}
}

func TestColoredWhenEnabled(t *testing.T) {
	withColor(t, true)

	got := EventLabel("record")
	if !strings.HasPrefix(got, BrightGreen) || !strings.HasSuffix(got, ColorReset) {
		t.Errorf("Expected green label, got %q", got)
	}
	if got := EventLabel("custom"); got != "custom" {
		t.Errorf("Unknown events should be plain, got %q", got)
	}
	if !strings.Contains(EntryID("abc"), "abc") {
		t.Error("EntryID lost its text")
	}
}

func TestMessageHelpers(t *testing.T) {
	withColor(t, true)

	if got := ErrorText("boom"); got != BrightRed+"boom"+ColorReset {
		t.Errorf("Expected red error text, got %q", got)
	}
	if got := CursorMarker(true); got != BrightGreen+"*"+ColorReset {
		t.Errorf("Expected green marker, got %q", got)
	}

	SetColorEnabled(false)
	for _, got := range []string{ErrorText("x"), SuccessText("x"), InfoText("x"), SectionHeader("x"), Gray("x")} {
		if got != "x" {
			t.Errorf("Expected plain text, got %q", got)
		}
	}
}
