package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/javanhut/ivaldi-history/history"
)

// scriptedKeys replays key presses and fails once they run out.
func scriptedKeys(keys ...string) keyReader {
	return func() (string, error) {
		if len(keys) == 0 {
			return "", errors.New("no more keys")
		}
		k := keys[0]
		keys = keys[1:]
		return k, nil
	}
}

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte{27, '[', 'A'}, "up"},
		{[]byte{27, '[', 'B'}, "down"},
		{[]byte{27, '[', 'C'}, ""},
		{[]byte{'\r'}, "enter"},
		{[]byte{27}, "q"},
		{[]byte{'q'}, "q"},
		{[]byte{'k'}, "up"},
		{[]byte{'3'}, "3"},
		{[]byte{'0'}, ""},
		{[]byte{'x'}, ""},
	}

	for _, tt := range tests {
		if got := decodeKey(tt.in); got != tt.want {
			t.Errorf("decodeKey(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPickEntry(t *testing.T) {
	entries := []history.Entry[string]{
		{Snapshot: history.Snapshot[string]{ID: "aa11", Data: "one"}},
		{Snapshot: history.Snapshot[string]{ID: "bb22", Data: "two"}},
		{Snapshot: history.Snapshot[string]{ID: "cc33", Data: "three"}},
	}

	tests := []struct {
		name  string
		start int
		keys  []string
		want  string
	}{
		{"enter keeps start", 2, []string{"enter"}, "cc33"},
		{"up stops at first", 1, []string{"up", "up", "up", "enter"}, "aa11"},
		{"down stops at last", 0, []string{"down", "down", "down", "enter"}, "cc33"},
		{"digit picks directly", 0, []string{"9", "", "2"}, "bb22"},
		{"start is clamped", 7, []string{"enter"}, "cc33"},
		{"quit picks nothing", 0, []string{"down", "q"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			e, err := pickEntry(&out, "main", entries, tt.start, scriptedKeys(tt.keys...))
			if err != nil {
				t.Fatalf("pickEntry failed: %v", err)
			}
			var got string
			if e != nil {
				got = e.ID
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if !strings.Contains(out.String(), `"two"`) {
				t.Errorf("Expected entries drawn:\n%s", out.String())
			}
		})
	}

	if _, err := pickEntry(&bytes.Buffer{}, "main", entries, 0, scriptedKeys()); err == nil {
		t.Error("Expected key read failure to surface")
	}
}

func TestSessionPick(t *testing.T) {
	h := history.New[string]()
	first, _ := h.Record("first", history.Immediate())
	h.Record("second", history.Immediate())

	var out bytes.Buffer
	s := newSession(h, &out)
	if err := s.run(strings.NewReader("pick\n"), ""); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if !strings.Contains(out.String(), "pick needs an interactive terminal") {
		t.Errorf("Expected pick to require a terminal:\n%s", out.String())
	}

	s.keys = scriptedKeys("up", "enter", "q")
	if err := s.run(strings.NewReader("pick readonly\npick\n"), ""); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if h.Current().ID != first {
		t.Errorf("Expected pick to jump to %s, got %s", first, h.Current().ID)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("Expected second pick to be cancelled:\n%s", out.String())
	}
}
