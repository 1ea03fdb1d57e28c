package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/javanhut/ivaldi-history/history"
	"github.com/javanhut/ivaldi-history/internal/colors"
	"github.com/javanhut/ivaldi-history/internal/nickname"
)

func init() {
	colors.SetColorEnabled(false)
}

func runScript(t *testing.T, h *history.Engine[string], script string) string {
	t.Helper()
	var out bytes.Buffer
	if err := newSession(h, &out).run(strings.NewReader(script), ""); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	return out.String()
}

func TestSessionUndoRedo(t *testing.T) {
	h := history.New[string]()
	out := runScript(t, h, "record a\nrecord b\nundo\nundo\nredo\nredo\n")

	if !strings.Contains(out, "nothing to undo") {
		t.Errorf("Expected boundary message:\n%s", out)
	}
	if h.Current().Data != "b" {
		t.Errorf("Expected current b, got %q", h.Current().Data)
	}
	if !strings.Contains(out, "nothing to redo") {
		t.Errorf("Expected redo boundary message:\n%s", out)
	}
}

func TestSessionDivergence(t *testing.T) {
	h := history.New[string]()
	out := runScript(t, h, "record one\nrecord two\nundo\nrecord three\nbranches\nlog\n")

	if !strings.Contains(out, "branch-created") {
		t.Errorf("Expected divergence notice:\n%s", out)
	}
	if len(h.Branches()) != 2 {
		t.Errorf("Expected 2 branches, got %v", h.Branches())
	}
	if !strings.Contains(out, `"three"`) || !strings.Contains(out, "[2/2]") {
		t.Errorf("Expected log of main:\n%s", out)
	}
}

func TestSessionJumpAndShow(t *testing.T) {
	h := history.New[string]()
	id, _ := h.Record("first", history.Immediate())
	h.Record("second", history.Immediate())

	out := runScript(t, h, "jump "+id+"\nshow "+id+"\njump nope\npos 1\npos 9\n")

	if h.Current().Data != "second" {
		t.Errorf("Expected pos 1 to land on second, got %q", h.Current().Data)
	}
	if !strings.Contains(out, "data:   \"first\"") {
		t.Errorf("Expected show output:\n%s", out)
	}
	if strings.Count(out, "error:") != 2 {
		t.Errorf("Expected two errors for bad jump and pos:\n%s", out)
	}
}

func TestSessionJumpBranchMode(t *testing.T) {
	h := history.New[string]()
	h.Record("m", history.Immediate())
	h.CreateBranch("side", "")
	id, _ := h.Record("s", history.Immediate(), history.OnBranch("side"))

	runScript(t, h, "jump "+id+" branch explore\n")
	if h.ActiveBranch() != "explore" {
		t.Errorf("Expected explore, got %q", h.ActiveBranch())
	}
}

func TestSessionTypeAndFlush(t *testing.T) {
	h := history.New[string](history.WithDebounceDelay(time.Hour))
	out := runScript(t, h, "type h\ntype he\ntype hel\nflush\nflush\nstats\n")

	if h.Stats().Entries != 1 || h.Current().Data != "hel" {
		t.Errorf("Expected one coalesced entry, got %+v", h.Stats())
	}
	if !strings.Contains(out, "record ") || !strings.Contains(out, "nothing pending") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestSessionQueryBranchSwitchClear(t *testing.T) {
	h := history.New[string]()
	out := runScript(t, h, strings.Join([]string{
		"record apple pie",
		"branch drafts",
		"switch drafts",
		"record apple tart",
		"record banana",
		"query apple",
		"switch ghost",
		"clear",
		"state",
		"bogus",
		"quit",
		"record never",
	}, "\n"))

	if strings.Count(out, `"apple`) < 2 {
		t.Errorf("Expected both apple entries in query:\n%s", out)
	}
	if !strings.Contains(out, "no branch \"ghost\"") {
		t.Errorf("Expected switch error:\n%s", out)
	}
	if !strings.Contains(out, "current: none") {
		t.Errorf("Expected empty state after clear:\n%s", out)
	}
	if !strings.Contains(out, "unknown command") {
		t.Errorf("Expected unknown command error:\n%s", out)
	}
	if h.Stats().Entries != 0 {
		t.Error("Commands after quit should not run")
	}
}

func TestDemos(t *testing.T) {
	for name, demo := range demos {
		var out bytes.Buffer
		if err := demo(history.New[string](), &out); err != nil {
			t.Errorf("demo %s failed: %v", name, err)
		}
		if out.Len() == 0 {
			t.Errorf("demo %s printed nothing", name)
		}
	}

	var out bytes.Buffer
	demoBranch(history.New[string](), &out)
	if !strings.Contains(out.String(), "[e4 e5]") || !strings.Contains(out.String(), "[e1 e2 e3 e6]") {
		t.Errorf("Unexpected branch demo output:\n%s", out.String())
	}
}

func TestSessionResolvesNicknames(t *testing.T) {
	h := history.New[string]()
	id, _ := h.Record("first", history.Immediate())
	h.Record("second", history.Immediate())

	out := runScript(t, h, "jump "+nickname.For(id)+"\n")
	if h.Current().ID != id {
		t.Errorf("Expected nickname jump to %s:\n%s", id, out)
	}
}

func TestSessionHelp(t *testing.T) {
	out := runScript(t, history.New[string](), "help\n")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if last := lines[len(lines)-1]; !strings.HasPrefix(last, "ids may be given") {
		t.Errorf("Expected nickname note after the command list, got %q", last)
	}
	if !strings.Contains(out, "  pick ") {
		t.Errorf("Expected pick in help:\n%s", out)
	}
}
