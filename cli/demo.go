package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javanhut/ivaldi-history/history"
	"github.com/javanhut/ivaldi-history/internal/colors"
)

var demoCmd = &cobra.Command{
	Use:       "demo [basic|branch|travel|all]",
	Short:     "Walk through undo, branching and time travel",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"basic", "branch", "travel", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		which := "all"
		if len(args) == 1 {
			which = args[0]
		}

		var names []string
		if which == "all" {
			names = []string{"basic", "branch", "travel"}
		} else if _, ok := demos[which]; ok {
			names = []string{which}
		} else {
			return fmt.Errorf("unknown demo %q", which)
		}

		opts, err := engineOptions(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, name := range names {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, colors.SectionHeader("== "+name+" =="))
			if err := demos[name](history.New[string](opts...), out); err != nil {
				return fmt.Errorf("demo %s: %w", name, err)
			}
		}
		return nil
	},
}

var demos = map[string]func(*history.Engine[string], io.Writer) error{
	"basic":  demoBasic,
	"branch": demoBranch,
	"travel": demoTravel,
}

// demoRecorder records text immediately and remembers ids by value.
type demoRecorder struct {
	h   *history.Engine[string]
	out io.Writer
	ids map[string]string
}

func (d *demoRecorder) record(values ...string) error {
	for _, v := range values {
		id, err := d.h.Record(v, history.Immediate())
		if err != nil {
			return err
		}
		d.ids[v] = id
		fmt.Fprintf(d.out, "record %q -> %s\n", v, colors.EntryID(id))
	}
	return nil
}

func (d *demoRecorder) show(label string, e *history.Entry[string]) {
	if e == nil {
		fmt.Fprintf(d.out, "%-8s -> nothing\n", label)
		return
	}
	fmt.Fprintf(d.out, "%-8s -> %q on %s\n", label, e.Data, colors.BranchName(e.Branch, false))
}

func (d *demoRecorder) branches() {
	st := d.h.State()
	for _, name := range d.h.Branches() {
		b := st.Branches[name]
		values := make([]string, len(b.Entries))
		for i, e := range b.Entries {
			values[i] = e.Data
		}
		fmt.Fprintf(d.out, "  %s %s [%s]\n",
			colors.CursorMarker(name == st.ActiveBranch),
			colors.BranchName(name, name == st.ActiveBranch),
			strings.Join(values, " "))
	}
}

func newDemoRecorder(h *history.Engine[string], out io.Writer) *demoRecorder {
	return &demoRecorder{h: h, out: out, ids: make(map[string]string)}
}

func demoBasic(h *history.Engine[string], out io.Writer) error {
	d := newDemoRecorder(h, out)
	if err := d.record("a", "b", "c"); err != nil {
		return err
	}
	fmt.Fprintf(out, "can undo: %t, can redo: %t\n", h.CanUndo(), h.CanRedo())
	d.show("undo", h.Undo())
	d.show("undo", h.Undo())
	d.show("undo", h.Undo())
	d.show("redo", h.Redo())
	d.show("current", h.Current())
	return nil
}

func demoBranch(h *history.Engine[string], out io.Writer) error {
	d := newDemoRecorder(h, out)
	if err := d.record("e1", "e2", "e3", "e4", "e5"); err != nil {
		return err
	}
	d.show("undo", h.Undo())
	d.show("undo", h.Undo())

	fmt.Fprintln(out, "recording after undo keeps e4 and e5 on a new branch:")
	if err := d.record("e6"); err != nil {
		return err
	}
	d.branches()
	return nil
}

func demoTravel(h *history.Engine[string], out io.Writer) error {
	d := newDemoRecorder(h, out)
	if err := d.record("draft", "outline"); err != nil {
		return err
	}
	if !h.CreateBranch("experiment", d.ids["draft"]) {
		return fmt.Errorf("create branch failed")
	}
	if _, err := h.Record("wild idea", history.Immediate(), history.OnBranch("experiment")); err != nil {
		return err
	}
	fmt.Fprintln(out, "recorded \"wild idea\" on experiment without leaving main")
	d.branches()

	wild := h.Query(func(e history.Entry[string]) bool { return e.Branch == "experiment" })
	if len(wild) == 0 {
		return fmt.Errorf("experiment branch is empty")
	}

	d.show("peek", h.JumpTo(wild[0].ID, history.ReadOnly()))
	fmt.Fprintf(out, "still on %s\n", colors.BranchName(h.ActiveBranch(), true))

	d.show("jump", h.JumpTo(wild[0].ID))
	fmt.Fprintf(out, "now on %s\n", colors.BranchName(h.ActiveBranch(), true))

	d.show("fork", h.JumpTo(d.ids["outline"], history.AsBranch("rewrite")))
	if err := d.record("second outline"); err != nil {
		return err
	}
	d.branches()
	return nil
}
