package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/javanhut/ivaldi-history/history"
	"github.com/javanhut/ivaldi-history/internal/colors"
	"github.com/javanhut/ivaldi-history/internal/nickname"
)

// errQuit ends a session.
var errQuit = errors.New("quit")

// lockedWriter serializes writes from the session and from debounced
// records completing on the timer goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// session interprets line commands against one engine of text states.
type session struct {
	h   *history.Engine[string]
	out io.Writer
	// keys enables the interactive picker; nil when stdin is not a terminal.
	keys keyReader
}

func newSession(h *history.Engine[string], out io.Writer) *session {
	return &session{h: h, out: &lockedWriter{w: out}}
}

// notify prints events a user would otherwise miss: asynchronous records
// and branches created by divergence.
func (s *session) notify(ev history.Event[string]) {
	switch {
	case ev.Type == history.EventRecord && ev.Metadata["source"] == "type":
		fmt.Fprintf(s.out, "%s %s\n", colors.EventLabel(string(ev.Type)), colors.EntryID(ev.Entry.ID))
	case ev.Type == history.EventBranchCreated && ev.Metadata["reason"] == "divergence":
		fmt.Fprintf(s.out, "%s %s (kept undone entries)\n",
			colors.EventLabel(string(ev.Type)), colors.BranchName(fmt.Sprint(ev.Metadata["branchName"]), false))
	}
}

// run reads commands until EOF or quit.
func (s *session) run(in io.Reader, prompt string) error {
	defer s.h.On(s.notify)()

	scanner := bufio.NewScanner(in)
	for {
		if prompt != "" {
			fmt.Fprint(s.out, prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		err := s.exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, colors.ErrorText("error: "+err.Error()))
		}
	}
}

func (s *session) exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch name {
	case "record", "r":
		id, err := s.h.Record(rest, history.Immediate())
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, colors.EntryID(id))
	case "type":
		_, err := s.h.Record(rest, history.WithMetadata(history.Metadata{"source": "type"}))
		return err
	case "flush":
		id, err := s.h.Flush()
		if err != nil {
			return err
		}
		if id == "" {
			fmt.Fprintln(s.out, "nothing pending")
		}
	case "undo", "u":
		s.printStep(s.h.Undo(), "nothing to undo")
	case "redo":
		s.printStep(s.h.Redo(), "nothing to redo")
	case "jump", "j":
		return s.jump(args)
	case "pick", "p":
		return s.pick(args)
	case "pos":
		return s.pos(args)
	case "branch", "b":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: branch <name> [from-id]")
		}
		var from string
		if len(args) == 2 {
			from = args[1]
		}
		if !s.h.CreateBranch(args[0], from) {
			return fmt.Errorf("cannot create branch %q", args[0])
		}
		fmt.Fprintf(s.out, "created %s\n", colors.BranchName(args[0], false))
	case "switch", "sw":
		if len(args) != 1 {
			return fmt.Errorf("usage: switch <name>")
		}
		if !s.h.SwitchBranch(args[0]) {
			return fmt.Errorf("no branch %q", args[0])
		}
		s.printStep(s.h.Current(), "switched to empty branch "+args[0])
	case "log", "l":
		s.printLog()
	case "branches":
		s.printBranches()
	case "query", "q":
		for _, e := range s.h.Query(func(e history.Entry[string]) bool {
			return strings.Contains(e.Data, rest)
		}) {
			s.printEntry(e, false)
		}
	case "show":
		if len(args) != 1 {
			return fmt.Errorf("usage: show <id>")
		}
		snap := s.h.Snapshot(s.resolve(args[0]))
		if snap == nil {
			return fmt.Errorf("no entry %q", args[0])
		}
		fmt.Fprintf(s.out, "id:     %s\nname:   %s\nparent: %s\ntime:   %s\ndata:   %q\n",
			colors.EntryID(snap.ID), nickname.For(snap.ID), snap.ParentID, snap.Timestamp.Format("15:04:05.000"), snap.Data)
		for k, v := range snap.Metadata {
			fmt.Fprintf(s.out, "meta:   %s=%v\n", k, v)
		}
	case "state":
		s.printState()
	case "stats":
		st := s.h.Stats()
		fmt.Fprintf(s.out, "branches: %d\nentries:  %d\nactive:   %s\ncursor:   %d\npayloads: %d (%d bytes)\npending:  %t\n",
			st.Branches, st.Entries, st.ActiveBranch, st.Cursor, st.Payloads, st.PayloadBytes, st.Pending)
	case "clear":
		s.h.Clear()
		fmt.Fprintln(s.out, "cleared")
	case "help", "?":
		fmt.Fprint(s.out, sessionHelp)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", name)
	}
	return nil
}

func (s *session) jump(args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return fmt.Errorf("usage: jump <id> [readonly|branch [name]]")
	}
	var opts []history.JumpOption
	if len(args) > 1 {
		switch args[1] {
		case "readonly":
			opts = append(opts, history.ReadOnly())
		case "branch":
			var name string
			if len(args) == 3 {
				name = args[2]
			}
			opts = append(opts, history.AsBranch(name))
		default:
			return fmt.Errorf("unknown jump mode %q", args[1])
		}
	}

	e := s.h.JumpTo(s.resolve(args[0]), opts...)
	if e == nil {
		return fmt.Errorf("no entry %q", args[0])
	}
	s.printEntry(*e, true)
	return nil
}

// pick chooses an entry of the active branch with the arrow keys and jumps
// to it, passing any mode arguments through to jump.
func (s *session) pick(args []string) error {
	if s.keys == nil {
		return fmt.Errorf("pick needs an interactive terminal")
	}
	st := s.h.State()
	b := st.Branches[st.ActiveBranch]
	if b.Len() == 0 {
		return fmt.Errorf("no entries on %s", st.ActiveBranch)
	}

	e, err := pickEntry(s.out, b.Name, b.Entries, st.Cursor, s.keys)
	if err != nil {
		return err
	}
	if e == nil {
		fmt.Fprintln(s.out, "cancelled")
		return nil
	}
	return s.jump(append([]string{e.ID}, args...))
}

func (s *session) pos(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: pos <n> [branch]")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid position %q", args[0])
	}
	var branch string
	if len(args) == 2 {
		branch = args[1]
	}

	e := s.h.JumpToPosition(n, branch)
	if e == nil {
		return fmt.Errorf("no position %d", n)
	}
	s.printEntry(*e, true)
	return nil
}

// resolve maps a nickname to its entry id. Anything else is returned as is.
func (s *session) resolve(ref string) string {
	if !nickname.Valid(ref) {
		return ref
	}
	suffix, _ := nickname.Suffix(ref)
	for _, e := range s.h.Query(func(e history.Entry[string]) bool {
		return strings.HasPrefix(e.ID, suffix)
	}) {
		if nickname.Matches(ref, e.ID) {
			return e.ID
		}
	}
	return ref
}

func (s *session) printStep(e *history.Entry[string], none string) {
	if e == nil {
		fmt.Fprintln(s.out, none)
		return
	}
	s.printEntry(*e, true)
}

func (s *session) printEntry(e history.Entry[string], current bool) {
	fmt.Fprintf(s.out, "%s %s %s %s %q\n",
		colors.CursorMarker(current), colors.EntryID(e.ID), colors.Gray(nickname.For(e.ID)), colors.Gray(e.Branch), e.Data)
}

func (s *session) printLog() {
	st := s.h.State()
	b := st.Branches[st.ActiveBranch]
	fmt.Fprintf(s.out, "%s %s\n", colors.BranchName(b.Name, true), colors.Position(st.Cursor, b.Len()))
	for i, e := range b.Entries {
		s.printEntry(e, i == st.Cursor)
	}
}

func (s *session) printBranches() {
	st := s.h.State()
	for _, name := range s.h.Branches() {
		b, ok := st.Branches[name]
		if !ok {
			continue
		}
		marker := colors.CursorMarker(name == st.ActiveBranch)
		line := fmt.Sprintf("%s %s (%d)", marker, colors.BranchName(name, name == st.ActiveBranch), b.Len())
		if b.ParentID != "" {
			line += " from " + colors.EntryID(b.ParentID)
		}
		fmt.Fprintln(s.out, line)
	}
}

func (s *session) printState() {
	st := s.h.State()
	fmt.Fprintf(s.out, "active: %s\n", colors.BranchName(st.ActiveBranch, true))
	if st.Current != nil {
		fmt.Fprintf(s.out, "current: %s %q\n", colors.EntryID(st.Current.ID), st.Current.Data)
	} else {
		fmt.Fprintln(s.out, "current: none")
	}
	fmt.Fprintf(s.out, "undo: %t redo: %t\n", s.h.CanUndo(), s.h.CanRedo())
}

const sessionHelp = `commands:
  record <text>                 record text now
  type <text>                   record text after the debounce period
  flush                         record pending typed text now
  undo, redo                    step the cursor
  jump <id> [readonly|branch [name]]
  pick [readonly|branch [name]] choose an entry with the arrow keys
  pos <n> [branch]              jump to an index
  branch <name> [from-id]       create a branch
  switch <name>                 switch branches
  log                           entries of the active branch
  branches                      all branches
  query <text>                  entries containing text, oldest first
  show <id>                     one entry
  state, stats                  summaries
  clear                         forget everything
  quit

ids may be given as the nickname shown next to them.
`
