package history

import (
	"time"
)

// Metadata is an opaque caller-supplied key/value bag. The engine never
// inspects it.
type Metadata map[string]any

// Snapshot is the branch-agnostic view of a recorded state.
type Snapshot[T any] struct {
	ID        string    // content identifier
	Data      T         // independent copy of the recorded value
	Timestamp time.Time // creation time
	Metadata  Metadata  // caller metadata, nil if none
	ParentID  string    // previous entry on the branch at creation, "" if none
}

// Entry is one recorded state together with its branch membership.
//
// Position is the index the entry had when it was appended. It is a record
// of history and may be stale after eviction or after the entry moved to a
// forked branch, in which case it is renumbered for that branch.
type Entry[T any] struct {
	Snapshot[T]
	Branch   string
	Position int
}

// Branch is a named, ordered sequence of entries.
type Branch[T any] struct {
	Name      string
	Entries   []Entry[T]
	CreatedAt time.Time
	ParentID  string // entry this branch forked from, "" if none
}

// Len returns the number of entries in the branch.
func (b Branch[T]) Len() int {
	return len(b.Entries)
}

// State is a point-in-time copy of the whole history. It does not update
// after further engine calls; fetch a new one after every mutation or event.
type State[T any] struct {
	Current      *Entry[T]
	Branches     map[string]Branch[T]
	Main         Branch[T]
	ActiveBranch string
	Cursor       int
}

// EventType names what happened.
type EventType string

const (
	EventRecord         EventType = "record"
	EventUndo           EventType = "undo"
	EventRedo           EventType = "redo"
	EventJump           EventType = "jump"
	EventBranchCreated  EventType = "branch-created"
	EventBranchSwitched EventType = "branch-switched"
)

// Event is delivered to listeners after an operation completes.
type Event[T any] struct {
	Type      EventType
	Entry     *Entry[T]
	Timestamp time.Time
	Metadata  Metadata
}

// Listener receives engine events.
type Listener[T any] func(Event[T])

// Stats is a cheap summary of the engine's size. Computing it does not
// decode any recorded value.
type Stats struct {
	Branches     int
	Entries      int
	ActiveBranch string
	Cursor       int
	Payloads     int // distinct stored states
	PayloadBytes int
	Pending      bool // a debounced record is waiting
}
