// Package branch implements the branch store: the set of named branches, the
// ordered records inside each branch, and which branch is active.
//
// The store is not safe for concurrent use; the history engine serializes
// access to it.
package branch

import (
	"fmt"
	"slices"
	"time"

	"github.com/javanhut/ivaldi-history/internal/cas"
)

// Main is the name of the branch every store starts with.
const Main = "main"

// Record is the stored form of one history entry. The recorded value lives
// in the payload store under Payload.
type Record struct {
	ID        string
	Payload   cas.Hash
	Timestamp time.Time
	Metadata  map[string]any
	ParentID  string // previous record on the branch at creation time
	Branch    string // branch the record was appended to
	Position  int    // index at append time
}

// Branch is a named, ordered sequence of records.
type Branch struct {
	Name      string
	Records   []Record
	CreatedAt time.Time
	ParentID  string // record this branch was forked from, if any
}

// Len returns the number of records in the branch.
func (b *Branch) Len() int {
	return len(b.Records)
}

// Last returns the newest record, or false if the branch is empty.
func (b *Branch) Last() (Record, bool) {
	if len(b.Records) == 0 {
		return Record{}, false
	}
	return b.Records[len(b.Records)-1], true
}

// Location identifies where a record lives.
type Location struct {
	Record Record
	Branch string
	Index  int
}

// Store owns all branches and the active branch name.
type Store struct {
	branches map[string]*Branch
	order    []string          // creation order, for deterministic iteration
	ids      map[string]string // record id -> branch name
	active   string
	now      func() time.Time
}

// New creates a store with an empty active main branch.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{now: now}
	s.Reset()
	return s
}

// Reset discards every branch and recreates an empty active main branch.
func (s *Store) Reset() {
	s.branches = map[string]*Branch{
		Main: {Name: Main, CreatedAt: s.now()},
	}
	s.order = []string{Main}
	s.ids = make(map[string]string)
	s.active = Main
}

// Active returns the active branch.
func (s *Store) Active() *Branch {
	return s.branches[s.active]
}

// ActiveName returns the name of the active branch.
func (s *Store) ActiveName() string {
	return s.active
}

// Get returns the named branch.
func (s *Store) Get(name string) (*Branch, bool) {
	b, ok := s.branches[name]
	return b, ok
}

// Names returns branch names in creation order.
func (s *Store) Names() []string {
	return slices.Clone(s.order)
}

// Count returns the number of records across all branches.
func (s *Store) Count() int {
	n := 0
	for _, b := range s.branches {
		n += b.Len()
	}
	return n
}

// Create registers an empty branch. It fails if the name is taken or if
// fromID is non-empty and no record with that id exists.
func (s *Store) Create(name, fromID string) bool {
	if name == "" {
		return false
	}
	if _, exists := s.branches[name]; exists {
		return false
	}
	if fromID != "" && !s.Has(fromID) {
		return false
	}

	s.branches[name] = &Branch{
		Name:      name,
		CreatedAt: s.now(),
		ParentID:  fromID,
	}
	s.order = append(s.order, name)
	return true
}

// Switch makes the named branch active. The cursor is the caller's concern.
func (s *Store) Switch(name string) bool {
	if _, ok := s.branches[name]; !ok {
		return false
	}
	s.active = name
	return true
}

// Append adds rec to the end of the named branch, stamping its branch and
// position, and returns the stored record.
func (s *Store) Append(name string, rec Record) (Record, bool) {
	b, ok := s.branches[name]
	if !ok {
		return Record{}, false
	}
	rec.Branch = name
	rec.Position = len(b.Records)
	b.Records = append(b.Records, rec)
	s.ids[rec.ID] = name
	return rec, true
}

// Truncate keeps the first keep records of the named branch and returns the
// removed tail.
func (s *Store) Truncate(name string, keep int) []Record {
	b, ok := s.branches[name]
	if !ok || keep >= len(b.Records) {
		return nil
	}
	keep = max(keep, 0)

	tail := slices.Clone(b.Records[keep:])
	b.Records = slices.Clone(b.Records[:keep])
	for _, rec := range tail {
		delete(s.ids, rec.ID)
	}
	return tail
}

// EvictOldest drops the oldest records so the named branch holds at most
// maxEntries, and returns what was dropped.
func (s *Store) EvictOldest(name string, maxEntries int) []Record {
	b, ok := s.branches[name]
	if !ok {
		return nil
	}
	excess := len(b.Records) - maxEntries
	if excess <= 0 {
		return nil
	}

	evicted := slices.Clone(b.Records[:excess])
	b.Records = slices.Clone(b.Records[excess:])
	for _, rec := range evicted {
		delete(s.ids, rec.ID)
	}
	return evicted
}

// Find locates the record with id in whichever branch holds it.
func (s *Store) Find(id string) (Location, bool) {
	name, ok := s.ids[id]
	if !ok {
		return Location{}, false
	}
	for i, rec := range s.branches[name].Records {
		if rec.ID == id {
			return Location{Record: rec, Branch: name, Index: i}, true
		}
	}
	return Location{}, false
}

// Has reports whether any branch holds a record with id.
func (s *Store) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Each calls fn for every record, branch by branch in creation order.
func (s *Store) Each(fn func(Record)) {
	for _, name := range s.order {
		for _, rec := range s.branches[name].Records {
			fn(rec)
		}
	}
}

// Fork creates a uniquely named branch rooted at fromID and moves displaced
// into it. The records keep their id, payload, timestamp and parent; their
// branch and position are renumbered for the new branch.
func (s *Store) Fork(fromID string, displaced []Record) string {
	name := s.forkName()

	s.branches[name] = &Branch{
		Name:      name,
		CreatedAt: s.now(),
		ParentID:  fromID,
	}
	s.order = append(s.order, name)

	moved := make([]Record, len(displaced))
	for i, rec := range displaced {
		rec.Branch = name
		rec.Position = i
		moved[i] = rec
		s.ids[rec.ID] = name
	}
	s.branches[name].Records = moved

	return name
}

// NewName returns an unused auto-generated branch name.
func (s *Store) NewName() string {
	return s.forkName()
}

func (s *Store) forkName() string {
	base := fmt.Sprintf("branch-%d", s.now().UnixMilli())
	name := base
	for n := 2; ; n++ {
		if _, exists := s.branches[name]; !exists {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, n)
	}
}
