package history

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/javanhut/ivaldi-history/internal/branch"
	"github.com/javanhut/ivaldi-history/internal/cas"
	"github.com/javanhut/ivaldi-history/internal/codec"
	"github.com/javanhut/ivaldi-history/internal/cursor"
	"github.com/javanhut/ivaldi-history/internal/debounce"
	"github.com/javanhut/ivaldi-history/internal/events"
	"github.com/javanhut/ivaldi-history/internal/ident"
)

// MainBranch is the branch every engine starts on.
const MainBranch = branch.Main

// DebouncedPrefix prefixes the placeholder token returned by a debounced
// Record call.
const DebouncedPrefix = "debounced-"

// pendingRecord is the last debounced Record call waiting for its quiet
// period to end. The value is already encoded, so the caller may mutate it
// freely after Record returns.
type pendingRecord struct {
	payload []byte
	opts    recordOptions
}

// Engine is a branchable history of values of type T. It is safe for
// concurrent use.
//
// Events are delivered synchronously after the operation that raised them
// has released the engine's lock, on the goroutine that performed it. A
// debounced record completes on a timer goroutine and delivers its events
// there. Listeners may call back into the engine, but an event describes
// the state right after its own operation, not necessarily the current one.
type Engine[T any] struct {
	mu        sync.Mutex
	cfg       Config
	store     *branch.Store
	cursor    *cursor.Cursor
	blobs     *cas.MemoryCAS
	bus       events.Emitter[Event[T]]
	debouncer *debounce.Debouncer
	pending   *pendingRecord
}

// New creates an engine with DefaultConfig adjusted by opts.
func New[T any](opts ...Option) *Engine[T] {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig[T](cfg)
}

// NewWithConfig creates an engine from cfg. Zero MaxEntries and
// DebounceDelay fall back to their defaults.
func NewWithConfig[T any](cfg Config) *Engine[T] {
	cfg = cfg.normalize()
	return &Engine[T]{
		cfg:       cfg,
		store:     branch.New(cfg.Clock),
		cursor:    cursor.New(),
		blobs:     cas.NewMemoryCAS(),
		debouncer: debounce.New(cfg.DebounceDelay),
	}
}

// Config returns the engine's effective settings.
func (e *Engine[T]) Config() Config {
	return e.cfg
}

// finish releases the lock and then delivers queued events.
func (e *Engine[T]) finish(queued *[]Event[T]) {
	e.mu.Unlock()
	for _, ev := range *queued {
		e.bus.Emit(ev)
	}
}

func (e *Engine[T]) event(typ EventType, entry *Entry[T], md Metadata) Event[T] {
	return Event[T]{
		Type:      typ,
		Entry:     entry,
		Timestamp: e.cfg.Clock(),
		Metadata:  md,
	}
}

// encode copies data into a payload and proves the payload decodes back
// into a T, so later reads cannot fail.
func (e *Engine[T]) encode(op string, data T) ([]byte, error) {
	payload, err := codec.Encode(data, e.cfg.EnableCompression)
	if err != nil {
		return nil, &DataError{Op: op, Err: err}
	}
	var probe T
	if err := codec.Decode(payload, &probe); err != nil {
		return nil, &DataError{Op: op, Err: err}
	}
	return payload, nil
}

// copyMetadata deep-copies md with the same JSON round trip used for
// values. Nil stays nil.
func copyMetadata(md map[string]any) (Metadata, error) {
	if md == nil {
		return nil, nil
	}
	return codec.Clone(md)
}

// entry materializes a record into a fresh Entry.
func (e *Engine[T]) entry(rec branch.Record) Entry[T] {
	payload, err := e.blobs.Get(rec.Payload)
	if err != nil {
		panic(fmt.Sprintf("history: entry %s lost its payload: %v", rec.ID, err))
	}
	var data T
	if err := codec.Decode(payload, &data); err != nil {
		panic(fmt.Sprintf("history: entry %s payload corrupt: %v", rec.ID, err))
	}
	md, err := copyMetadata(rec.Metadata)
	if err != nil {
		panic(fmt.Sprintf("history: entry %s metadata corrupt: %v", rec.ID, err))
	}

	return Entry[T]{
		Snapshot: Snapshot[T]{
			ID:        rec.ID,
			Data:      data,
			Timestamp: rec.Timestamp,
			Metadata:  md,
			ParentID:  rec.ParentID,
		},
		Branch:   rec.Branch,
		Position: rec.Position,
	}
}

func (e *Engine[T]) entryRef(rec branch.Record) *Entry[T] {
	ent := e.entry(rec)
	return &ent
}

// currentLocked returns the record under the cursor in the active branch.
func (e *Engine[T]) currentLocked() (branch.Record, bool) {
	active := e.store.Active()
	pos := e.cursor.Validated(active.Len())
	if pos < 0 || pos >= active.Len() {
		return branch.Record{}, false
	}
	return active.Records[pos], true
}

// Record stores data as a new entry and returns its id.
//
// By default the call is debounced: calls within the quiet period coalesce
// and only the last one is recorded once the period ends. A debounced call
// returns a placeholder token rather than an id; use Immediate, Flush, or a
// listener for EventRecord to learn the real id. The value is copied before
// Record returns in both modes, metadata included, and a value or metadata
// that cannot be copied fails immediately with a *DataError.
//
// Recording while the cursor is behind the tip of the active branch moves
// the entries ahead of the cursor to a new branch rooted at the current
// entry, so no history is lost; the active branch stays the same.
func (e *Engine[T]) Record(data T, opts ...RecordOption) (string, error) {
	o := recordOptions{debounce: true}
	for _, opt := range opts {
		opt(&o)
	}

	payload, err := e.encode("record", data)
	if err != nil {
		return "", err
	}
	if o.metadata, err = copyMetadata(o.metadata); err != nil {
		return "", &DataError{Op: "record", Err: fmt.Errorf("metadata: %w", err)}
	}

	if o.debounce {
		e.mu.Lock()
		if o.branch != "" {
			if _, ok := e.store.Get(o.branch); !ok {
				e.mu.Unlock()
				return "", fmt.Errorf("record: %w: %s", ErrBranchNotFound, o.branch)
			}
		}
		e.pending = &pendingRecord{payload: payload, opts: o}
		e.mu.Unlock()
		e.debouncer.Schedule(e.firePending)
		return DebouncedPrefix + uuid.NewString(), nil
	}

	e.mu.Lock()
	var queued []Event[T]
	defer e.finish(&queued)

	id, evs, err := e.commitLocked(payload, o)
	queued = evs
	return id, err
}

// Flush performs a pending debounced record now and returns its id. It
// returns an empty id when nothing is pending.
func (e *Engine[T]) Flush() (string, error) {
	e.debouncer.Cancel()
	return e.commitPending()
}

func (e *Engine[T]) firePending() {
	if _, err := e.commitPending(); err != nil {
		e.cfg.ErrorHandler(err)
	}
}

func (e *Engine[T]) commitPending() (string, error) {
	e.mu.Lock()
	var queued []Event[T]
	defer e.finish(&queued)

	p := e.pending
	e.pending = nil
	if p == nil {
		return "", nil
	}
	id, evs, err := e.commitLocked(p.payload, p.opts)
	queued = evs
	return id, err
}

// commitLocked appends an encoded value, handling divergence and eviction.
func (e *Engine[T]) commitLocked(payload []byte, o recordOptions) (string, []Event[T], error) {
	activeName := e.store.ActiveName()
	target := o.branch
	if target == "" {
		target = activeName
	}
	tb, ok := e.store.Get(target)
	if !ok {
		return "", nil, fmt.Errorf("record: %w: %s", ErrBranchNotFound, target)
	}

	var queued []Event[T]

	if target == activeName {
		length := tb.Len()
		pos := e.cursor.Validated(length)
		if pos < length-1 {
			var forkPoint string
			if pos >= 0 {
				forkPoint = tb.Records[pos].ID
			}
			displaced := e.store.Truncate(target, pos+1)
			forked := e.store.Fork(forkPoint, displaced)
			e.cursor.Invalidate()
			queued = append(queued, e.event(EventBranchCreated, nil, Metadata{
				"branchName": forked,
				"parentId":   forkPoint,
				"reason":     "divergence",
			}))
		}
	}

	hash, err := e.blobs.Put(payload)
	if err != nil {
		return "", nil, fmt.Errorf("record: store payload: %w", err)
	}

	var parentID string
	if last, ok := tb.Last(); ok {
		parentID = last.ID
	}
	ts := e.cfg.Clock()
	id := ident.Unique(ident.Input{
		Payload:   hash,
		Timestamp: ts,
		ParentID:  parentID,
	}, e.store.Has)

	rec, _ := e.store.Append(target, branch.Record{
		ID:        id,
		Payload:   hash,
		Timestamp: ts,
		Metadata:  o.metadata,
		ParentID:  parentID,
	})

	if target == activeName {
		e.cursor.Set(tb.Len() - 1)
	}

	if e.cfg.AutoCleanup {
		evicted := e.store.EvictOldest(target, e.cfg.MaxEntries)
		if len(evicted) > 0 {
			for _, old := range evicted {
				e.blobs.Release(old.Payload)
			}
			if target == activeName {
				e.cursor.Set(max(0, e.cursor.Position()-len(evicted)))
			}
			e.cursor.Invalidate()
		}
	}

	md, _ := copyMetadata(rec.Metadata)
	queued = append(queued, e.event(EventRecord, e.entryRef(rec), md))
	return id, queued, nil
}

// Undo steps the cursor back one entry and returns it, or nil when already
// at the first entry.
func (e *Engine[T]) Undo() *Entry[T] {
	e.mu.Lock()
	var queued []Event[T]
	defer e.finish(&queued)

	active := e.store.Active()
	if !e.cursor.CanUndo(active.Len()) {
		return nil
	}
	pos := e.cursor.Validated(active.Len()) - 1
	e.cursor.Set(pos)

	ent := e.entryRef(active.Records[pos])
	queued = append(queued, e.event(EventUndo, ent, nil))
	return ent
}

// Redo steps the cursor forward one entry and returns it, or nil when
// already at the tip.
func (e *Engine[T]) Redo() *Entry[T] {
	e.mu.Lock()
	var queued []Event[T]
	defer e.finish(&queued)

	active := e.store.Active()
	if !e.cursor.CanRedo(active.Len()) {
		return nil
	}
	pos := e.cursor.Validated(active.Len()) + 1
	e.cursor.Set(pos)

	ent := e.entryRef(active.Records[pos])
	queued = append(queued, e.event(EventRedo, ent, nil))
	return ent
}

// JumpTo moves to the entry with id, wherever it lives, and returns it. It
// returns nil and changes nothing if no branch holds id.
//
// By default the engine switches to the entry's branch. ReadOnly leaves the
// active branch alone and only moves the cursor, which is clamped against
// the active branch on its next read. AsBranch starts a new branch rooted at
// the entry when it lives on another branch and switches to it.
func (e *Engine[T]) JumpTo(id string, opts ...JumpOption) *Entry[T] {
	var o jumpOptions
	for _, opt := range opts {
		opt(&o)
	}

	e.mu.Lock()
	var queued []Event[T]
	defer e.finish(&queued)

	loc, ok := e.store.Find(id)
	if !ok {
		return nil
	}

	switch {
	case o.mode == JumpBranch && loc.Branch != e.store.ActiveName():
		name := o.branchName
		if name == "" {
			name = e.store.NewName()
		}
		if _, exists := e.store.Get(name); !exists {
			e.store.Create(name, id)
			queued = append(queued, e.event(EventBranchCreated, nil, Metadata{
				"branchName": name,
				"parentId":   id,
			}))
		}
		e.store.Switch(name)
	case o.mode == JumpSwitch:
		e.store.Switch(loc.Branch)
	}

	e.cursor.Set(loc.Index)
	if e.store.ActiveName() != loc.Branch {
		e.cursor.Invalidate()
	}

	ent := e.entryRef(loc.Record)
	queued = append(queued, e.event(EventJump, ent, Metadata{
		"fromBranch": loc.Branch,
		"mode":       string(o.mode),
	}))
	return ent
}

// JumpToPosition moves to index pos of the named branch, or of the active
// branch when name is empty, switching to it if needed. It returns nil and
// changes nothing if the branch is unknown or pos is out of range.
func (e *Engine[T]) JumpToPosition(pos int, name string) *Entry[T] {
	e.mu.Lock()
	var queued []Event[T]
	defer e.finish(&queued)

	target := name
	if target == "" {
		target = e.store.ActiveName()
	}
	b, ok := e.store.Get(target)
	if !ok || pos < 0 || pos >= b.Len() {
		return nil
	}

	if target != e.store.ActiveName() {
		e.store.Switch(target)
	}
	e.cursor.Set(pos)

	ent := e.entryRef(b.Records[pos])
	queued = append(queued, e.event(EventJump, ent, Metadata{
		"position": pos,
		"branch":   target,
	}))
	return ent
}

// CreateBranch registers an empty branch, optionally rooted at the entry
// fromID. It fails if name is taken or fromID is unknown.
func (e *Engine[T]) CreateBranch(name, fromID string) bool {
	e.mu.Lock()
	var queued []Event[T]
	defer e.finish(&queued)

	if !e.store.Create(name, fromID) {
		return false
	}
	queued = append(queued, e.event(EventBranchCreated, nil, Metadata{
		"branchName": name,
		"parentId":   fromID,
	}))
	return true
}

// SwitchBranch makes name the active branch. The cursor keeps its index and
// is clamped against the new branch.
func (e *Engine[T]) SwitchBranch(name string) bool {
	e.mu.Lock()
	var queued []Event[T]
	defer e.finish(&queued)

	if !e.store.Switch(name) {
		return false
	}
	e.cursor.Invalidate()

	var cur *Entry[T]
	if rec, ok := e.currentLocked(); ok {
		cur = e.entryRef(rec)
	}
	queued = append(queued, e.event(EventBranchSwitched, cur, Metadata{
		"branchName": name,
	}))
	return true
}

// Query returns the entries of every branch matching pred, oldest first.
func (e *Engine[T]) Query(pred func(Entry[T]) bool) []Entry[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Entry[T]
	e.store.Each(func(rec branch.Record) {
		ent := e.entry(rec)
		if pred == nil || pred(ent) {
			out = append(out, ent)
		}
	})
	slices.SortStableFunc(out, func(a, b Entry[T]) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// Snapshot returns the branch-agnostic view of the entry with id, or nil.
func (e *Engine[T]) Snapshot(id string) *Snapshot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	loc, ok := e.store.Find(id)
	if !ok {
		return nil
	}
	snap := e.entry(loc.Record).Snapshot
	return &snap
}

// Current returns the entry under the cursor, or nil.
func (e *Engine[T]) Current() *Entry[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.currentLocked()
	if !ok {
		return nil
	}
	return e.entryRef(rec)
}

// State returns a copy of the whole history.
func (e *Engine[T]) State() State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State[T]{
		Branches:     make(map[string]Branch[T]),
		ActiveBranch: e.store.ActiveName(),
		Cursor:       e.cursor.Validated(e.store.Active().Len()),
	}
	for _, name := range e.store.Names() {
		b, _ := e.store.Get(name)
		view := Branch[T]{
			Name:      b.Name,
			CreatedAt: b.CreatedAt,
			ParentID:  b.ParentID,
			Entries:   make([]Entry[T], 0, b.Len()),
		}
		for _, rec := range b.Records {
			view.Entries = append(view.Entries, e.entry(rec))
		}
		st.Branches[name] = view
	}
	st.Main = st.Branches[MainBranch]
	if rec, ok := e.currentLocked(); ok {
		st.Current = e.entryRef(rec)
	}
	return st
}

// Branches returns branch names in creation order.
func (e *Engine[T]) Branches() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Names()
}

// ActiveBranch returns the name of the active branch.
func (e *Engine[T]) ActiveBranch() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.ActiveName()
}

// CanUndo reports whether Undo would move the cursor.
func (e *Engine[T]) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor.CanUndo(e.store.Active().Len())
}

// CanRedo reports whether Redo would move the cursor.
func (e *Engine[T]) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor.CanRedo(e.store.Active().Len())
}

// Stats summarizes the engine without decoding any entry.
func (e *Engine[T]) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		Branches:     len(e.store.Names()),
		Entries:      e.store.Count(),
		ActiveBranch: e.store.ActiveName(),
		Cursor:       e.cursor.Validated(e.store.Active().Len()),
		Payloads:     e.blobs.Len(),
		PayloadBytes: e.blobs.Size(),
		Pending:      e.pending != nil,
	}
}

// Clear resets the engine to a single empty main branch and drops a pending
// debounced record. Listeners stay subscribed. No event is emitted.
func (e *Engine[T]) Clear() {
	e.debouncer.Cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending = nil
	e.store.Reset()
	e.cursor.Reset()
	e.blobs.Reset()
}

// On subscribes fn to engine events and returns a function that
// unsubscribes it.
func (e *Engine[T]) On(fn Listener[T]) func() {
	return e.bus.On(events.Listener[Event[T]](fn))
}

