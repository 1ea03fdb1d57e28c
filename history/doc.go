// Package history keeps an in-memory, branchable version history of a value.
//
// An Engine records successive states of a value of type T as entries on
// named branches, moves a cursor through them with undo, redo and jumps, and
// never loses history: recording after rewinding forks the entries ahead of
// the cursor onto a new branch instead of discarding them.
//
//	h := history.New[Doc]()
//	h.Record(doc, history.Immediate())
//	h.Undo()
//
// Recorded values are copied through encoding/json. Only what survives a
// JSON round trip is kept: exported fields, maps with string-like keys,
// slices and scalars. Metadata goes through the same round trip, so nested
// maps come back as map[string]any and numbers as float64. Every entry
// handed out is a fresh copy, so callers may mutate what they get back
// without touching the history.
//
// Record is debounced by default. Rapid calls coalesce into one entry holding
// the last value once the quiet period (Config.DebounceDelay) has passed.
// The commit happens on a timer goroutine, which is why the Engine is
// internally synchronized.
//
// Listeners registered with On run synchronously after the operation that
// raised the event has finished. They may call back into the Engine. An
// event describes the state right after its own operation; a listener that
// mutates the Engine must not assume later events it receives describe
// settled state. Fetch State again rather than caching it.
package history
