// Package cursor tracks the current position inside the active branch.
package cursor

// None is the position used when there is no current entry.
const None = -1

// Cursor is an index into the active branch with lazy clamping. Branch
// mutations call Invalidate instead of recomputing the position; the next
// read clamps it against the branch length the caller passes in.
type Cursor struct {
	pos   int
	dirty bool
}

// New returns a cursor with no current entry.
func New() *Cursor {
	return &Cursor{pos: None}
}

// Position returns the stored position without validating it.
func (c *Cursor) Position() int {
	return c.pos
}

// Set moves the cursor and marks it valid.
func (c *Cursor) Set(pos int) {
	c.pos = pos
	c.dirty = false
}

// Invalidate marks the position stale without recomputing it.
func (c *Cursor) Invalidate() {
	c.dirty = true
}

// Validated returns the position, clamping it into [None, length-1] first
// if it was invalidated.
func (c *Cursor) Validated(length int) int {
	if c.dirty {
		c.pos = max(None, min(c.pos, length-1))
		c.dirty = false
	}
	return c.pos
}

// CanUndo reports whether stepping back stays inside a branch of length.
func (c *Cursor) CanUndo(length int) bool {
	return length > 0 && c.Validated(length) > 0
}

// CanRedo reports whether stepping forward stays inside a branch of length.
func (c *Cursor) CanRedo(length int) bool {
	return c.Validated(length) < length-1
}

// Reset clears the position.
func (c *Cursor) Reset() {
	c.pos = None
	c.dirty = false
}
