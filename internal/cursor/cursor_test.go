package cursor

import "testing"

func TestNewCursor(t *testing.T) {
	c := New()
	if c.Position() != None {
		t.Errorf("New cursor should be at %d, got %d", None, c.Position())
	}
	if c.CanUndo(0) || c.CanRedo(0) {
		t.Error("Empty branch should allow neither undo nor redo")
	}
}

func TestValidatedClamps(t *testing.T) {
	tests := []struct {
		name   string
		pos    int
		length int
		want   int
	}{
		{"in range", 2, 5, 2},
		{"past end", 7, 5, 4},
		{"empty branch", 3, 0, None},
		{"below none", -5, 3, None},
		{"none stays none", None, 3, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Set(tt.pos)
			c.Invalidate()
			if got := c.Validated(tt.length); got != tt.want {
				t.Errorf("Validated(%d) = %d, want %d", tt.length, got, tt.want)
			}
			// A clean cursor is not clamped again, even against an empty branch
			if got := c.Validated(0); got != tt.want {
				t.Errorf("Cursor should be clean after validation, got %d", got)
			}
		})
	}
}

func TestValidatedTrustsCleanPosition(t *testing.T) {
	c := New()
	c.Set(9)
	// Not invalidated, so no clamping happens
	if got := c.Validated(3); got != 9 {
		t.Errorf("Clean cursor should not be clamped, got %d", got)
	}
}

func TestCanUndoRedo(t *testing.T) {
	c := New()
	c.Set(0)
	if c.CanUndo(3) {
		t.Error("Cannot undo from position 0")
	}
	if !c.CanRedo(3) {
		t.Error("Should redo from position 0 of 3")
	}

	c.Set(2)
	if !c.CanUndo(3) {
		t.Error("Should undo from the tip")
	}
	if c.CanRedo(3) {
		t.Error("Cannot redo from the tip")
	}
}

func TestReset(t *testing.T) {
	c := New()
	c.Set(4)
	c.Invalidate()
	c.Reset()
	if c.Position() != None {
		t.Errorf("Reset should leave the cursor at %d", None)
	}
}
