package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleCoalesces(t *testing.T) {
	d := New(20 * time.Millisecond)

	var calls atomic.Int32
	var last atomic.Int32
	done := make(chan struct{}, 3)

	for i := 1; i <= 3; i++ {
		v := int32(i)
		d.Schedule(func() {
			calls.Add(1)
			last.Store(v)
			done <- struct{}{}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Debounced task never ran")
	}

	// Give any stray timers a chance to misfire
	time.Sleep(60 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", calls.Load())
	}
	if last.Load() != 3 {
		t.Errorf("Expected last scheduled task to run, got %d", last.Load())
	}
	if d.Cancel() {
		t.Error("Nothing should be pending after the task ran")
	}
}

func TestCancel(t *testing.T) {
	d := New(10 * time.Millisecond)

	var ran atomic.Bool
	d.Schedule(func() { ran.Store(true) })

	if !d.Cancel() {
		t.Error("Cancel should report a pending task")
	}
	if d.Cancel() {
		t.Error("Second Cancel should report nothing pending")
	}

	time.Sleep(40 * time.Millisecond)
	if ran.Load() {
		t.Error("Cancelled task should not run")
	}
}
