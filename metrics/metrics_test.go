package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/javanhut/ivaldi-history/history"
)

func TestAttachCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	h := history.New[string]()
	detach := Attach(c, h)

	h.Record("a", history.Immediate())
	h.Record("b", history.Immediate())
	h.Undo()
	h.Record("c", history.Immediate())

	if got := testutil.ToFloat64(c.Events.WithLabelValues("record")); got != 3 {
		t.Errorf("Expected 3 record events, got %v", got)
	}
	if got := testutil.ToFloat64(c.Events.WithLabelValues("branch-created")); got != 1 {
		t.Errorf("Expected 1 branch-created event, got %v", got)
	}
	if got := testutil.ToFloat64(c.Branches); got != 2 {
		t.Errorf("Expected 2 branches, got %v", got)
	}
	if got := testutil.ToFloat64(c.Entries); got != 3 {
		t.Errorf("Expected 3 entries, got %v", got)
	}
	if testutil.ToFloat64(c.PayloadBytes) <= 0 {
		t.Error("Expected payload bytes to be tracked")
	}

	detach()
	h.Undo()
	if got := testutil.ToFloat64(c.Events.WithLabelValues("undo")); got != 1 {
		t.Errorf("Detached collector still counting: %v", got)
	}
}

func TestRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	if n, err := testutil.GatherAndCount(reg); err != nil || n != 3 {
		t.Errorf("Expected 3 gathered gauges before any event, got %d (%v)", n, err)
	}
}
