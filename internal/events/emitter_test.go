package events

import (
	"reflect"
	"testing"
)

func TestEmitOrder(t *testing.T) {
	var e Emitter[string]
	var got []string

	e.On(func(s string) { got = append(got, "a:"+s) })
	e.On(func(s string) { got = append(got, "b:"+s) })

	e.Emit("x")

	want := []string{"a:x", "b:x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestUnsubscribe(t *testing.T) {
	var e Emitter[int]
	count := 0

	off := e.On(func(int) { count++ })
	e.Emit(1)
	off()
	off() // idempotent
	e.Emit(2)

	if count != 1 {
		t.Errorf("Expected 1 delivery, got %d", count)
	}
	if len(e.subs) != 0 {
		t.Errorf("Expected no listeners, got %d", len(e.subs))
	}
}

func TestListenerMayUnsubscribeDuringEmit(t *testing.T) {
	var e Emitter[int]
	var calls []string

	var offA func()
	offA = e.On(func(int) {
		calls = append(calls, "a")
		offA()
	})
	e.On(func(int) { calls = append(calls, "b") })

	e.Emit(1)
	e.Emit(2)

	want := []string{"a", "b", "b"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("Expected %v, got %v", want, calls)
	}
}
