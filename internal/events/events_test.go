package events

import "testing"

func TestBusPublish(t *testing.T) {
	bus := NewBus()

	var first, second []Type
	bus.Subscribe(func(ev Event) { first = append(first, ev.Type) })
	bus.Subscribe(func(ev Event) { second = append(second, ev.Type) })

	bus.Publish(New(TypeScanStarted, nil))
	bus.Publish(New(TypeHostDiscovered, map[string]string{"ip": "10.0.0.1"}))

	want := []Type{TypeScanStarted, TypeHostDiscovered}
	for name, got := range map[string][]Type{"first": first, "second": second} {
		if len(got) != len(want) {
			t.Fatalf("%s: expected %d events, got %d", name, len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: event %d expected %s, got %s", name, i, want[i], got[i])
			}
		}
	}
}

func TestNewStampsTimestamp(t *testing.T) {
	ev := New(TypeLog, "hello")
	if ev.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if ev.Data != "hello" {
		t.Errorf("expected data hello, got %v", ev.Data)
	}
}
