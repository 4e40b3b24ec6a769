package ledger

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerFiresOnceWithLastValue(t *testing.T) {
	var mu sync.Mutex
	var got []string
	d := NewDebouncer(20*time.Millisecond, func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})
	defer d.Stop()

	d.Input("m")
	d.Input("mo")
	d.Input("moc")
	d.Input("mocotó")

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected exactly one fire, got %d: %v", len(got), got)
	}
	if got[0] != "mocotó" {
		t.Fatalf("expected last value, got %q", got[0])
	}
}

func TestDebouncerStopCancelsPendingFire(t *testing.T) {
	fired := make(chan string, 1)
	d := NewDebouncer(20*time.Millisecond, func(v string) { fired <- v })

	d.Input("tripa")
	d.Stop()

	select {
	case v := <-fired:
		t.Fatalf("callback fired after stop with %q", v)
	case <-time.After(80 * time.Millisecond):
	}

	// Inputs after stop are dropped too.
	d.Input("late")
	select {
	case v := <-fired:
		t.Fatalf("callback fired for post-stop input %q", v)
	case <-time.After(80 * time.Millisecond):
	}
}
