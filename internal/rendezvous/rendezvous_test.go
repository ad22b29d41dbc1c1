package rendezvous

import (
	"errors"
	"testing"
)

func TestCell_OfferThenTake(t *testing.T) {
	var c Cell[string]
	if w := c.Offer("v1"); w != nil {
		t.Fatal("no waiter should be displaced")
	}
	var got string
	v, ok := c.Take(func(string) { t.Fatal("waiter should not be stored") })
	if !ok {
		t.Fatal("buffered value should resolve immediately")
	}
	got = v
	if got != "v1" {
		t.Fatalf("got %q, want v1", got)
	}
}

func TestCell_TakeThenOffer(t *testing.T) {
	var c Cell[string]
	var got string
	var fired bool
	if _, ok := c.Take(func(v string) {
		got = v
		fired = true
	}); ok {
		t.Fatal("empty cell should store the waiter")
	}
	if fired {
		t.Fatal("callback should not fire before Offer")
	}
	w := c.Offer("v1")
	if w == nil {
		t.Fatal("Offer should displace the waiter")
	}
	w("v1")
	if !fired || got != "v1" {
		t.Fatalf("got (%q, %v), want (v1, true)", got, fired)
	}
	if c.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0 (matched, not buffered)", c.Pending())
	}
}

func TestCell_BufferingFIFO(t *testing.T) {
	var c Cell[string]
	for _, v := range []string{"a", "b", "c"} {
		if w := c.Offer(v); w != nil {
			t.Fatalf("Offer(%s): unexpected waiter", v)
		}
	}
	if c.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", c.Pending())
	}
	var vals []string
	for range 3 {
		v, ok := c.Take(func(string) {})
		if !ok {
			t.Fatal("buffered value should resolve immediately")
		}
		vals = append(vals, v)
	}
	if len(vals) != 3 || vals[0] != "a" || vals[1] != "b" || vals[2] != "c" {
		t.Fatalf("got %v, want [a b c]", vals)
	}
	if c.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", c.Pending())
	}
}

func TestCell_InterleavedOfferTake(t *testing.T) {
	var c Cell[int]
	for i := range 5 {
		if w := c.Offer(i); w != nil {
			t.Fatal("unexpected waiter")
		}
		v, ok := c.Take(func(int) {})
		if !ok || v != i {
			t.Fatalf("iteration %d: got (%v, %v)", i, v, ok)
		}
	}
}

func TestCell_TakeOnClosedEmpty(t *testing.T) {
	var c Cell[string]
	if w := c.Close("final"); w != nil {
		t.Fatal("no waiter should be displaced")
	}
	v, ok := c.Take(func(string) {})
	if !ok || v != "final" {
		t.Fatalf("got (%q, %v), want (final, true)", v, ok)
	}
}

func TestCell_TakeOnClosedRepeats(t *testing.T) {
	var c Cell[string]
	c.Close("final")
	for range 3 {
		v, ok := c.Take(func(string) {})
		if !ok || v != "final" {
			t.Fatalf("got (%q, %v), want (final, true)", v, ok)
		}
	}
}

func TestCell_TakeDrainsBufferBeforeFinal(t *testing.T) {
	var c Cell[string]
	c.Offer("m1")
	c.Offer("m2")
	if w := c.Close("final"); w != nil {
		t.Fatal("no waiter should be displaced")
	}
	var vals []string
	for range 3 {
		v, ok := c.Take(func(string) {})
		if !ok {
			t.Fatal("should resolve immediately")
		}
		vals = append(vals, v)
	}
	if len(vals) != 3 || vals[0] != "m1" || vals[1] != "m2" || vals[2] != "final" {
		t.Fatalf("got %v, want [m1 m2 final]", vals)
	}
}

func TestCell_OfferAfterCloseStillBuffers(t *testing.T) {
	var c Cell[string]
	c.Close("final")
	if w := c.Offer("late"); w != nil {
		t.Fatal("no waiter should be displaced")
	}
	v, ok := c.Take(func(string) {})
	if !ok || v != "late" {
		t.Fatalf("got (%q, %v), want (late, true)", v, ok)
	}
	v, ok = c.Take(func(string) {})
	if !ok || v != "final" {
		t.Fatalf("got (%q, %v), want (final, true)", v, ok)
	}
}

func TestCell_CloseReturnsPendingWaiter(t *testing.T) {
	var c Cell[string]
	var got string
	c.Take(func(v string) { got = v })
	w := c.Close("final")
	if w == nil {
		t.Fatal("Close should displace the waiter")
	}
	w("final")
	if got != "final" {
		t.Fatalf("got %q, want final", got)
	}
	if c.Waiting() {
		t.Fatal("waiter should be consumed")
	}
}

func TestCell_DoubleCloseIsIdempotent(t *testing.T) {
	var c Cell[string]
	c.Close("first")
	if w := c.Close("second"); w != nil {
		t.Fatal("second close should be a no-op")
	}
	if !c.Closed() {
		t.Fatal("should be closed")
	}
	// First close wins.
	v, ok := c.Take(func(string) {})
	if !ok || v != "first" {
		t.Fatalf("got (%q, %v), want (first, true)", v, ok)
	}
}

func TestCell_Closed(t *testing.T) {
	var c Cell[int]
	if c.Closed() {
		t.Fatal("should not be closed initially")
	}
	c.Close(0)
	if !c.Closed() {
		t.Fatal("should be closed after Close")
	}
}

func TestCell_TakeWaiter(t *testing.T) {
	var c Cell[string]
	if c.TakeWaiter() != nil {
		t.Fatal("no waiter initially")
	}
	var got string
	c.Take(func(v string) { got = v })
	if !c.Waiting() {
		t.Fatal("waiter should be pending")
	}
	w := c.TakeWaiter()
	if w == nil {
		t.Fatal("TakeWaiter should return the pending waiter")
	}
	if c.Waiting() {
		t.Fatal("waiter should be removed")
	}
	if c.TakeWaiter() != nil {
		t.Fatal("waiter should only be returned once")
	}
	w("delivered")
	if got != "delivered" {
		t.Fatalf("got %q, want delivered", got)
	}
}

func TestCell_DuplicateWaiterPanics(t *testing.T) {
	var c Cell[string]
	c.Take(func(string) {}) // first waiter - saved
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for duplicate waiter")
		}
	}()
	c.Take(func(string) {}) // second - should panic
}

func TestCell_StructValues(t *testing.T) {
	type result struct {
		err error
		n   int
	}
	var c Cell[result]
	boom := errors.New("boom")
	c.Offer(result{n: 1})
	c.Close(result{err: boom})
	v, ok := c.Take(func(result) {})
	if !ok || v.n != 1 || v.err != nil {
		t.Fatalf("got (%+v, %v), want ({n:1}, true)", v, ok)
	}
	v, ok = c.Take(func(result) {})
	if !ok || v.err != boom {
		t.Fatalf("got (%+v, %v), want ({err:boom}, true)", v, ok)
	}
}
