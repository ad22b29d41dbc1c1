// Package rendezvous provides the single-consumer matching core for the
// stream receiver.
//
// All types in this package assume externally synchronized access. No mutexes
// or atomic operations are used; thread safety is the owning receiver's
// responsibility. Methods never invoke callbacks - they return any displaced
// waiter so the owner can invoke it after releasing its lock.
package rendezvous

// Cell matches arrivals of T against one-shot consumer callbacks, buffering
// whichever side shows up first. Arrivals are delivered in FIFO order.
//
// A Cell may be closed with a final value; once closed and drained, every
// subsequent [Cell.Take] resolves immediately with that value. Arrivals
// offered after close are still buffered, and drain ahead of the final value.
type Cell[T any] struct {
	final  T
	waiter func(T)
	buf    []T
	closed bool
}

// Offer buffers or matches an arrival. If a waiter is registered (via
// [Cell.Take]), it is removed and returned, and v is not buffered: the caller
// must invoke the returned waiter with v once it is safe to do so. Otherwise
// v is appended to the buffer and Offer returns nil.
func (c *Cell[T]) Offer(v T) func(T) {
	if c.waiter != nil {
		w := c.waiter
		c.waiter = nil
		return w
	}
	c.buf = append(c.buf, v)
	return nil
}

// Take resolves the next arrival for a one-shot callback.
//
// Resolution priority:
//  1. If an arrival is buffered, the oldest is returned with ok true
//     (FIFO order).
//  2. If the cell is closed and the buffer is drained, the close value is
//     returned with ok true.
//  3. Otherwise cb is saved as the waiter and ok is false; the waiter is
//     handed back by a later [Cell.Offer], [Cell.Close], or
//     [Cell.TakeWaiter].
//
// When ok is true the caller must invoke cb with v once it is safe to do so.
// Panics if called while a previous waiter is still pending.
func (c *Cell[T]) Take(cb func(T)) (v T, ok bool) {
	if len(c.buf) > 0 {
		var zero T
		v = c.buf[0]
		c.buf[0] = zero // release reference from backing array
		c.buf = c.buf[1:]
		if len(c.buf) == 0 {
			c.buf = nil // free backing array when fully drained
		}
		return v, true
	}
	if c.closed {
		return c.final, true
	}
	if c.waiter != nil {
		panic("rendezvous: Take called with existing waiter")
	}
	c.waiter = cb
	return v, false
}

// Close closes the cell with the given final value, returning any displaced
// waiter, which the caller must invoke with that value. Buffered arrivals
// remain available to [Cell.Take].
//
// Close is idempotent - subsequent calls are no-ops returning nil, and the
// first final value wins.
func (c *Cell[T]) Close(final T) func(T) {
	if c.closed {
		return nil
	}
	c.closed = true
	c.final = final
	if c.waiter != nil {
		w := c.waiter
		c.waiter = nil
		return w
	}
	return nil
}

// TakeWaiter removes and returns the pending waiter, if any.
func (c *Cell[T]) TakeWaiter() func(T) {
	w := c.waiter
	c.waiter = nil
	return w
}

// Waiting reports whether a waiter is pending.
func (c *Cell[T]) Waiting() bool {
	return c.waiter != nil
}

// Pending returns the number of buffered arrivals.
func (c *Cell[T]) Pending() int {
	return len(c.buf)
}

// Closed reports whether the cell has been closed.
func (c *Cell[T]) Closed() bool {
	return c.closed
}
