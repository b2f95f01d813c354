// ABOUTME: Latest-wins single-slot mailbox
// ABOUTME: Hands values from a producer goroutine to a UI loop without blocking
package handoff

// Slot holds at most one pending value. A newer Offer replaces an unread
// one, so the consumer only ever sees the most recent state.
type Slot[T any] struct {
	ch chan T
}

// New creates an empty slot
func New[T any]() *Slot[T] {
	return &Slot[T]{ch: make(chan T, 1)}
}

// Offer stores v without blocking. It reports whether an unread value was
// discarded to make room.
//
// Offer assumes a single producer.
func (s *Slot[T]) Offer(v T) (dropped bool) {
	for {
		select {
		case s.ch <- v:
			return dropped
		default:
		}
		select {
		case <-s.ch:
			dropped = true
		default:
		}
	}
}

// C returns the receive side for the consumer
func (s *Slot[T]) C() <-chan T {
	return s.ch
}
