// ABOUTME: Tests for the latest-wins slot
// ABOUTME: Verifies replacement, non-blocking offers and concurrent use
package handoff

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// pending returns the unread value without waiting
func pending[T any](s *Slot[T]) (T, bool) {
	select {
	case v := <-s.C():
		return v, true
	default:
		var zero T
		return zero, false
	}
}

func TestSlotEmpty(t *testing.T) {
	s := New[int]()
	_, ok := pending(s)
	require.False(t, ok)
}

func TestSlotLatestWins(t *testing.T) {
	s := New[int]()

	require.False(t, s.Offer(1))
	require.True(t, s.Offer(2))
	require.True(t, s.Offer(3))

	v, ok := pending(s)
	require.True(t, ok)
	require.Equal(t, 3, v)

	_, ok = pending(s)
	require.False(t, ok)
}

func TestSlotOfferNeverBlocks(t *testing.T) {
	s := New[int]()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.Offer(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Offer blocked without a consumer")
	}

	v := <-s.C()
	require.Equal(t, 999, v)
}

func TestSlotConcurrentConsumer(t *testing.T) {
	s := New[int]()
	const n = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	last := -1
	ordered := true
	go func() {
		defer wg.Done()
		for v := range s.C() {
			if v <= last {
				ordered = false
			}
			last = v
			if v == n-1 {
				return
			}
		}
	}()

	for i := 0; i < n; i++ {
		s.Offer(i)
	}
	wg.Wait()
	require.True(t, ordered, "values arrive in order")
	require.Equal(t, n-1, last)
}
