package types

import (
	"context"
	"sync"
)

// Subscription is a restartable=no lazy sequence of decoded events
// delivered from a single eth_subscribe stream. Closing both removes the
// transport's router entry and issues an unsubscribe RPC; it is safe to
// call Close more than once or concurrently with Take.
type Subscription[T any] struct {
	ch          chan T
	closed      chan struct{}
	closeOnce   sync.Once
	unsubscribe func()
}

// NewSubscription constructs a subscription backed by ch, calling
// unsubscribe exactly once when Close is first called. unsubscribe may be
// nil for subscriptions with no server-side counterpart (e.g. in tests).
func NewSubscription[T any](ch chan T, unsubscribe func()) *Subscription[T] {
	return &Subscription[T]{ch: ch, closed: make(chan struct{}), unsubscribe: unsubscribe}
}

// IsEmpty reports whether no event is currently buffered. A false result
// does not guarantee a subsequent Take will not block, since the producer
// may race ahead; it is advisory only.
func (s *Subscription[T]) IsEmpty() bool {
	return len(s.ch) == 0
}

// IsClosed reports whether Close has been called.
func (s *Subscription[T]) IsClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Take blocks until an event arrives, the subscription is closed, or ctx
// is cancelled. ok is false iff the subscription was closed (or drained
// after closing) with no further event.
func (s *Subscription[T]) Take(ctx context.Context) (event T, ok bool, err error) {
	select {
	case v, open := <-s.ch:
		if !open {
			return event, false, nil
		}
		return v, true, nil
	case <-s.closed:
		select {
		case v, open := <-s.ch:
			if open {
				return v, true, nil
			}
		default:
		}
		return event, false, nil
	case <-ctx.Done():
		return event, false, ctx.Err()
	}
}

// Close marks the subscription closed and issues the unsubscribe callback
// exactly once. It does not itself close the underlying channel — the
// transport's reader goroutine owns that, since it is the sole writer.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.unsubscribe != nil {
			go s.unsubscribe()
		}
	})
}
