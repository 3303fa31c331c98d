package session

import (
	"context"
	"errors"
	"sync"
)

// DefaultSubscriberBuffer bounds each subscriber's queue.
const DefaultSubscriberBuffer = 64

// ErrSubscriptionClosed is returned by Next after the final event has
// been consumed or the subscription was closed.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Bus fans session events out to subscribers. Publishing never blocks:
// each subscriber owns a bounded queue and slow readers lose their
// oldest droppable events instead of stalling the table.
//
// Drop policy on a full queue: the oldest StateUpdate goes first (a
// newer snapshot supersedes it), then the oldest ActionApplied. A
// Terminal event is always enqueued and is the last event before the
// subscription drains out.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe attaches a new subscriber. Subscribing to a closed bus
// returns a subscription that is already drained.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus:  b,
		cap:  b.buffer,
		wake: make(chan struct{}, 1),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.closed = true
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for sub := range b.subs {
		sub.push(e)
	}
}

// Close publishes nothing further and lets subscribers drain what they
// have. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.markDone()
	}
	b.subs = nil
}

// SubscriberCount reports attached subscribers, for stats.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) detach(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
}

// Subscription is one subscriber's bounded view of the bus.
type Subscription struct {
	bus *Bus
	cap int

	mu     sync.Mutex
	queue  []Event
	closed bool // no further events will arrive
	wake   chan struct{}
}

// push enqueues under the bus lock, evicting per the drop policy.
func (s *Subscription) push(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if len(s.queue) >= s.cap && e.EventType() != EventTypeTerminal {
		if !s.evictLocked() {
			// Queue full of undroppable events; the newcomer loses.
			return
		}
	}
	s.queue = append(s.queue, e)

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// evictLocked removes the oldest StateUpdate, then the oldest Error
// diagnostic, then the oldest ActionApplied. Terminal events are never
// evicted.
func (s *Subscription) evictLocked() bool {
	for _, droppable := range []EventType{EventTypeStateUpdate, EventTypeError, EventTypeActionApplied} {
		for i, e := range s.queue {
			if e.EventType() == droppable {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				return true
			}
		}
	}
	return false
}

// seed enqueues an event bypassing the closed check. Queued events are
// readable after close, so late subscribers still drain an initial
// snapshot before ErrSubscriptionClosed.
func (s *Subscription) seed(e Event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) markDone() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Next returns the next event, blocking until one is available, the
// subscription drains after close, or ctx ends.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			e := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return e, nil
		}
		done := s.closed
		s.mu.Unlock()

		if done {
			return nil, ErrSubscriptionClosed
		}

		select {
		case <-s.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TryNext returns the next buffered event without blocking.
func (s *Subscription) TryNext() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	e := s.queue[0]
	s.queue = s.queue[1:]
	return e, true
}

// Len reports the buffered event count.
func (s *Subscription) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close detaches the subscriber from the bus. Buffered events remain
// readable until drained.
func (s *Subscription) Close() {
	s.bus.detach(s)
	s.markDone()
}
