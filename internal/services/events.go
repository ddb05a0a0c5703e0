package services

import (
	"sync"

	"github.com/renato0307/duet/internal/domain"
)

// EventBus fans events out to any number of subscribers.
// Publish never blocks on a slow subscriber: each one has its own unbounded
// queue drained by a pump goroutine, so per-publisher order is preserved.
type EventBus struct {
	closed bool
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
}

// Subscription receives events on C until it is closed
type Subscription struct {
	C <-chan domain.Event

	bus     *EventBus
	ch      chan domain.Event
	cond    *sync.Cond
	done    chan struct{}
	dropped bool
	ended   bool
	mu      sync.Mutex
	queue   []domain.Event
}

// NewEventBus creates an event bus with no subscribers
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[*Subscription]struct{})}
}

// Subscribe attaches a new subscriber. Events published before the call are
// not delivered.
func (b *EventBus) Subscribe() *Subscription {
	ch := make(chan domain.Event)
	s := &Subscription{
		C:    ch,
		bus:  b,
		ch:   ch,
		done: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)

	b.mu.Lock()
	if b.closed {
		s.ended = true
	} else {
		b.subs[s] = struct{}{}
	}
	b.mu.Unlock()

	go s.pump()
	return s
}

// Publish delivers ev to every current subscriber
func (b *EventBus) Publish(ev domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		s.push(ev)
	}
}

// Close ends every subscription after its queued events are delivered
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		s.end()
	}
	b.subs = nil
}

// Close detaches the subscriber and drops undelivered events
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()

	s.mu.Lock()
	if !s.dropped {
		s.dropped = true
		s.queue = nil
		close(s.done)
	}
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *Subscription) push(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.dropped {
		return
	}
	s.queue = append(s.queue, ev)
	s.cond.Signal()
}

func (s *Subscription) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	s.cond.Signal()
}

func (s *Subscription) pump() {
	defer close(s.ch)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.ended && !s.dropped {
			s.cond.Wait()
		}
		if s.dropped || len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		ev := s.queue[0]
		s.queue[0] = domain.Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- ev:
		case <-s.done:
			return
		}
	}
}
