package session

import (
	"sync"

	"github.com/robalobadob/wordle/apps/tally/internal/game"
)

// Handler receives the full round after every change.
type Handler func(game.Round)

// subscriber is a latest-wins mailbox drained by its own goroutine.
type subscriber struct {
	fn   Handler
	wake chan struct{}
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	pending game.Round
	has     bool
}

func newSubscriber(fn Handler) *subscriber {
	sub := &subscriber{
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go sub.run()
	return sub
}

func (sub *subscriber) offer(r game.Round) {
	sub.mu.Lock()
	sub.pending, sub.has = r, true
	sub.mu.Unlock()
	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscriber) run() {
	for {
		select {
		case <-sub.done:
			return
		case <-sub.wake:
		}
		sub.mu.Lock()
		r, ok := sub.pending, sub.has
		sub.has = false
		sub.mu.Unlock()
		if ok {
			sub.fn(r)
		}
	}
}

func (sub *subscriber) stop() {
	sub.once.Do(func() { close(sub.done) })
}

// Subscribe registers fn for state changes and immediately delivers the
// current round. The returned func unregisters it; calling it more than
// once is safe.
func (s *Session) Subscribe(fn Handler) (unsubscribe func()) {
	sub := newSubscriber(fn)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.stop()
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	sub.offer(s.round)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		sub.stop()
	}
}

// Subscribers reports how many handlers are registered.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) publishLocked() {
	for _, sub := range s.subs {
		sub.offer(s.round)
	}
}
