// internal/session/session.go
//
// Session owns the single live Round for one host (a terminal, or one
// browser tab talking to the HTTP server).
//
// Responsibilities:
//   - Serialize input events (Key) and round restarts (NewRound).
//   - Fetch secret words from a words.Provider without blocking input.
//   - Expire the shake flag a fixed time after a refused input.
//   - Publish every state change to subscribers (Subscribe).
//
// Subscribers are delivered asynchronously, in order, latest-wins: a slow
// subscriber may skip intermediate states but always sees the newest one.
// Handlers may call back into the Session.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/tally/internal/game"
	"github.com/robalobadob/wordle/apps/tally/internal/words"
)

// DefaultShake is how long the shake flag stays set.
const DefaultShake = 400 * time.Millisecond

// Option configures a Session.
type Option func(*Session)

// WithShake overrides the shake duration.
func WithShake(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.shake = d
		}
	}
}

// Session is safe for concurrent use.
type Session struct {
	id    string
	shake time.Duration

	mu         sync.Mutex
	round      game.Round
	provider   words.Provider
	gen        uint64 // bumped by NewRound; stale word fetches compare against it
	shakeSeq   uint64 // bumped per refused input; only the newest timer clears
	shakeTimer *time.Timer
	subs       map[uint64]*subscriber
	nextSub    uint64
	lastActive time.Time
	closed     bool
}

// New creates a Session awaiting its first word. Call NewRound to start.
func New(id string, p words.Provider, opts ...Option) *Session {
	s := &Session{
		id:         id,
		shake:      DefaultShake,
		provider:   p,
		subs:       make(map[uint64]*subscriber),
		lastActive: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Round returns a snapshot of the current round.
func (s *Session) Round() game.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// LastActive reports when the session last handled an event.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Key applies one raw key event and returns the resulting round and signal.
// Unrecognized keys, keys while awaiting a word and keys after a win are
// ignored and publish nothing.
func (s *Session) Key(key string) (game.Round, game.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.round, game.SignalNone
	}
	s.lastActive = time.Now()

	next, sig := s.round.HandleKey(key)
	if sig != game.SignalNone {
		s.armShakeLocked()
	}
	if !roundsEqual(next, s.round) {
		s.round = next
		s.publishLocked()
	}
	return s.round, sig
}

// NewRound resets the round, publishes the empty AwaitingWord state, then
// fetches a word and begins play. It blocks for the duration of the fetch;
// hosts that must stay responsive call it from a goroutine.
//
// If another NewRound starts before the fetch returns, this call's word is
// dropped and the returned round reflects the newer call.
func (s *Session) NewRound(ctx context.Context) game.Round {
	s.mu.Lock()
	if s.closed {
		defer s.mu.Unlock()
		return s.round
	}
	s.gen++
	gen := s.gen
	s.lastActive = time.Now()
	s.stopShakeLocked()
	s.round = s.round.Reset()
	p := s.provider
	s.publishLocked()
	s.mu.Unlock()

	w := words.Fallback
	if p != nil {
		w = p.Word(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.closed {
		log.Debug().Str("round", s.id).Msg("discarding superseded word")
		return s.round
	}
	r, err := s.round.Begin(w)
	if err != nil {
		log.Warn().Err(err).Str("round", s.id).Str("word", w).Msg("provider returned invalid word, using fallback")
		r, _ = s.round.Begin(words.Fallback)
	}
	s.round = r
	s.publishLocked()
	log.Debug().Str("round", s.id).Msg("round started")
	return s.round
}

// Close stops timers and detaches every subscriber.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopShakeLocked()
	for id, sub := range s.subs {
		sub.stop()
		delete(s.subs, id)
	}
}

// armShakeLocked schedules the shake flag to clear. Only the most recent
// timer clears it; earlier ones find a newer sequence and do nothing.
func (s *Session) armShakeLocked() {
	s.shakeSeq++
	seq := s.shakeSeq
	s.stopShakeLocked()
	s.shakeTimer = time.AfterFunc(s.shake, func() { s.expireShake(seq) })
}

func (s *Session) stopShakeLocked() {
	if s.shakeTimer != nil {
		s.shakeTimer.Stop()
		s.shakeTimer = nil
	}
}

func (s *Session) expireShake(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.shakeSeq || !s.round.Shake {
		return
	}
	s.round = s.round.ClearShake()
	s.shakeTimer = nil
	s.publishLocked()
}

// roundsEqual compares the fields a transition can change. History is only
// ever replaced wholesale, so comparing length and head is enough.
func roundsEqual(a, b game.Round) bool {
	if a.Secret != b.Secret || a.Guess != b.Guess || a.Won != b.Won || a.Shake != b.Shake {
		return false
	}
	if len(a.History) != len(b.History) {
		return false
	}
	return len(a.History) == 0 || a.History[0] == b.History[0]
}
