package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/tally/internal/game"
	"github.com/robalobadob/wordle/apps/tally/internal/words"
)

func started(t *testing.T, word string, opts ...Option) *Session {
	t.Helper()
	s := New("test", words.Static(word), opts...)
	t.Cleanup(s.Close)
	r := s.NewRound(context.Background())
	require.Equal(t, game.PhasePlaying, r.Phase())
	return s
}

func typeKeys(s *Session, keys ...string) {
	for _, k := range keys {
		s.Key(k)
	}
}

func TestNewRoundStartsPlaying(t *testing.T) {
	s := New("abc", words.Static("ghost"))
	defer s.Close()

	assert.Equal(t, game.PhaseAwaitingWord, s.Round().Phase())
	_, sig := s.Key("A")
	assert.Equal(t, game.SignalNone, sig)
	assert.Empty(t, s.Round().Guess)

	r := s.NewRound(context.Background())
	assert.Equal(t, "GHOST", r.Secret)
	assert.Equal(t, "abc", s.ID())
}

func TestInvalidProviderWordFallsBack(t *testing.T) {
	p := words.ProviderFunc(func(context.Context) string { return "nope" })
	s := New("x", p)
	defer s.Close()
	assert.Equal(t, words.Fallback, s.NewRound(context.Background()).Secret)

	bare := New("y", nil)
	defer bare.Close()
	assert.Equal(t, words.Fallback, bare.NewRound(context.Background()).Secret)
}

func TestKeysAndWin(t *testing.T) {
	s := started(t, "CRANE")
	typeKeys(s, "c", "r", "a", "n", "e")
	assert.Equal(t, "CRANE", s.Round().Guess)

	r, sig := s.Key("Enter")
	assert.Equal(t, game.SignalNone, sig)
	assert.True(t, r.Won)

	before := s.Round()
	typeKeys(s, "A", "Backspace", "Enter")
	assert.Equal(t, before, s.Round())
}

func TestNewRoundResetsAfterWin(t *testing.T) {
	s := started(t, "CRANE")
	typeKeys(s, "C", "R", "A", "N", "E", "Enter")
	require.True(t, s.Round().Won)

	r := s.NewRound(context.Background())
	assert.False(t, r.Won)
	assert.Empty(t, r.History)
	assert.Empty(t, r.Guess)
	assert.Equal(t, game.PhasePlaying, r.Phase())
}

func TestShakeExpires(t *testing.T) {
	s := started(t, "CRANE", WithShake(20*time.Millisecond))

	r, sig := s.Key("Enter")
	assert.Equal(t, game.SignalIncomplete, sig)
	assert.True(t, r.Shake)

	require.Eventually(t, func() bool { return !s.Round().Shake }, time.Second, 5*time.Millisecond)
}

func TestOverlappingShakes(t *testing.T) {
	s := started(t, "CRANE", WithShake(30*time.Millisecond))
	typeKeys(s, "A", "B", "C", "D", "E")
	for i := 0; i < 5; i++ {
		_, sig := s.Key("F")
		assert.Equal(t, game.SignalRowFull, sig)
	}
	assert.True(t, s.Round().Shake)
	require.Eventually(t, func() bool { return !s.Round().Shake }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "ABCDE", s.Round().Guess)
}

func TestSupersededFetchIsDropped(t *testing.T) {
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	p := words.ProviderFunc(func(context.Context) string {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-release
			return "SLOWW"
		}
		return "QUICK"
	})
	s := New("x", p)
	defer s.Close()

	slow := make(chan game.Round)
	go func() { slow <- s.NewRound(context.Background()) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)

	fast := s.NewRound(context.Background())
	assert.Equal(t, "QUICK", fast.Secret)

	close(release)
	late := <-slow
	assert.Equal(t, "QUICK", late.Secret)
	assert.Equal(t, "QUICK", s.Round().Secret)
}

func TestSubscribe(t *testing.T) {
	s := started(t, "CRANE")

	var mu sync.Mutex
	var seen []game.Round
	unsubscribe := s.Subscribe(func(r game.Round) {
		mu.Lock()
		seen = append(seen, r)
		mu.Unlock()
	})
	last := func() game.Round {
		mu.Lock()
		defer mu.Unlock()
		if len(seen) == 0 {
			return game.Round{}
		}
		return seen[len(seen)-1]
	}

	require.Eventually(t, func() bool { return last().Secret == "CRANE" }, time.Second, time.Millisecond)

	typeKeys(s, "S", "L", "A", "T", "E", "Enter")
	require.Eventually(t, func() bool { return len(last().History) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "SLATE", last().History[0].Guess)
	assert.Equal(t, 1, s.Subscribers())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, s.Subscribers())

	mu.Lock()
	n := len(seen)
	mu.Unlock()
	typeKeys(s, "A")
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, n, len(seen))
	mu.Unlock()
}

func TestSubscriberMayCallBack(t *testing.T) {
	s := started(t, "CRANE")
	done := make(chan struct{})
	var once sync.Once
	unsubscribe := s.Subscribe(func(r game.Round) {
		if r.Guess == "A" {
			s.Key("Backspace")
			once.Do(func() { close(done) })
		}
	})
	defer unsubscribe()

	s.Key("A")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not run")
	}
	require.Eventually(t, func() bool { return s.Round().Guess == "" }, time.Second, time.Millisecond)
}

func TestClose(t *testing.T) {
	s := started(t, "CRANE")
	s.Subscribe(func(game.Round) {})
	s.Close()
	s.Close()
	assert.Equal(t, 0, s.Subscribers())

	r, sig := s.Key("A")
	assert.Equal(t, game.SignalNone, sig)
	assert.Empty(t, r.Guess)
}
