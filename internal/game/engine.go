// internal/game/engine.go
//
// Round state machine.
// Responsibilities:
//   - Start a round once a secret word is available (Begin).
//   - Apply input edits to the guess buffer (Append, Delete).
//   - Score a full buffer and record it in the capped history (Submit).
//   - Freeze the round once won until Reset.
//
// Notes:
//   - Every transition has a value receiver and returns the next Round.
//   - Refused inputs never error: they return a Signal and set Shake.
//   - Rounds awaiting a word and won rounds ignore all input.
package game

import (
	"errors"
	"strings"
)

// ErrInvalidSecret is returned by Begin for anything but WordLength letters A–Z.
var ErrInvalidSecret = errors.New("game: secret must be 5 letters")

// Phase reports where the round is in its lifecycle.
func (r Round) Phase() Phase {
	switch {
	case r.Secret == "":
		return PhaseAwaitingWord
	case r.Won:
		return PhaseWon
	default:
		return PhasePlaying
	}
}

// Begin moves a round into play with the given secret.
// Guess, History, Won and Shake all start empty.
func (r Round) Begin(secret string) (Round, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if !IsWord(secret) {
		return r, ErrInvalidSecret
	}
	return Round{Secret: secret}, nil
}

// Reset discards the round. The result awaits a new word.
func (r Round) Reset() Round {
	return Round{}
}

// Append adds one letter to the guess buffer.
// A full buffer refuses the letter with SignalRowFull.
func (r Round) Append(letter rune) (Round, Signal) {
	if r.Phase() != PhasePlaying {
		return r, SignalNone
	}
	if letter >= 'a' && letter <= 'z' {
		letter = letter - 'a' + 'A'
	}
	if letter < 'A' || letter > 'Z' {
		return r, SignalNone
	}
	if len(r.Guess) >= WordLength {
		r.Shake = true
		return r, SignalRowFull
	}
	r.Guess += string(letter)
	return r, SignalNone
}

// Delete removes the last letter of the guess buffer, if any.
func (r Round) Delete() Round {
	if r.Phase() != PhasePlaying || r.Guess == "" {
		return r
	}
	r.Guess = r.Guess[:len(r.Guess)-1]
	return r
}

// Submit scores the guess buffer against the secret.
// An incomplete buffer is refused with SignalIncomplete.
//
// State transitions:
//   - The (guess, score) entry is prepended to History, which keeps at most
//     HistoryCap entries.
//   - The buffer is cleared.
//   - If the guess equals the secret → Won.
func (r Round) Submit() (Round, Signal) {
	if r.Phase() != PhasePlaying {
		return r, SignalNone
	}
	if len(r.Guess) != WordLength {
		r.Shake = true
		return r, SignalIncomplete
	}

	// Secret and Guess are both validated WordLength words here.
	sc, _ := Evaluate(r.Guess, r.Secret)

	n := len(r.History) + 1
	if n > HistoryCap {
		n = HistoryCap
	}
	hist := make([]Entry, 0, n)
	hist = append(hist, Entry{Guess: r.Guess, Score: sc})
	hist = append(hist, r.History[:n-1]...)

	if r.Guess == r.Secret {
		r.Won = true
	}
	r.History = hist
	r.Guess = ""
	return r, SignalNone
}

// ClearShake drops the shake flag. Clearing an unset flag is a no-op.
func (r Round) ClearShake() Round {
	r.Shake = false
	return r
}

// HandleKey parses a raw key and applies the matching transition.
// Unrecognized keys leave the round untouched.
func (r Round) HandleKey(key string) (Round, Signal) {
	action, letter := ParseKey(key)
	switch action {
	case ActionAppend:
		return r.Append(letter)
	case ActionDelete:
		return r.Delete(), SignalNone
	case ActionSubmit:
		return r.Submit()
	}
	return r, SignalNone
}

// IsWord reports whether s is exactly WordLength uppercase ASCII letters.
func IsWord(s string) bool {
	if len(s) != WordLength {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
