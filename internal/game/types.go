// internal/game/types.go
//
// Core type definitions for the tally game engine.
// Defines:
//   - Score:  green/yellow tally for one submitted guess.
//   - Entry:  a (guess, score) pair kept in the round history.
//   - Phase:  coarse round state (awaiting_word → playing → won).
//   - Signal: transient cue returned by a transition (row full / incomplete).
//   - Round:  the full state of one round.

package game

const (
	// WordLength is the number of letters in every secret and guess.
	WordLength = 5
	// HistoryCap is the number of past guesses a round remembers.
	HistoryCap = 5
)

// Score is the result of evaluating a guess against the secret.
//   - Green:  letters in the right position.
//   - Yellow: letters present elsewhere, bounded by what is left after greens.
type Score struct {
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
}

// Entry is one submitted guess together with its score.
type Entry struct {
	Guess string `json:"guess"`
	Score Score  `json:"score"`
}

// Phase represents where a round is in its lifecycle.
type Phase string

const (
	PhaseAwaitingWord Phase = "awaiting_word"
	PhasePlaying      Phase = "playing"
	PhaseWon          Phase = "won"
)

// Signal is a cosmetic cue produced by an input the round refused.
// It never changes Guess or History; hosts use it to pulse the input row.
type Signal string

const (
	SignalNone       Signal = ""
	SignalRowFull    Signal = "row_full"
	SignalIncomplete Signal = "incomplete"
)

// Round holds the state of a single round.
//
// Round is a value: every transition returns a new Round and never writes
// through to the receiver. History is rebuilt on submit, so a Round handed
// to a subscriber stays valid after later transitions.
type Round struct {
	Secret  string  // Uppercase secret; empty while awaiting a word.
	Guess   string  // In-progress entry, 0..WordLength uppercase letters.
	History []Entry // Most recent first, at most HistoryCap entries.
	Won     bool    // True once the secret was guessed.
	Shake   bool    // Set on a refused input until the host clears it.
}
