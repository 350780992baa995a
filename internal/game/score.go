package game

import (
	"errors"
	"strings"
)

// ErrLengthMismatch is returned when guess and secret differ in length.
var ErrLengthMismatch = errors.New("game: guess and secret lengths differ")

// Evaluate scores guess against secret.
//
// Pass 1:
//   - Count exact position matches as green; consume both sides.
//
// Pass 2:
//   - For each unconsumed guess letter, left to right, take the first
//     unconsumed secret position (left to right) holding the same letter.
//     Each take counts one yellow and consumes that secret position.
//
// Both words are uppercased before comparison.
func Evaluate(guess, secret string) (Score, error) {
	g := []rune(strings.ToUpper(guess))
	s := []rune(strings.ToUpper(secret))
	if len(g) != len(s) {
		return Score{}, ErrLengthMismatch
	}

	var sc Score
	guessUsed := make([]bool, len(g))
	secretUsed := make([]bool, len(s))

	for i := range g {
		if g[i] == s[i] {
			sc.Green++
			guessUsed[i] = true
			secretUsed[i] = true
		}
	}

	for i := range g {
		if guessUsed[i] {
			continue
		}
		for j := range s {
			if !secretUsed[j] && s[j] == g[i] {
				sc.Yellow++
				secretUsed[j] = true
				break
			}
		}
	}
	return sc, nil
}
