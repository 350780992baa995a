// internal/words/list.go
//
// List-backed provider.
//
// Loading behavior (NewList):
//  1. If path is set, read one word per line from that file.
//  2. Otherwise use the answers embedded in the assets package.
//
// Constraints:
//   - Words must be 5 letters A–Z; anything else is skipped.
//   - Lists are normalized to uppercase and de-duplicated.

package words

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/tally/assets"
)

// ErrEmptyList is returned when a list ends up with no playable words.
var ErrEmptyList = errors.New("words: list is empty")

// List picks secret words at random from a fixed list.
type List struct {
	words []string
}

// NewList loads a list from path, or the embedded answers if path is empty.
func NewList(path string) (*List, error) {
	var (
		raw []string
		err error
	)
	if path != "" {
		raw, err = readWordFile(path)
	} else {
		raw, err = assets.AnswersList()
	}
	if err != nil {
		return nil, fmt.Errorf("load word list: %w", err)
	}
	l := FromWords(raw)
	if len(l.words) == 0 {
		return nil, ErrEmptyList
	}
	log.Debug().Int("words", len(l.words)).Str("path", path).Msg("word list loaded")
	return l, nil
}

// FromWords builds a List from raw words, dropping invalid entries.
func FromWords(raw []string) *List {
	l := &List{}
	seen := make(map[string]struct{}, len(raw))
	for _, w := range raw {
		w, ok := Normalize(w)
		if !ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		l.words = append(l.words, w)
	}
	return l
}

// readWordFile loads one word per line from a file.
// Blank lines and lines starting with '#' are skipped.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadLines(f)
}

// Word returns a cryptographically random word from the list.
// An empty list yields Fallback.
func (l *List) Word(ctx context.Context) string {
	if l == nil || len(l.words) == 0 {
		return Fallback
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.words))))
	if err != nil {
		log.Warn().Err(err).Msg("random word pick")
		return Fallback
	}
	return l.words[nBig.Int64()]
}

// At returns the word at index i modulo the list length.
func (l *List) At(i int) string {
	if l == nil || len(l.words) == 0 {
		return Fallback
	}
	i %= len(l.words)
	if i < 0 {
		i += len(l.words)
	}
	return l.words[i]
}

// Len reports the number of words in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

