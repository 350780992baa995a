// internal/words/provider.go
//
// Word Provider contract.
//
// A Provider hands out one secret word per call and never fails outward:
// any retrieval problem is absorbed inside the provider, which then
// returns Fallback. Callers may therefore treat Word as infallible.
//
// Implementations:
//   - Remote: JSON HTTP endpoint with a timeout (remote.go).
//   - List:   random pick from a file or the embedded answers (list.go).
//   - Daily:  date-deterministic pick from a List (daily.go).

package words

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/robalobadob/wordle/apps/tally/internal/game"
)

// Fallback is returned whenever a provider cannot produce a word.
const Fallback = "CRANE"

// Source names accepted by Registry.Lookup.
const (
	SourceRemote = "remote"
	SourceList   = "list"
	SourceDaily  = "daily"
)

// ErrUnknownSource is returned by Registry.Lookup for unregistered names.
var ErrUnknownSource = errors.New("words: unknown source")

// Provider supplies secret words.
type Provider interface {
	// Word returns a 5-letter uppercase word. It never fails.
	Word(ctx context.Context) string
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context) string

func (f ProviderFunc) Word(ctx context.Context) string { return f(ctx) }

// Static always returns the same word (normalized, or Fallback if invalid).
func Static(word string) Provider {
	w, ok := Normalize(word)
	if !ok {
		w = Fallback
	}
	return ProviderFunc(func(context.Context) string { return w })
}

// Normalize trims and uppercases w and reports whether the result
// is a playable word.
func Normalize(w string) (string, bool) {
	w = strings.ToUpper(strings.TrimSpace(w))
	return w, game.IsWord(w)
}

// Registry maps source names to providers.
type Registry map[string]Provider

// Lookup returns the provider registered under name.
func (r Registry) Lookup(name string) (Provider, error) {
	p, ok := r[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return p, nil
}

// Names lists registered sources in sorted order.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
