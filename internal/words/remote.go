package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRemoteURL serves a JSON array holding one random 5-letter word.
const DefaultRemoteURL = "https://random-word-api.herokuapp.com/word?length=5"

// DefaultRemoteTimeout bounds a single remote fetch.
const DefaultRemoteTimeout = 3 * time.Second

var errBadPayload = errors.New("words: remote payload is not a 5-letter word")

// Remote fetches words from an HTTP endpoint returning `["word"]`.
// Any transport, status or payload problem yields Fallback.
type Remote struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// NewRemote builds a Remote with the given endpoint and per-fetch timeout.
// Empty/zero arguments select the defaults.
func NewRemote(url string, timeout time.Duration) *Remote {
	if url == "" {
		url = DefaultRemoteURL
	}
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &Remote{URL: url, Timeout: timeout, Client: http.DefaultClient}
}

// Word fetches one word, falling back to Fallback on any error.
func (r *Remote) Word(ctx context.Context) string {
	w, err := r.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Str("url", r.URL).Msg("remote word fetch failed, using fallback")
		return Fallback
	}
	return w
}

func (r *Remote) fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return "", err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("words: remote status %d", res.StatusCode)
	}
	var payload []string
	if err := json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode remote word: %w", err)
	}
	if len(payload) == 0 {
		return "", errBadPayload
	}
	w, ok := Normalize(payload[0])
	if !ok {
		return "", errBadPayload
	}
	return w, nil
}
