package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/tally/internal/game"
	"github.com/robalobadob/wordle/apps/tally/internal/store"
	"github.com/robalobadob/wordle/apps/tally/internal/words"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	sources := words.Registry{
		words.SourceList:   words.Static("CRANE"),
		words.SourceRemote: words.Static("GHOST"),
	}
	daily := words.NewDaily(words.FromWords([]string{"PLANT"}), "salt")
	return New(store.NewMemoryStore(0), sources, daily, Config{
		TokenSecret: "test-secret",
		Shake:       150 * time.Millisecond,
	})
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func create(t *testing.T, s *Server, body any) createRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/rounds", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res createRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.ID)
	require.NotEmpty(t, res.Token)
	return res
}

func pressKey(t *testing.T, s *Server, c createRes, key string) keyRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/rounds/"+c.ID+"/keys", c.Token, keyReq{Key: key})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res keyRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRound(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/rounds", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), tokenCookieName+"=")

	var res createRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, game.PhasePlaying, res.Round.Phase)
	assert.Empty(t, res.Round.Secret)

	rec = do(t, s, http.MethodPost, "/rounds", "", createReq{Source: "pigeon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenRequired(t *testing.T) {
	s := newTestServer(t)
	a := create(t, s, nil)
	b := create(t, s, nil)

	rec := do(t, s, http.MethodGet, "/rounds/"+a.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/rounds/"+a.ID, "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/rounds/"+a.ID, b.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodGet, "/rounds/"+a.ID, a.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenForEvictedRound(t *testing.T) {
	s := newTestServer(t)
	c := create(t, s, nil)
	require.NoError(t, s.store.Delete(t.Context(), c.ID))

	rec := do(t, s, http.MethodGet, "/rounds/"+c.ID, c.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlayToWin(t *testing.T) {
	s := newTestServer(t)
	c := create(t, s, createReq{Source: "list"})

	res := pressKey(t, s, c, "Enter")
	assert.Equal(t, game.SignalIncomplete, res.Signal)
	assert.True(t, res.Round.Shake)

	for _, k := range []string{"t", "r", "a", "c", "e"} {
		pressKey(t, s, c, k)
	}
	res = pressKey(t, s, c, "X")
	assert.Equal(t, game.SignalRowFull, res.Signal)

	res = pressKey(t, s, c, "Enter")
	assert.Equal(t, game.SignalNone, res.Signal)
	require.Len(t, res.Round.History, 1)
	assert.Equal(t, entryView{Guess: "TRACE", Green: 3, Yellow: 1}, res.Round.History[0])
	assert.Empty(t, res.Round.Secret)

	for _, k := range []string{"C", "R", "A", "N", "E", "Enter"} {
		res = pressKey(t, s, c, k)
	}
	assert.True(t, res.Round.Won)
	assert.Equal(t, game.PhaseWon, res.Round.Phase)
	assert.Equal(t, "CRANE", res.Round.Secret)

	res = pressKey(t, s, c, "A")
	assert.Empty(t, res.Round.Guess)
	assert.Len(t, res.Round.History, 2)

	rec := do(t, s, http.MethodPost, "/rounds/"+c.ID+"/new", c.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v roundView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.False(t, v.Won)
	assert.Empty(t, v.History)
	assert.Equal(t, game.PhasePlaying, v.Phase)
}

func TestKeyBadJSON(t *testing.T) {
	s := newTestServer(t)
	c := create(t, s, nil)
	req := httptest.NewRequest(http.MethodPost, "/rounds/"+c.ID+"/keys", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+c.Token)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBadJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/rounds", strings.NewReader(`{"source":`))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_json")
	assert.Zero(t, s.store.(*store.Memory).Len())

	req = httptest.NewRequest(http.MethodPost, "/rounds", strings.NewReader(""))
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDaily(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/daily", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info dailyRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Len(t, info.Date, len("2006-01-02"))

	rec = do(t, s, http.MethodPost, "/daily", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var c createRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, info.Date, c.Date)

	var res keyRes
	for _, k := range []string{"P", "L", "A", "N", "T", "Enter"} {
		res = pressKey(t, s, c, k)
	}
	assert.True(t, res.Round.Won)
	assert.Equal(t, "PLANT", res.Round.Secret)
}

func TestWebsocket(t *testing.T) {
	s := newTestServer(t)
	c := create(t, s, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rounds/" + c.ID + "/ws?token=" + c.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	readUntil := func(pred func(roundView) bool) roundView {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		for {
			var v roundView
			require.NoError(t, conn.ReadJSON(&v))
			if pred(v) {
				return v
			}
		}
	}

	v := readUntil(func(v roundView) bool { return v.Phase == game.PhasePlaying })
	assert.Empty(t, v.Guess)

	require.NoError(t, conn.WriteJSON(wsIn{Key: "g"}))
	v = readUntil(func(v roundView) bool { return v.Guess == "G" })
	assert.Equal(t, "G", v.Guess)

	require.NoError(t, conn.WriteJSON(wsIn{Type: "key", Key: "Enter"}))
	readUntil(func(v roundView) bool { return v.Shake })
	readUntil(func(v roundView) bool { return !v.Shake })

	require.NoError(t, conn.WriteJSON(wsIn{Type: "new"}))
	v = readUntil(func(v roundView) bool { return v.Phase == game.PhasePlaying && v.Guess == "" })
	assert.Empty(t, v.History)
}

func TestWebsocketRejectsBadToken(t *testing.T) {
	s := newTestServer(t)
	c := create(t, s, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rounds/" + c.ID + "/ws?token=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
