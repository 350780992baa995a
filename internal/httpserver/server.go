// internal/httpserver/server.go
//
// HTTP server wiring for the tally backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Round endpoints: POST /rounds creates a round and returns its token;
//     GET/POST under /rounds/{id} require that token.
//   - Websocket render stream: GET /rounds/{id}/ws (see ws.go).
//   - Daily rounds: mounted under /daily (see routes_daily.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The secret word is only ever serialized once the round is won.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/tally/internal/game"
	"github.com/robalobadob/wordle/apps/tally/internal/session"
	"github.com/robalobadob/wordle/apps/tally/internal/store"
	"github.com/robalobadob/wordle/apps/tally/internal/words"
)

// Config holds the server knobs.
type Config struct {
	ClientOrigin   string        // allowed CORS origin
	TokenSecret    string        // HS256 key for round tokens
	TokenTTL       time.Duration // round token lifetime
	SecureCookies  bool          // mark cookies Secure + SameSite=None
	DefaultSource  string        // word source used when a request names none
	Shake          time.Duration // shake flag lifetime for new sessions
	RequestTimeout time.Duration // bound for non-streaming handlers
}

// Server bundles router, session store and word sources.
type Server struct {
	r       *chi.Mux
	store   store.Store
	sources words.Registry
	daily   *words.Daily
	cfg     Config
}

// New constructs a Server, installs middleware, and registers routes.
// daily may be nil, in which case /daily is not mounted.
func New(st store.Store, sources words.Registry, daily *words.Daily, cfg Config) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.DefaultSource == "" {
		cfg.DefaultSource = words.SourceList
	}
	s := &Server{r: chi.NewRouter(), store: st, sources: sources, daily: daily, cfg: cfg}

	// --- middleware ---
	s.r.Use(chimw.RequestID)  // add X-Request-ID
	s.r.Use(chimw.RealIP)     // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)  // recover from panics
	s.r.Use(s.corsFromConfig) // credentials-friendly CORS

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
		r.Use(jsonContentType)                   // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"tally","endpoints":["/health","POST /rounds","GET /rounds/{id}","POST /rounds/{id}/keys","POST /rounds/{id}/new","GET /rounds/{id}/ws","POST /daily"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Post("/rounds", s.handleCreate)

		if s.daily != nil {
			s.mountDaily(r)
		}
	})

	// Round control (token required)
	s.r.Route("/rounds/{id}", func(r chi.Router) {
		r.Use(s.requireRoundToken())

		// Websocket streams are long-lived; keep them out of the timeout group.
		r.Get("/ws", s.handleWS)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
			r.Use(jsonContentType)
			r.Get("/", s.handleGet)
			r.Post("/keys", s.handleKey)
			r.Post("/new", s.handleNewRound)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromConfig enables credentialed CORS for a single origin.
func (s *Server) corsFromConfig(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ views --------------------------------------

// entryView is one history row as sent to clients.
type entryView struct {
	Guess  string `json:"guess"`
	Green  int    `json:"green"`
	Yellow int    `json:"yellow"`
}

// roundView is the client-facing rendering of a game.Round.
type roundView struct {
	Phase   game.Phase  `json:"phase"`
	Guess   string      `json:"guess"`
	History []entryView `json:"history"`
	Won     bool        `json:"won"`
	Shake   bool        `json:"shake"`
	Secret  string      `json:"secret,omitempty"` // only once won
}

func newRoundView(r game.Round) roundView {
	v := roundView{
		Phase:   r.Phase(),
		Guess:   r.Guess,
		History: make([]entryView, 0, len(r.History)),
		Won:     r.Won,
		Shake:   r.Shake,
	}
	for _, e := range r.History {
		v.History = append(v.History, entryView{Guess: e.Guess, Green: e.Score.Green, Yellow: e.Score.Yellow})
	}
	if r.Won {
		v.Secret = r.Secret
	}
	return v
}

// ------------------------------ ROUNDS -------------------------------------

// createReq/Res payloads for POST /rounds.
type createReq struct {
	Source string `json:"source"` // "remote" | "list" | "daily"; empty = configured default
}
type createRes struct {
	ID    string    `json:"id"`
	Token string    `json:"token"`
	Date  string    `json:"date,omitempty"` // daily rounds only
	Round roundView `json:"round"`
}

// handleCreate starts a new session, waits for its first word, and
// returns the round together with the token that controls it.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	// An empty body is allowed: source is optional.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	name := req.Source
	if name == "" {
		name = s.cfg.DefaultSource
	}
	p, err := s.sources.Lookup(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_source")
		return
	}
	res, ok := s.startRound(w, r, p)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// startRound creates, starts and registers a session and issues its token.
func (s *Server) startRound(w http.ResponseWriter, r *http.Request, p words.Provider) (createRes, bool) {
	sess := session.New(store.NewID(), p, session.WithShake(s.cfg.Shake))
	rd := sess.NewRound(r.Context())
	if err := s.store.Save(r.Context(), sess); err != nil {
		sess.Close()
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return createRes{}, false
	}
	tok, exp, err := s.signRoundToken(sess.ID())
	if err != nil {
		log.Error().Err(err).Msg("sign round token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return createRes{}, false
	}
	s.setTokenCookie(w, tok, exp)
	log.Info().Str("round", sess.ID()).Msg("round created")
	return createRes{ID: sess.ID(), Token: tok, Round: newRoundView(rd)}, true
}

// session loads the session named by the verified round id.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, _ := r.Context().Value(ctxRoundKey{}).(string)
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(newRoundView(sess.Round()))
}

// keyReq/Res payloads for POST /rounds/{id}/keys.
type keyReq struct {
	Key string `json:"key"`
}
type keyRes struct {
	Round  roundView   `json:"round"`
	Signal game.Signal `json:"signal"` // "" | "row_full" | "incomplete"
}

// handleKey applies one key event. Refused or unrecognized keys are not
// errors: they come back as a signal (or nothing) with a 200.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	wasWon := sess.Round().Won
	rd, sig := sess.Key(req.Key)
	if rd.Won && !wasWon {
		log.Info().Str("round", sess.ID()).Msg("round won")
	}
	_ = json.NewEncoder(w).Encode(keyRes{Round: newRoundView(rd), Signal: sig})
}

// handleNewRound discards the current round and starts another.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	rd := sess.NewRound(r.Context())
	_ = json.NewEncoder(w).Encode(newRoundView(rd))
}

// ------------------------------- small util --------------------------------

// writeError sends a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
