package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenCookieName = "tally_token"
	devTokenSecret  = "dev_secret_change_me"
)

var errTokenRound = errors.New("token issued for another round")

// ctxRoundKey is the context key type for the verified round id.
type ctxRoundKey struct{}

// signRoundToken creates an HS256 JWT that grants control of one round.
func (s *Server) signRoundToken(roundID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"rid": roundID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString(s.tokenSecret())
	return ss, exp, err
}

// parseRoundToken verifies a token and returns its round id.
func (s *Server) parseRoundToken(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.tokenSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	rid, _ := claims["rid"].(string)
	if rid == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return rid, nil
}

func (s *Server) tokenSecret() []byte {
	if s.cfg.TokenSecret == "" {
		return []byte(devTokenSecret)
	}
	return []byte(s.cfg.TokenSecret)
}

// requireRoundToken enforces a valid token whose rid matches the {id}
// URL parameter and stores the id in the request context.
func (s *Server) requireRoundToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerOrCookie(r)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			rid, err := s.parseRoundToken(tokenStr)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			if rid != chi.URLParam(r, "id") {
				writeError(w, http.StatusForbidden, errTokenRound.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxRoundKey{}, rid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// setTokenCookie writes the round token cookie.
func (s *Server) setTokenCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header, the
// token cookie, or the ?token= query parameter (websocket clients).
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(tokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}
