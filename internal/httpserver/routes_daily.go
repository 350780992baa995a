// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily" mode.
// Exposes two endpoints under /daily:
//   - GET  /daily → today's date key
//   - POST /daily → start a round whose secret is today's word
//
// Deterministic word selection is based on date + salt (see words.Daily).
// Daily rounds are ordinary sessions afterwards: same token, same
// /rounds/{id} routes, and "new" picks today's word again.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// dailyRes is returned by GET /daily.
type dailyRes struct {
	Date string `json:"date"`
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Post("/", s.handleDailyNew)
	})
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	date, _ := s.daily.Today()
	_ = json.NewEncoder(w).Encode(dailyRes{Date: date})
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	res, ok := s.startRound(w, r, s.daily)
	if !ok {
		return
	}
	res.Date, _ = s.daily.Today()
	_ = json.NewEncoder(w).Encode(res)
}
