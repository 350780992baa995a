package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/tally/internal/game"
	"github.com/robalobadob/wordle/apps/tally/internal/session"
)

const (
	wsWriteWait    = 5 * time.Second
	wsNewRoundWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsIn is a client → server message.
//
//	{"type":"key","key":"A"}   apply a key event ("type" may be omitted)
//	{"type":"new"}             start a new round
type wsIn struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// handleWS streams the round view on every change and accepts key
// messages. The socket is registered as a session subscriber for its
// whole lifetime.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("round", sess.ID()).Msg("websocket upgrade")
		return
	}

	send := make(chan roundView, 1)
	done := make(chan struct{})
	unsubscribe := sess.Subscribe(func(rd game.Round) {
		select {
		case send <- newRoundView(rd):
		case <-done:
		}
	})

	go writePump(conn, send, done)
	readPump(conn, sess)

	unsubscribe()
	close(done)
	_ = conn.Close()
	log.Debug().Str("round", sess.ID()).Msg("websocket closed")
}

func readPump(conn *websocket.Conn, sess *session.Session) {
	for {
		var msg wsIn
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "", "key":
			sess.Key(msg.Key)
		case "new":
			ctx, cancel := context.WithTimeout(context.Background(), wsNewRoundWait)
			sess.NewRound(ctx)
			cancel()
		}
	}
}

func writePump(conn *websocket.Conn, send <-chan roundView, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case v := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(v); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
