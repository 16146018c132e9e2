package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jsphweid/dreamland/bus"
)

const (
	clientQueue = 64
	writeWait   = 5 * time.Second
)

// handleEvents streams every bus message to the client as a JSON envelope.
// A client that cannot keep up is disconnected; the bus never waits for it.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	queue := make(chan bus.Envelope, clientQueue)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	unsubscribe := s.game.Bus.SubscribeAll(func(m bus.Message) error {
		select {
		case queue <- bus.Wrap(m):
		case <-done:
		default:
			s.logger.Warn("dropping slow event client", "remote", r.RemoteAddr)
			stop()
		}
		return nil
	})
	defer unsubscribe()
	s.logger.Info("event client connected", "remote", r.RemoteAddr)

	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			s.logger.Info("event client disconnected", "remote", r.RemoteAddr)
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case env := <-queue:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				s.logger.Warn("event write failed", "err", err)
				return
			}
		}
	}
}
