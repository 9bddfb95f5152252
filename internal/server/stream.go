package server

import (
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/lorenzotomasdiez/debate-arena/internal/events"
)

const (
	// outboxSize exceeds the hub backlog so a full replay never overflows.
	outboxSize   = 2 * events.DefaultBacklog
	writeTimeout = 10 * time.Second
)

// serveUpdates streams channel messages after the given sequence number
// over a websocket. The connection is closed once the debate finishes
// and every message has been written, or when the observer falls too far
// behind.
func (s *Server) serveUpdates(w http.ResponseWriter, r *http.Request, channel string, after uint64) {
	logger := s.logger.With("channel", channel)
	websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()

		out := make(chan events.Message, outboxSize)
		overflow := make(chan struct{})
		var once sync.Once
		subID := s.stream.SubscribeFrom(channel, after, func(msg events.Message) {
			select {
			case out <- msg:
			default:
				once.Do(func() { close(overflow) })
			}
		})
		defer s.stream.Unsubscribe(subID)

		// Observers never send; reading only detects the disconnect.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			_, _ = io.Copy(io.Discard, conn)
		}()

		done := s.stream.Done(channel)
		for {
			select {
			case msg := <-out:
				if err := send(conn, msg); err != nil {
					logger.Debug("observer write failed", "error", err)
					return
				}
			case <-done:
				for {
					select {
					case msg := <-out:
						if err := send(conn, msg); err != nil {
							return
						}
					default:
						return
					}
				}
			case <-overflow:
				logger.Warn("observer fell behind, closing stream")
				return
			case <-gone:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}).ServeHTTP(w, r)
}

func send(conn *websocket.Conn, msg events.Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return websocket.JSON.Send(conn, msg)
}
