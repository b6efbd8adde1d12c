package recipes

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
)

// handleEvents pushes every state change of the session as a JSON snapshot
// over a websocket. Only this goroutine writes to the connection; the reader
// forwards pings to it.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, o, ok := s.sessions.Existing(r)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, rw, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		slog.WarnContext(ctx, "websocket upgrade failed", "session", id, "error", err)
		if conn != nil {
			conn.Close()
		}
		return
	}
	defer conn.Close()

	updates, unsubscribe := o.Subscribe()
	defer unsubscribe()

	pings := make(chan []byte, 1)
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			// rw may already hold bytes the client sent after the handshake.
			frame, err := ws.ReadFrame(rw.Reader)
			if err != nil {
				return
			}
			if frame.Header.Masked {
				ws.Cipher(frame.Payload, frame.Header.Mask, 0)
			}
			switch frame.Header.OpCode {
			case ws.OpClose:
				return
			case ws.OpPing:
				select {
				case pings <- frame.Payload:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-gone:
			_ = ws.WriteFrame(conn, ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusNormalClosure, "")))
			return
		case <-s.done:
			_ = ws.WriteFrame(conn, ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusGoingAway, "server shutting down")))
			return
		case payload := <-pings:
			if err := ws.WriteFrame(conn, ws.NewPongFrame(payload)); err != nil {
				return
			}
		case snap, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				slog.ErrorContext(ctx, "failed to encode state event", "session", id, "error", err)
				return
			}
			if err := ws.WriteFrame(conn, ws.NewTextFrame(payload)); err != nil {
				slog.InfoContext(ctx, "event stream closed", "session", id, "error", err)
				return
			}
		}
	}
}
