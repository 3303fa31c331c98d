package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lox/holdem-arena/internal/holdem"
	"github.com/lox/holdem-arena/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// wsEnvelope frames every message in both directions.
type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	TS   time.Time       `json:"ts"`
}

func envelope(eventType string, data any, ts time.Time) wsEnvelope {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = nil
	}
	return wsEnvelope{Type: eventType, Data: raw, TS: ts}
}

func eventEnvelope(e session.Event) wsEnvelope {
	return envelope(e.EventType().String(), e, e.Timestamp())
}

// handleWebSocket streams a game's events and accepts action frames
// from human seats.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	game, err := s.lookupGame(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := game.Subscribe()

	// The write pump is the only goroutine touching the connection's
	// write side; frame rejections funnel through rejects.
	rejects := make(chan wsEnvelope, 8)

	go s.wsWritePump(ctx, cancel, conn, sub, rejects)
	s.wsReadPump(cancel, conn, game, rejects)

	sub.Close()
	_ = conn.Close()
}

// wsWritePump forwards bus events to the peer and keeps the connection
// alive with pings. The subscription draining out (terminal event
// consumed) closes the connection from this side.
func (s *Server) wsWritePump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sub *session.Subscription, rejects <-chan wsEnvelope) {
	defer cancel()

	events := make(chan session.Event)
	go func() {
		defer close(events)
		for {
			e, err := sub.Next(ctx)
			if err != nil {
				return
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
				return
			}
			if err := conn.WriteJSON(eventEnvelope(e)); err != nil {
				return
			}

		case env := <-rejects:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// wsReadPump consumes inbound frames until the peer goes away.
func (s *Server) wsReadPump(cancel context.CancelFunc, conn *websocket.Conn, game *session.Session, rejects chan<- wsEnvelope) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame wsEnvelope
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		s.handleWSFrame(game, frame, rejects)
	}
}

func (s *Server) handleWSFrame(game *session.Session, frame wsEnvelope, rejects chan<- wsEnvelope) {
	switch frame.Type {
	case "action":
		var req actionRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			wsReject(rejects, "invalid action frame: "+err.Error())
			return
		}
		kind, ok := holdem.ParseMoveKind(req.Action)
		if !ok {
			wsReject(rejects, "unknown action "+req.Action)
			return
		}
		if err := game.ProposeAction(req.PlayerID, kind, req.Amount); err != nil {
			wsReject(rejects, err.Error())
		}

	case "advance":
		if err := game.Advance(); err != nil {
			wsReject(rejects, err.Error())
		}

	default:
		wsReject(rejects, "unknown frame type "+frame.Type)
	}
}

// wsReject reports a rejected frame without disturbing the event
// stream; state updates continue as usual. A backed-up reject queue
// loses the report rather than stalling the reader.
func wsReject(rejects chan<- wsEnvelope, detail string) {
	env := envelope("error", map[string]string{
		"kind":   "RequestRejected",
		"detail": detail,
	}, time.Now())
	select {
	case rejects <- env:
	default:
	}
}
