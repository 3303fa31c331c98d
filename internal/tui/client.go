package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-arena/internal/session"
)

const (
	// Time allowed to write a message to the server.
	writeWait = 10 * time.Second

	// Keepalive ping period from our side.
	pingPeriod = 30 * time.Second
)

// Envelope frames every message in both directions, mirroring the
// server's WebSocket protocol.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	TS   time.Time       `json:"ts"`
}

// Client keeps one game's WebSocket stream open and ferries frames in
// both directions. Received envelopes arrive on Events; the channel
// closes when the server ends the stream.
type Client struct {
	baseURL string
	gameID  string
	logger  *log.Logger

	conn      *websocket.Conn
	events    chan Envelope
	outbox    chan Envelope
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient prepares a client for one game on an arena server reachable
// at baseURL (http or https).
func NewClient(baseURL, gameID string, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		gameID:  gameID,
		logger:  logger.WithPrefix("client"),
		events:  make(chan Envelope, 64),
		outbox:  make(chan Envelope, 16),
		done:    make(chan struct{}),
	}
}

// Connect dials the game's event stream and starts the pumps.
func (c *Client) Connect(ctx context.Context) error {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/games/" + c.gameID + "/ws"
	c.logger.Debug("connecting", "url", url)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dialing %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return fmt.Errorf("dialing %s: %w", url, err)
	}
	c.conn = conn

	go c.readPump()
	go c.writePump()
	return nil
}

// Events returns the inbound envelope stream.
func (c *Client) Events() <-chan Envelope {
	return c.events
}

// SendAction submits a decision for a seat.
func (c *Client) SendAction(playerID int, action string, amount int) error {
	raw, err := json.Marshal(map[string]any{
		"player_id": playerID,
		"action":    action,
		"amount":    amount,
	})
	if err != nil {
		return err
	}
	return c.send(Envelope{Type: "action", Data: raw, TS: time.Now()})
}

// SendAdvance asks the session to deal the next hand.
func (c *Client) SendAdvance() error {
	return c.send(Envelope{Type: "advance", TS: time.Now()})
}

func (c *Client) send(env Envelope) error {
	select {
	case c.outbox <- env:
		return nil
	case <-c.done:
		return fmt.Errorf("connection closed")
	}
}

// Close tears the connection down. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) readPump() {
	defer close(c.events)
	defer c.Close()

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		select {
		case c.events <- env:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env := <-c.outbox:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Debug("write failed", "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// SeatRequest is one seat in a game creation request.
type SeatRequest struct {
	Name        string `json:"name,omitempty"`
	Kind        string `json:"kind"`
	Rule        string `json:"rule,omitempty"`
	Model       string `json:"model,omitempty"`
	Personality string `json:"personality,omitempty"`
}

// CreateGameRequest mirrors the server's game creation payload.
type CreateGameRequest struct {
	Preset    string        `json:"preset,omitempty"`
	Seats     []SeatRequest `json:"seats,omitempty"`
	Buyin     int           `json:"buyin,omitempty"`
	MaxHands  int           `json:"max_hands,omitempty"`
	AutoStart bool          `json:"auto_start,omitempty"`
	Seed      int64         `json:"seed,omitempty"`
}

// CreateGame creates a game over REST and returns its initial snapshot.
func CreateGame(ctx context.Context, baseURL string, req CreateGameRequest) (*session.GameState, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(baseURL, "/") + "/api/games"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		var failure struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &failure) == nil && failure.Error != "" {
			return nil, fmt.Errorf("creating game: %s", failure.Error)
		}
		return nil, fmt.Errorf("creating game: status %d", resp.StatusCode)
	}

	var state session.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("decoding game state: %w", err)
	}
	return &state, nil
}
