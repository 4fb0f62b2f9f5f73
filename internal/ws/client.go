package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/comus-party/justeprix/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// EventSink receives inbound events decoded off a client connection
type EventSink interface {
	SubmitGuess(ctx context.Context, id model.SessionID, displayName string, rawGuess string)
	Disconnect(ctx context.Context, id model.SessionID, displayName string)
}

// Client is one websocket connection bound to a session player
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	sessionID   model.SessionID
	displayName string
	connectedAt time.Time
	sink        EventSink
	logger      *slog.Logger
}

// NewClient wraps an upgraded connection. The caller registers it with
// the hub and then starts the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID model.SessionID, displayName string, sink EventSink, logger *slog.Logger) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 64),
		sessionID:   sessionID,
		displayName: displayName,
		connectedAt: time.Now(),
		sink:        sink,
		logger: logger.With(
			slog.String("session_id", string(sessionID)),
			slog.String("player", displayName),
		),
	}
}

// ReadPump reads inbound frames until the connection drops. It must
// run on the request goroutine; on exit the player is marked
// disconnected and the client unregisters from the hub.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		// The request context may already be gone when the socket
		// drops, and the disconnect bookkeeping must still run
		c.sink.Disconnect(context.Background(), c.sessionID, c.displayName)
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws read error", slog.String("error", err.Error()))
			}
			return
		}

		ev, err := model.DecodeClientEvent(raw)
		if err != nil {
			// Unknown or malformed frames are dropped, not fatal
			c.logger.Debug("dropping client frame", slog.String("error", err.Error()))
			continue
		}

		switch ev := ev.(type) {
		case model.GuessEvent:
			// The bound identity wins over whatever name the frame claims
			c.sink.SubmitGuess(ctx, c.sessionID, c.displayName, ev.Guess)
		}
	}
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with pings. Runs on its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
