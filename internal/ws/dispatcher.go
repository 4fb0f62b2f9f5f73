package ws

import (
	"log/slog"

	"github.com/comus-party/justeprix/internal/model"
	"github.com/comus-party/justeprix/internal/services/session"
)

// Dispatcher encodes session events and routes them through the hub
// manager. A session with no hub yet gets a silent no-op; events are
// realtime-only and never queued for absent connections.
type Dispatcher struct {
	hubs   *HubManager
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher over a hub manager
func NewDispatcher(hubs *HubManager, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "dispatch")),
	}
}

// BroadcastToSession encodes the event and fans it out to every client
// bound to the session
func (d *Dispatcher) BroadcastToSession(id model.SessionID, ev model.Event) {
	hub := d.hubs.GetHub(id)
	if hub == nil {
		return
	}

	data, err := model.EncodeEvent(ev)
	if err != nil {
		d.logger.Error("failed to encode event",
			slog.String("session_id", string(id)),
			slog.String("event", string(ev.EventType())),
			slog.String("error", err.Error()),
		)
		return
	}

	hub.Broadcast(data)
}

// SendToPlayer encodes the event and delivers it only to the named
// player's connections
func (d *Dispatcher) SendToPlayer(id model.SessionID, displayName string, ev model.Event) {
	hub := d.hubs.GetHub(id)
	if hub == nil {
		return
	}

	data, err := model.EncodeEvent(ev)
	if err != nil {
		d.logger.Error("failed to encode event",
			slog.String("session_id", string(id)),
			slog.String("event", string(ev.EventType())),
			slog.String("error", err.Error()),
		)
		return
	}

	hub.SendTo(displayName, data)
}

// CloseSession tears down the session's hub, disconnecting all clients
func (d *Dispatcher) CloseSession(id model.SessionID) {
	d.hubs.RemoveHub(id)
}

var _ session.Broadcaster = (*Dispatcher)(nil)
