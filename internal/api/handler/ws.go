package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/comus-party/justeprix/internal/model"
	"github.com/comus-party/justeprix/internal/services/session"
	"github.com/comus-party/justeprix/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The join token is the credential; origin is not
		return true
	},
}

// WSHandler upgrades client connections and binds them to sessions
type WSHandler struct {
	controller session.ControllerInterface
	hubs       *ws.HubManager
	dispatcher *ws.Dispatcher
	logger     *slog.Logger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(controller session.ControllerInterface, hubs *ws.HubManager, dispatcher *ws.Dispatcher, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		controller: controller,
		hubs:       hubs,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "ws_handler")),
	}
}

// Connect handles GET /api/v1/sessions/{id}/ws?token=...
//
// Binding happens before the upgrade so token failures surface as
// plain HTTP errors. The join announcement is broadcast during binding,
// before this connection registers, which is what keeps it out of the
// joining player's own stream.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, NewInvalidRequestError("Missing token query parameter"))
		return
	}

	bind, err := h.controller.BindConnection(r.Context(), id, token)
	if err != nil {
		WriteError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote its own error response
		h.logger.Warn("websocket upgrade failed",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		h.controller.Disconnect(r.Context(), id, bind.DisplayName)
		return
	}

	hub := h.hubs.GetOrCreateHub(id)
	client := ws.NewClient(hub, conn, id, bind.DisplayName, h.controller, h.logger)
	hub.Register(client)

	go client.WritePump()

	// Private catch-up for this connection only: who it is, and the
	// round already in flight if it joined late
	h.dispatcher.SendToPlayer(id, bind.DisplayName, model.JoinEvent{
		DisplayName: bind.DisplayName,
		Difficulty:  bind.Difficulty,
	})
	if bind.RoundActive {
		h.dispatcher.SendToPlayer(id, bind.DisplayName, model.NewRoundEvent{
			RoundNumber: bind.RoundNumber,
			Difficulty:  bind.Difficulty,
		})
	}

	h.controller.PlayerReady(r.Context(), id)

	// Blocks until the connection drops
	client.ReadPump(r.Context())
}
