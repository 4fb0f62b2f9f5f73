package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/comus-party/justeprix/internal/api/request"
	"github.com/comus-party/justeprix/internal/api/response"
	"github.com/comus-party/justeprix/internal/model"
	"github.com/comus-party/justeprix/internal/services/session"
)

// SessionHandler handles session management endpoints
type SessionHandler struct {
	controller session.ControllerInterface
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller session.ControllerInterface) *SessionHandler {
	return &SessionHandler{
		controller: controller,
	}
}

// Create handles POST /api/v1/sessions/{id}
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid JSON body"))
		return
	}

	seeds := make([]model.PlayerSeed, 0, len(req.Players))
	for _, p := range req.Players {
		if p.ID == "" || p.DisplayName == "" || p.Token == "" {
			WriteError(w, NewInvalidRequestError("Each player needs an id, display_name and token"))
			return
		}
		seeds = append(seeds, model.PlayerSeed{
			ID:          model.PlayerID(p.ID),
			DisplayName: p.DisplayName,
			Token:       p.Token,
		})
	}

	settings := model.Settings{
		NbRounds:   req.NbRounds,
		Difficulty: model.Difficulty(req.Difficulty),
	}

	created, err := h.controller.CreateSession(r.Context(), id, settings, seeds)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(created))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	found, err := h.controller.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(found))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.controller.ListSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	sessions := make([]string, 0, len(ids))
	for _, id := range ids {
		sessions = append(sessions, string(id))
	}

	response.JSON(w, http.StatusOK, response.ListSessionsResponse{Sessions: sessions})
}

// Terminate handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	if err := h.controller.TerminateSession(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// CheckToken handles GET /api/v1/sessions/{id}/check/{token}.
// Clients call this before opening their websocket; a negative answer
// always looks the same so tokens cannot be probed apart from sessions.
func (h *SessionHandler) CheckToken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := model.SessionID(vars["id"])
	token := vars["token"]

	found, err := h.controller.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			response.JSON(w, http.StatusOK, response.CheckTokenResponse{Valid: false})
			return
		}
		WriteError(w, err)
		return
	}

	player, err := found.FindByToken(token)
	if err != nil {
		response.JSON(w, http.StatusOK, response.CheckTokenResponse{Valid: false})
		return
	}

	response.JSON(w, http.StatusOK, response.CheckTokenResponse{
		Valid:       true,
		DisplayName: player.DisplayName,
	})
}
