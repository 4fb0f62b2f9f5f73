package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/comus-party/justeprix/internal/api/handler"
	apimiddleware "github.com/comus-party/justeprix/internal/api/middleware"
	"github.com/comus-party/justeprix/internal/middleware"
	"github.com/comus-party/justeprix/internal/services/session"
	"github.com/comus-party/justeprix/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController session.ControllerInterface
	HubManager        *ws.HubManager
	Dispatcher        *ws.Dispatcher
	OwnerKeyHash      string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.SessionController)
	wsHandler := handler.NewWSHandler(cfg.SessionController, cfg.HubManager, cfg.Dispatcher, cfg.Logger)

	// Create middleware
	ownerAuthMiddleware := apimiddleware.OwnerAuth(cfg.OwnerKeyHash, cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (the join token is the credential). Registered
	// before the management subrouter: mux matches in order and a
	// prefix subrouter does not fall through.
	api.HandleFunc("/sessions/{id}/check/{token}", sessionHandler.CheckToken).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/ws", wsHandler.Connect).Methods(http.MethodGet)

	// Management routes (owner key required)
	managed := api.PathPrefix("/sessions").Subrouter()
	managed.Use(ownerAuthMiddleware)
	managed.HandleFunc("", sessionHandler.List).Methods(http.MethodGet)
	managed.HandleFunc("/{id}", sessionHandler.Create).Methods(http.MethodPost)
	managed.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	managed.HandleFunc("/{id}", sessionHandler.Terminate).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
