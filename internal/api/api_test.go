package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/comus-party/justeprix/internal/api"
	"github.com/comus-party/justeprix/internal/api/response"
	"github.com/comus-party/justeprix/internal/factory"
	"github.com/comus-party/justeprix/internal/model"
	"github.com/comus-party/justeprix/internal/services/session"
	"github.com/comus-party/justeprix/internal/storage/memory"
)

const testOwnerKey = "test-owner-key"

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	storage *memory.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use the production factory with
	// real random/clock, just with fast pacing
	sessionCfg := session.DefaultConfig()
	sessionCfg.NextRoundDelay = 5 * time.Millisecond
	sessionCfg.PersonalScoreDelay = 5 * time.Millisecond
	sessionCfg.SettlementPace = 5 * time.Millisecond
	sessionCfg.RedirectDelay = 5 * time.Millisecond

	app, err := factory.New(factory.Config{
		Logger:        logger,
		OwnerURL:      "http://owner.invalid",
		SessionConfig: sessionCfg,
	})
	require.NoError(t, err)

	keyHash, err := bcrypt.GenerateFromPassword([]byte(testOwnerKey), bcrypt.MinCost)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		HubManager:        app.HubManager,
		Dispatcher:        app.Dispatcher,
		OwnerKeyHash:      string(keyHash),
	})

	return &testServer{
		handler: router,
		storage: app.Storage.(*memory.Storage),
	}
}

func (ts *testServer) request(method, path string, body any, key string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func createBody(names ...string) map[string]any {
	players := make([]map[string]string, 0, len(names))
	for _, name := range names {
		players = append(players, map[string]string{
			"id":           "id-" + name,
			"display_name": name,
			"token":        "tok-" + name,
		})
	}
	return map[string]any{
		"nb_rounds":  2,
		"difficulty": "easy",
		"players":    players,
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), testOwnerKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "game-1", resp.ID)
	assert.Equal(t, 2, resp.NbRounds)
	assert.Len(t, resp.Players, 2)
	assert.Equal(t, 0, resp.CurrentRound)

	// Tokens are never echoed back
	assert.NotContains(t, rr.Body.String(), "tok-Alice")
}

func TestCreateSessionRequiresOwnerKey(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestServer(t)

	// Too few players
	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice"), testOwnerKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "ROSTER_TOO_SMALL")

	// Bad difficulty
	body := createBody("Alice", "Bob")
	body["difficulty"] = "nightmare"
	rr = ts.request(http.MethodPost, "/api/v1/sessions/game-1", body, testOwnerKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_SETTING")

	// Missing token on a seed
	body = createBody("Alice", "Bob")
	body["players"].([]map[string]string)[0]["token"] = ""
	rr = ts.request(http.MethodPost, "/api/v1/sessions/game-1", body, testOwnerKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateSessionDuplicateID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), testOwnerKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Carol", "Dave"), testOwnerKey)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "SESSION_EXISTS")
}

func TestGetAndListSessions(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), testOwnerKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/game-1", nil, testOwnerKey)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions", nil, testOwnerKey)
	assert.Equal(t, http.StatusOK, rr.Code)

	var list response.ListSessionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, []string{"game-1"}, list.Sessions)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/nonexistent", nil, testOwnerKey)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTerminateSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), testOwnerKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/sessions/game-1", nil, testOwnerKey)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/game-1", nil, testOwnerKey)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCheckToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), testOwnerKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	// Token checks don't need the owner key
	rr = ts.request(http.MethodGet, "/api/v1/sessions/game-1/check/tok-Alice", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var check response.CheckTokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &check))
	assert.True(t, check.Valid)
	assert.Equal(t, "Alice", check.DisplayName)

	// Bad token and unknown session both answer invalid, not an error
	rr = ts.request(http.MethodGet, "/api/v1/sessions/game-1/check/bogus", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &check))
	assert.False(t, check.Valid)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/nonexistent/check/tok-Alice", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &check))
	assert.False(t, check.Valid)
}

// Websocket flow, end to end over a real listener

func dialWS(t *testing.T, server *httptest.Server, sessionID, token string) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(server.URL, "http://", "ws://", 1) +
		"/api/v1/sessions/" + sessionID + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

// readUntil reads frames until one of the wanted type arrives
func readUntil(t *testing.T, conn *websocket.Conn, want model.EventType) model.Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var env model.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		if env.Type == want {
			return env
		}
	}
}

func TestWebsocketJoinAndGuessFlow(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), testOwnerKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	alice := dialWS(t, server, "game-1", "tok-Alice")
	defer func() { _ = alice.Close() }()

	// Private identity confirmation on connect
	env := readUntil(t, alice, model.EventJoin)
	var join model.JoinEvent
	require.NoError(t, json.Unmarshal(env.Data, &join))
	assert.Equal(t, "Alice", join.DisplayName)
	assert.Equal(t, model.DifficultyEasy, join.Difficulty)

	bob := dialWS(t, server, "game-1", "tok-Bob")
	defer func() { _ = bob.Close() }()

	// Second connection reaches the round minimum; both see the round
	aliceRound := readUntil(t, alice, model.EventNewRound)
	bobRound := readUntil(t, bob, model.EventNewRound)

	var round model.NewRoundEvent
	require.NoError(t, json.Unmarshal(aliceRound.Data, &round))
	assert.Equal(t, 1, round.RoundNumber)
	require.NoError(t, json.Unmarshal(bobRound.Data, &round))
	assert.Equal(t, 1, round.RoundNumber)

	// A negative guess can never match; both players see the echo
	guess, err := model.EncodeEvent(model.GuessEvent{Guess: "-5"})
	require.NoError(t, err)
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, guess))

	for _, conn := range []*websocket.Conn{alice, bob} {
		env := readUntil(t, conn, model.EventMessage)
		var msg model.MessageEvent
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		assert.Equal(t, "Alice", msg.Speaker)
		assert.Equal(t, "-5", msg.Text)
		assert.True(t, strings.HasPrefix(string(msg.Indicator), "below"),
			"indicator %q should point below", msg.Indicator)
	}
}

func TestWebsocketRejectsBadToken(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	rr := ts.request(http.MethodPost, "/api/v1/sessions/game-1", createBody("Alice", "Bob"), testOwnerKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	wsURL := strings.Replace(server.URL, "http://", "ws://", 1) +
		"/api/v1/sessions/game-1/ws?token=bogus"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	if conn != nil {
		_ = conn.Close()
	}
}
