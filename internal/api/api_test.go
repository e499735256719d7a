package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demesup/awale/internal/api"
	"github.com/demesup/awale/internal/api/apierr"
	"github.com/demesup/awale/internal/api/response"
	"github.com/demesup/awale/internal/api/ws"
	"github.com/demesup/awale/internal/factory"
	"github.com/demesup/awale/internal/protocol"
	"github.com/demesup/awale/internal/testutil"
)

// testServer wires the status API and gateway over a test app
type testServer struct {
	app     *factory.TestApp
	gateway *ws.Gateway
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	logger := testutil.NopLogger()
	gateway := ws.NewGateway(ws.DefaultConfig(), app.Hub, app.Dispatcher, app.SessionConfig, app.Random, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = gateway.Shutdown(ctx)
	})

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Registry:       app.Registry,
		GameController: app.GameController,
		Gateway:        gateway,
	})

	return &testServer{app: app, gateway: gateway, handler: router}
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, handle string) {
	t.Helper()
	_, err := ts.app.Registry.Register(context.Background(), handle, "pw", "c-"+handle)
	require.NoError(t, err)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	rr := ts.get("/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Health
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Players)
	assert.Equal(t, 1, resp.Online)
	assert.Equal(t, 0, resp.Games)
}

func TestOnlinePlayers(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get("/api/v1/players/online")
	var empty response.OnlinePlayers
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&empty))
	assert.Equal(t, []string{}, empty.Players)

	ts.register(t, "bob")
	ts.register(t, "alice")
	ts.app.Registry.Logout(context.Background(), "bob")

	rr = ts.get("/api/v1/players/online")
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp response.OnlinePlayers
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, []string{"alice"}, resp.Players)
	assert.Equal(t, 1, resp.Count)
}

func TestPlayerProfile(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")
	_, err := ts.app.SocialService.UpdateBio(context.Background(), "alice", "hello")
	require.NoError(t, err)

	rr := ts.get("/api/v1/players/alice")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "credential")

	var resp response.Player
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.Handle)
	assert.True(t, resp.Online)
	assert.Equal(t, "public", resp.Privacy)
	assert.Equal(t, "hello", resp.Bio)
	assert.False(t, resp.InGame)
}

func TestPlayerNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get("/api/v1/players/ghost")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, apierr.CodePlayerNotFound, resp.Error.Code)
}

func TestGames(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.register(t, "alice")
	ts.register(t, "bob")
	ts.app.MockRandom.QueueID("game-1")

	_, err := ts.app.ChallengeController.Challenge(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, ts.app.ChallengeController.Accept(ctx, "bob"))

	rr := ts.get("/api/v1/games")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Games
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Games, 1)
	g := resp.Games[0]
	assert.Equal(t, "game-1", g.ID)
	assert.Equal(t, "alice", g.Player1.Handle)
	assert.Equal(t, "bob", g.Player2.Handle)
	assert.Equal(t, []int{4, 4, 4, 4, 4, 4}, g.Player1.Pits)
	assert.Equal(t, "alice", g.CurrentTurn)
	assert.Equal(t, 0, g.ObserverCount)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestWebSocketSession(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() string {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		return string(data)
	}

	assert.Contains(t, read(), protocol.WelcomeBanner)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("REGISTER alice pw")))
	assert.Contains(t, read(), "Registration successful! Welcome, alice.")

	p, ok := ts.app.Registry.Lookup("alice")
	require.True(t, ok)
	assert.True(t, p.Online)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("LOGOUT")))
	assert.Equal(t, protocol.GoodbyeLine, read())

	assert.Eventually(t, func() bool {
		p, ok := ts.app.Registry.Lookup("alice")
		return ok && !p.Online
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGatewayShutdownLogsOut(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("REGISTER bob pw")))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ts.gateway.Shutdown(ctx))

	p, ok := ts.app.Registry.Lookup("bob")
	require.True(t, ok)
	assert.False(t, p.Online)
}
