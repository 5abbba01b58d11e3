package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"target-shooting/internal/config"
	"target-shooting/internal/scoring"
	"target-shooting/internal/store"
)

func TestHealthAndPoints(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())

	resp := doRequest(t, ts, "", http.MethodGet, "/api/health", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "memory", body["storage"])

	resp = doRequest(t, ts, "", http.MethodGet, "/api/points", nil)
	expectStatus(t, resp, http.StatusOK)
	var points struct {
		Targets int   `json:"targets"`
		Points  []int `json:"points"`
	}
	decodeInto(t, resp, &points)
	assert.Equal(t, 40, points.Targets)
	require.Len(t, points.Points, 40)
	assert.Equal(t, 2000, points.Points[0])
	assert.Equal(t, 200, points.Points[39])
}

func TestLogin(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())

	resp := doRequest(t, ts, "", http.MethodPost, "/api/login", map[string]string{
		"username": "  USER02 ",
		"password": "12345678",
	})
	expectStatus(t, resp, http.StatusOK)
	var access accessResponse
	decodeInto(t, resp, &access)
	assert.Equal(t, "user02", access.Username)
	assert.False(t, access.IsAdmin)
	assert.Equal(t, scoring.RoomFire, access.Room)
	assert.NotEmpty(t, access.Token)

	resp = doRequest(t, ts, "", http.MethodPost, "/api/login", map[string]string{
		"username": "user02",
		"password": "wrong",
	})
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = doRequest(t, ts, "", http.MethodPost, "/api/login", map[string]string{
		"username": "user09",
		"password": "12345678",
	})
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = doRequest(t, ts, "", http.MethodPost, "/api/login", map[string]string{})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestMeAndLogout(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())

	resp := doRequest(t, ts, "", http.MethodGet, "/api/me", nil)
	expectStatus(t, resp, http.StatusUnauthorized)

	token := login(t, ts, "user01")
	resp = doRequest(t, ts, token, http.MethodGet, "/api/me", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	assert.Equal(t, "user01", body["username"])
	assert.Equal(t, true, body["isAdmin"])

	resp = doRequest(t, ts, token, http.MethodPost, "/api/logout", nil)
	expectStatus(t, resp, http.StatusNoContent)

	resp = doRequest(t, ts, token, http.MethodGet, "/api/me", nil)
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestLoginRateLimited(t *testing.T) {
	cfg := newTestConfig()
	cfg.LoginRatePerMinute = 2
	_, ts := newTestServer(t, cfg)

	login(t, ts, "user01")
	login(t, ts, "user01")
	resp := doRequest(t, ts, "", http.MethodPost, "/api/login", map[string]string{
		"username": "user01",
		"password": "12345678",
	})
	expectStatus(t, resp, http.StatusTooManyRequests)
}

func TestCreateGame(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")

	resp := doRequest(t, ts, admin, http.MethodPost, "/api/games", map[string]any{
		"name":    "  ",
		"players": []string{"Ada", "", "Cy", " ", "Eve"},
	})
	expectStatus(t, resp, http.StatusCreated)
	var game scoring.Game
	decodeInto(t, resp, &game)
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, scoring.DefaultName, game.Name)
	assert.Equal(t, scoring.StatusRoom1, game.Status)
	assert.Equal(t, 1, game.Version)
	require.Len(t, game.Players, 5)
	assert.Equal(t, scoring.Player{ID: "p2", Name: "Player 2"}, game.Players[1])
	assert.Equal(t, "Player 4", game.Players[3].Name)

	resp = doRequest(t, ts, "", http.MethodGet, "/api/games/"+game.ID, nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestCreateGameValidation(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")

	resp := doRequest(t, ts, admin, http.MethodPost, "/api/games", map[string]any{
		"name":    "Short",
		"players": []string{"Ada", "Bob"},
	})
	expectStatus(t, resp, http.StatusBadRequest)
	assert.Equal(t, "exactly 5 players are required", decodeBody(t, resp)["error"])

	resp = doRequest(t, ts, admin, http.MethodPost, "/api/games", map[string]any{
		"name":    strings.Repeat("x", 81),
		"players": []string{"Ada", "Bob", "Cy", "Dee", "Eve"},
	})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")
	user := login(t, ts, "user02")
	gameID := createGame(t, ts, admin)
	payload := map[string]any{"name": "x", "players": []string{"a", "b", "c", "d", "e"}}

	resp := doRequest(t, ts, "", http.MethodPost, "/api/games", payload)
	expectStatus(t, resp, http.StatusUnauthorized)
	resp = doRequest(t, ts, user, http.MethodPost, "/api/games", payload)
	expectStatus(t, resp, http.StatusForbidden)
	resp = doRequest(t, ts, user, http.MethodPut, "/api/games/"+gameID, map[string]any{"name": "x"})
	expectStatus(t, resp, http.StatusForbidden)
	resp = doRequest(t, ts, user, http.MethodDelete, "/api/games", nil)
	expectStatus(t, resp, http.StatusForbidden)
	resp = doRequest(t, ts, user, http.MethodGet, "/api/games/"+gameID+"/totals", nil)
	expectStatus(t, resp, http.StatusForbidden)
}

func TestGetMissingGame(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())

	resp := doRequest(t, ts, "", http.MethodGet, "/api/games/missing", nil)
	expectStatus(t, resp, http.StatusNotFound)
	assert.Equal(t, "game not found", decodeBody(t, resp)["error"])

	token := login(t, ts, "user02")
	resp = recordHit(t, ts, token, "missing", "p1", 1)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestRecordHitOnce(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")
	fire := login(t, ts, "user02")
	gameID := createGame(t, ts, admin)

	resp := recordHit(t, ts, fire, gameID, "p1", 3)
	expectStatus(t, resp, http.StatusOK)
	var first hitResponse
	decodeInto(t, resp, &first)
	assert.True(t, first.Recorded)
	assert.Equal(t, 3000, scoring.TotalFor(first.Game, "p1", scoring.RoomNone))

	resp = recordHit(t, ts, fire, gameID, "p1", 3)
	expectStatus(t, resp, http.StatusOK)
	var second hitResponse
	decodeInto(t, resp, &second)
	assert.False(t, second.Recorded)
	assert.Equal(t, first.Game.Version, second.Game.Version)
	assert.Equal(t, 3000, scoring.TotalFor(second.Game, "p1", scoring.RoomNone))
}

func TestRecordHitRejections(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")
	fire := login(t, ts, "user02")
	water := login(t, ts, "user03")
	gameID := createGame(t, ts, admin)

	expectStatus(t, recordHit(t, ts, "", gameID, "p1", 1), http.StatusUnauthorized)
	expectStatus(t, recordHit(t, ts, water, gameID, "p1", 1), http.StatusForbidden)
	expectStatus(t, recordHit(t, ts, admin, gameID, "p1", 1), http.StatusOK)
	expectStatus(t, recordHit(t, ts, fire, gameID, "p6", 1), http.StatusBadRequest)
	expectStatus(t, recordHit(t, ts, fire, gameID, "p1", 0), http.StatusBadRequest)
	expectStatus(t, recordHit(t, ts, fire, gameID, "p1", 41), http.StatusBadRequest)
}

func TestFullGameFlow(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")
	fire := login(t, ts, "user02")
	water := login(t, ts, "user03")
	air := login(t, ts, "user04")
	gameID := createGame(t, ts, admin)

	expectStatus(t, recordHit(t, ts, fire, gameID, "p1", 3), http.StatusOK)

	resp := doRequest(t, ts, admin, http.MethodGet, "/api/games/"+gameID+"/leaderboard", nil)
	expectStatus(t, resp, http.StatusConflict)

	resp = doRequest(t, ts, water, http.MethodPost, "/api/games/"+gameID+"/complete-room", nil)
	expectStatus(t, resp, http.StatusForbidden)

	resp = doRequest(t, ts, fire, http.MethodPost, "/api/games/"+gameID+"/complete-room", nil)
	expectStatus(t, resp, http.StatusOK)
	var game scoring.Game
	decodeInto(t, resp, &game)
	assert.Equal(t, scoring.StatusRoom2, game.Status)
	assert.True(t, game.RoomCompletion.Room1)

	expectStatus(t, recordHit(t, ts, fire, gameID, "p2", 1), http.StatusForbidden)
	expectStatus(t, recordHit(t, ts, water, gameID, "p4", 1), http.StatusOK)
	resp = doRequest(t, ts, water, http.MethodPost, "/api/games/"+gameID+"/complete-room", nil)
	expectStatus(t, resp, http.StatusOK)

	expectStatus(t, recordHit(t, ts, air, gameID, "p3", 9), http.StatusOK)
	resp = doRequest(t, ts, air, http.MethodPost, "/api/games/"+gameID+"/complete-room", nil)
	expectStatus(t, resp, http.StatusOK)
	decodeInto(t, resp, &game)
	assert.Equal(t, scoring.StatusCompleted, game.Status)
	assert.Equal(t, scoring.RoomCompletion{Room1: true, Room2: true, Room3: true}, game.RoomCompletion)

	expectStatus(t, recordHit(t, ts, air, gameID, "p5", 1), http.StatusConflict)
	resp = doRequest(t, ts, air, http.MethodPost, "/api/games/"+gameID+"/complete-room", nil)
	expectStatus(t, resp, http.StatusConflict)

	resp = doRequest(t, ts, admin, http.MethodGet, "/api/games/"+gameID+"/leaderboard", nil)
	expectStatus(t, resp, http.StatusOK)
	var board struct {
		Standings []scoring.Standing `json:"standings"`
	}
	decodeInto(t, resp, &board)
	require.Len(t, board.Standings, 5)
	var order []string
	for _, s := range board.Standings {
		order = append(order, s.PlayerID)
	}
	assert.Equal(t, []string{"p1", "p4", "p3", "p2", "p5"}, order)
	assert.Equal(t, 3000, board.Standings[0].Total)
	assert.Equal(t, 2000, board.Standings[1].Rooms["room2"])

	resp = doRequest(t, ts, admin, http.MethodGet, "/api/games/"+gameID+"/totals", nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestUpdateGame(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")
	gameID := createGame(t, ts, admin)

	resp := doRequest(t, ts, admin, http.MethodPut, "/api/games/"+gameID, map[string]any{
		"name": "Renamed",
		"players": []scoring.Player{
			{ID: "p1", Name: "Ann"}, {ID: "p2", Name: "Bob"}, {ID: "p3", Name: "Cy"},
			{ID: "p4", Name: "Dee"}, {ID: "p5", Name: "Eve"},
		},
	})
	expectStatus(t, resp, http.StatusOK)
	var game scoring.Game
	decodeInto(t, resp, &game)
	assert.Equal(t, "Renamed", game.Name)
	assert.Equal(t, "Ann", game.Players[0].Name)
	assert.Equal(t, 2, game.Version)

	resp = doRequest(t, ts, admin, http.MethodPut, "/api/games/"+gameID, map[string]any{
		"status": "completed",
	})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = doRequest(t, ts, admin, http.MethodPut, "/api/games/"+gameID, map[string]any{
		"status": "room9",
	})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = doRequest(t, ts, admin, http.MethodPut, "/api/games/missing", map[string]any{"name": "x"})
	expectStatus(t, resp, http.StatusNotFound)
}

func TestUpdateGameStateOverride(t *testing.T) {
	cfg := newTestConfig()
	cfg.AllowStateOverride = true
	_, ts := newTestServer(t, cfg)
	admin := login(t, ts, "user01")
	gameID := createGame(t, ts, admin)

	resp := doRequest(t, ts, admin, http.MethodPut, "/api/games/"+gameID, map[string]any{
		"status":         "room2",
		"roomCompletion": scoring.RoomCompletion{Room1: true},
	})
	expectStatus(t, resp, http.StatusOK)
	var game scoring.Game
	decodeInto(t, resp, &game)
	assert.Equal(t, scoring.StatusRoom2, game.Status)

	resp = doRequest(t, ts, admin, http.MethodPut, "/api/games/"+gameID, map[string]any{
		"status":         "room1",
		"roomCompletion": scoring.RoomCompletion{},
	})
	expectStatus(t, resp, http.StatusConflict)

	resp = doRequest(t, ts, admin, http.MethodPut, "/api/games/"+gameID, map[string]any{
		"status": "room3",
	})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestDeleteGames(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")
	createGame(t, ts, admin)
	createGame(t, ts, admin)

	resp := doRequest(t, ts, admin, http.MethodDelete, "/api/games", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["deleted"])

	resp = doRequest(t, ts, "", http.MethodGet, "/api/games", nil)
	expectStatus(t, resp, http.StatusOK)
	var games []scoring.Game
	decodeInto(t, resp, &games)
	assert.Empty(t, games)
}

func TestConcurrentHitsAllPersist(t *testing.T) {
	cfg := newTestConfig()
	cfg.UpdateRetries = 20
	_, ts := newTestServer(t, cfg)
	admin := login(t, ts, "user01")
	fire := login(t, ts, "user02")
	gameID := createGame(t, ts, admin)

	players := []string{"p1", "p2", "p3", "p4", "p5"}
	var wg sync.WaitGroup
	statuses := make(chan int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := recordHit(t, ts, fire, gameID, players[i%5], i/5+1)
			statuses <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(statuses)
	for status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}

	resp := doRequest(t, ts, "", http.MethodGet, "/api/games/"+gameID, nil)
	expectStatus(t, resp, http.StatusOK)
	var game scoring.Game
	decodeInto(t, resp, &game)
	hits := 0
	for _, bucket := range game.Scores {
		hits += len(bucket.Entries)
	}
	assert.Equal(t, 10, hits)
	assert.Equal(t, 11, game.Version)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())
	admin := login(t, ts, "user01")
	createGame(t, ts, admin)

	resp := doRequest(t, ts, "", http.MethodGet, "/metrics", nil)
	expectStatus(t, resp, http.StatusOK)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "target_shooting_games_created_total 1")
	assert.Contains(t, string(data), `target_shooting_logins_total{result="accepted"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig())

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/games", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	cfg := newTestConfig()
	cfg.LoginRatePerMinute = 2
	_, ts := newTestServer(t, cfg)

	limited := 0
	for i := 1; i <= 5; i++ {
		body := bytes.NewReader([]byte(`{"username":"user01","password":"guess"}`))
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/login", body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 3, limited)
}

func TestNewRejectsInvalidTrustedProxies(t *testing.T) {
	cfg := newTestConfig()
	cfg.TrustedProxies = []string{"not-an-ip"}
	_, err := New(store.NewMemory(), nil, cfg, zap.NewNop())
	require.Error(t, err)
}

func TestNewRejectsMalformedAccessRooms(t *testing.T) {
	t.Setenv("ACCESS_ROOMS", "alice=1,bob=2")
	cfg := config.Load()
	cfg.StorageDriver = config.DriverMemory
	_, err := New(store.NewMemory(), nil, cfg, zap.NewNop())
	require.ErrorContains(t, err, "ACCESS_ROOMS")
}
