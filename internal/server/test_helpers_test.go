package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"target-shooting/internal/config"
	"target-shooting/internal/store"
)

func newTestConfig() config.Config {
	cfg := config.Default()
	cfg.StorageDriver = config.DriverMemory
	cfg.Env = "test"
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(store.NewMemory(), nil, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: srv.Handler()},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return srv, ts
}

func doRequest(t *testing.T, ts *httptest.Server, token, method, path string, payload any) *http.Response {
	t.Helper()
	body := bytes.NewReader(nil)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	decodeInto(t, resp, &body)
	return body
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode)
	}
}

func login(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()
	resp := doRequest(t, ts, "", http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": "12345678",
	})
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	token, ok := body["token"].(string)
	if !ok || token == "" {
		t.Fatalf("expected token, got %#v", body["token"])
	}
	return token
}

func createGame(t *testing.T, ts *httptest.Server, adminToken string) string {
	t.Helper()
	resp := doRequest(t, ts, adminToken, http.MethodPost, "/api/games", map[string]any{
		"name":    "Friday Range",
		"players": []string{"Ada", "Bob", "Cy", "Dee", "Eve"},
	})
	expectStatus(t, resp, http.StatusCreated)
	body := decodeBody(t, resp)
	return body["id"].(string)
}

func recordHit(t *testing.T, ts *httptest.Server, token, gameID, playerID string, objectIndex int) *http.Response {
	t.Helper()
	return doRequest(t, ts, token, http.MethodPost, "/api/games/"+gameID+"/hits", map[string]any{
		"playerId":    playerID,
		"objectIndex": objectIndex,
	})
}
