package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/application/command"
	"github.com/focushub/pomodoro-hub/internal/application/query"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/auth"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/persistence/memory"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
	"github.com/focushub/pomodoro-hub/pkg/userlock"
)

// newTestServer wires a server on in-memory storage without caches.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.Default()
	clock := timeutil.SystemClock{}
	store := memory.NewProgressStore()
	users := memory.NewUserRepository()

	tokens, err := auth.NewTokenManager("test-secret", 0, clock)
	require.NoError(t, err)

	srv := NewServer(Config{EnableCORS: true, AllowedOrigins: []string{"*"}}, Dependencies{
		RecordCompletionHandler: command.NewRecordCompletionHandler(store, userlock.New(), clock, nil, log),
		RegisterUserHandler:     command.NewRegisterUserHandler(users, clock, nil, log),
		LoginUserHandler:        command.NewLoginUserHandler(users, tokens, clock, log),
		GetStatsHandler:         query.NewGetStatsHandler(store, nil, log),
		GetXPProgressHandler:    query.NewGetXPProgressHandler(store, log),
		GetChartDataHandler:     query.NewGetChartDataHandler(store, nil, clock, log),
		GetLeaderboardHandler:   query.NewGetLeaderboardHandler(nil, store, users, log),
		Tokens:                  tokens,
		Logger:                  log,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, token string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data
}

// registerAndLogin creates an account and returns its ID and bearer token.
func registerAndLogin(t *testing.T, ts *httptest.Server, username string) (string, string) {
	t.Helper()

	resp := postJSON(t, ts.URL+"/api/v1/users", "", map[string]string{
		"username": username,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	userID := decodeData(t, resp)["user_id"].(string)

	resp = postJSON(t, ts.URL+"/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decodeData(t, resp)["token"].(string)

	return userID, token
}

func TestServer_RegisterLoginCompleteFlow(t *testing.T) {
	ts := newTestServer(t)
	userID, token := registerAndLogin(t, ts, "alice")

	resp := postJSON(t, fmt.Sprintf("%s/api/v1/users/%s/completions", ts.URL, userID), token,
		map[string]int{"focus_duration_seconds": 1500})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	assert.Equal(t, float64(50), data["xp_gained"])
	assert.Equal(t, float64(50), data["total_xp"])
	assert.Equal(t, float64(1), data["current_streak"])

	achievements := data["new_achievements"].([]interface{})
	require.Len(t, achievements, 1)
	first := achievements[0].(map[string]interface{})
	assert.Equal(t, "first_session", first["id"])
}

func TestServer_RecordCompletion_RequiresToken(t *testing.T) {
	ts := newTestServer(t)
	userID, token := registerAndLogin(t, ts, "bob")

	// No token at all.
	resp := postJSON(t, fmt.Sprintf("%s/api/v1/users/%s/completions", ts.URL, userID), "",
		map[string]int{"focus_duration_seconds": 1500})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Valid token, someone else's user ID.
	resp = postJSON(t, ts.URL+"/api/v1/users/other-user/completions", token,
		map[string]int{"focus_duration_seconds": 1500})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Garbage token.
	resp = postJSON(t, fmt.Sprintf("%s/api/v1/users/%s/completions", ts.URL, userID), "not-a-token",
		map[string]int{"focus_duration_seconds": 1500})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_Login_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "carol")

	resp := postJSON(t, ts.URL+"/api/v1/auth/login", "", map[string]string{
		"username": "carol",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_Register_DuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "dave")

	resp := postJSON(t, ts.URL+"/api/v1/users", "", map[string]string{
		"username": "dave",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_GetStats_UnknownUserGetsZeroView(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/users/nobody/stats")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	assert.Equal(t, float64(1), data["level"])
	assert.Equal(t, float64(0), data["total_xp"])
	assert.Empty(t, data["achievements"])
}

func TestServer_GetStats_LocalizesAchievements(t *testing.T) {
	ts := newTestServer(t)
	userID, token := registerAndLogin(t, ts, "erin")

	resp := postJSON(t, fmt.Sprintf("%s/api/v1/users/%s/completions", ts.URL, userID), token,
		map[string]int{"focus_duration_seconds": 1500})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/v1/users/%s/stats", ts.URL, userID), nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "ja")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	achievements := data["achievements"].([]interface{})
	require.NotEmpty(t, achievements)
	first := achievements[0].(map[string]interface{})
	assert.Equal(t, "初集中", first["name"])
}

func TestServer_GetCharts_RejectsUnknownPeriod(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/users/somebody/charts?period=yearly")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_Leaderboard_FallsBackToStore(t *testing.T) {
	ts := newTestServer(t)
	userID, token := registerAndLogin(t, ts, "frank")

	resp := postJSON(t, fmt.Sprintf("%s/api/v1/users/%s/completions", ts.URL, userID), token,
		map[string]int{"focus_duration_seconds": 1500})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/v1/leaderboard?limit=10")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	assert.Equal(t, float64(1), data["count"])

	entries := data["entries"].([]interface{})
	require.Len(t, entries, 1)
	top := entries[0].(map[string]interface{})
	assert.Equal(t, "frank", top["username"])
	assert.Equal(t, float64(50), top["total_xp"])
	assert.Equal(t, float64(1), top["rank"])
}

func TestServer_HealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health", "/healthz", "/ready", "/live"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestServer_UnknownEndpointReturns404(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v2/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
