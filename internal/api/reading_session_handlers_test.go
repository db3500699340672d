package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readtrack/readtrack-server/internal/service"
)

func TestReadingSessionEndpoints_RequireAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	paths := []string{
		"/api/v1/start-reading-session/1/",
		"/api/v1/end-reading-session/",
		"/api/v1/reading-sessions/",
		"/api/v1/user-statistics/",
		"/api/v1/book-reading-statistics/1/",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp := ts.api.Get(path)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
		})
	}
}

func TestStartReadingSession_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()
	ts.createBooks(t, testCatalog()...)
	authHeader := ts.registerAndLogin(t, "alice")

	message := func(path string) string {
		t.Helper()
		resp := ts.api.Get(path, authHeader)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		m := decodeMap(t, resp.Body.Bytes())
		require.Contains(t, m, "message")
		return m["message"].(string)
	}

	assert.Equal(t, service.MsgSessionStarted, message("/api/v1/start-reading-session/1/"))
	assert.Equal(t, service.MsgSessionActive, message("/api/v1/start-reading-session/1/"))

	ts.clock.Advance(30 * time.Minute)
	assert.Equal(t, service.MsgSessionSwitched, message("/api/v1/start-reading-session/2/"))

	ts.clock.Advance(15 * time.Minute)
	assert.Equal(t, service.MsgSessionEnded, message("/api/v1/end-reading-session/"))
	assert.Equal(t, service.MsgNothingToEnd, message("/api/v1/end-reading-session/"))

	resp := ts.api.Get("/api/v1/reading-sessions/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	var sessions []ReadingSessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sessions))
	require.Len(t, sessions, 2)
	assert.Equal(t, int64(2), sessions[0].BookID)
	assert.Equal(t, "15 min 0 sec", sessions[0].Duration)
	assert.Equal(t, int64(900), sessions[0].DurationSeconds)
	assert.False(t, sessions[0].Active)
	assert.Equal(t, int64(1), sessions[1].BookID)
	assert.Equal(t, "30 min 0 sec", sessions[1].Duration)
}

func TestStartReadingSession_UnknownBook(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()
	authHeader := ts.registerAndLogin(t, "alice")

	resp := ts.api.Get("/api/v1/start-reading-session/42/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"Error": "There is no book with this ID"}`, resp.Body.String())
}

func TestReadingSessions_IsolatedPerUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()
	ts.createBooks(t, testCatalog()...)
	alice := ts.registerAndLogin(t, "alice")
	bob := ts.registerAndLogin(t, "bob")

	resp := ts.api.Get("/api/v1/start-reading-session/1/", alice)
	require.Equal(t, http.StatusOK, resp.Code)

	// Bob has nothing open even though Alice does.
	resp = ts.api.Get("/api/v1/end-reading-session/", bob)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"message": "`+service.MsgNothingToEnd+`"}`, resp.Body.String())

	resp = ts.api.Get("/api/v1/reading-sessions/", bob)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
}
