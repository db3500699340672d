package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStatistics_TwoHourSession(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()
	ts.createBooks(t, testCatalog()...)
	authHeader := ts.registerAndLogin(t, "alice")

	resp := ts.api.Get("/api/v1/start-reading-session/1/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	ts.clock.Advance(2 * time.Hour)
	resp = ts.api.Get("/api/v1/end-reading-session/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/user-statistics/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{
		"Username": "alice",
		"First name": "Test",
		"Last name": "Reader",
		"Date joined": "2024-05-01 06:00 PM",
		"Total reading time": "2 hours, 0 min 0 sec",
		"Last 7 days reading time": "0 min 0 sec",
		"Last 30 days reading time": "0 min 0 sec"
	}`, resp.Body.String())

	resp = ts.api.Get("/api/v1/book-reading-statistics/1/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{
		"Book": {
			"id": 1,
			"title": "Dune",
			"author": "Frank Herbert",
			"year_published": 1965,
			"short_description": "Desert planet politics"
		},
		"Total reading time": "2 hours, 0 min 0 sec"
	}`, resp.Body.String())
}

func TestBookReadingStatistics_NeverRead(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()
	ts.createBooks(t, testCatalog()...)
	authHeader := ts.registerAndLogin(t, "alice")

	resp := ts.api.Get("/api/v1/book-reading-statistics/2/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	m := decodeMap(t, resp.Body.Bytes())
	assert.Equal(t, "0 min 0 sec", m["Total reading time"])
}

func TestBookReadingStatistics_UnknownBook(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()
	authHeader := ts.registerAndLogin(t, "alice")

	resp := ts.api.Get("/api/v1/book-reading-statistics/77/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"Error": "There is no book with this ID"}`, resp.Body.String())
}
