package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readtrack/readtrack-server/internal/config"
	"github.com/readtrack/readtrack-server/internal/service"
)

func TestRecomputeStatistics_DisabledWithoutToken(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/admin/recompute-statistics", "X-Admin-Token: anything")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRecomputeStatistics_WrongToken(t *testing.T) {
	ts := setupTestServer(t, func(cfg *config.Config) {
		cfg.Admin.Token = "s3cret"
	})
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/admin/recompute-statistics", "X-Admin-Token: guess")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/admin/recompute-statistics")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRecomputeStatistics_RefreshesWindows(t *testing.T) {
	ts := setupTestServer(t, func(cfg *config.Config) {
		cfg.Admin.Token = "s3cret"
	})
	defer ts.cleanup()
	ts.createBooks(t, testCatalog()...)
	authHeader := ts.registerAndLogin(t, "alice")

	resp := ts.api.Get("/api/v1/start-reading-session/1/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	ts.clock.Advance(90 * time.Minute)
	resp = ts.api.Get("/api/v1/end-reading-session/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/admin/recompute-statistics", "X-Admin-Token: s3cret")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var report service.JobReport
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.RunID)

	resp = ts.api.Get("/api/v1/user-statistics/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	m := decodeMap(t, resp.Body.Bytes())
	assert.Equal(t, "1 hours, 30 min 0 sec", m["Last 7 days reading time"])
	assert.Equal(t, "1 hours, 30 min 0 sec", m["Last 30 days reading time"])
}
