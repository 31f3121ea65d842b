package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestPingReportsBuildInfo(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	h := NewPingHandler(slog.Default(), nil)
	require.NoError(t, h.Ping(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, body["version"])
}

// Readiness degrades to liveness when no pool is wired, as in tests.
func TestHealthWithoutPool(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/health", nil)
	rec := httptest.NewRecorder()

	h := NewPingHandler(slog.Default(), nil)
	require.NoError(t, h.Health(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)
}
