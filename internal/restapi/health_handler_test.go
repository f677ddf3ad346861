package restapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia560/busplanner/internal/app"
)

func healthOf(t *testing.T, api *RestAPI) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	api.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestHealthHandlerWithoutManager(t *testing.T) {
	code, resp := healthOf(t, &RestAPI{})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", resp.Status)

	code, _ = healthOf(t, &RestAPI{Application: &app.Application{}})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestHealthHandlerReturnsOK(t *testing.T) {
	api := createTestApi(t)

	resp, body := serveApiAndRetrieveBody(t, api, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestHealthHandlerNotReady(t *testing.T) {
	api := createTestApi(t)
	api.GtfsManager.MarkUnhealthy()

	code, resp := healthOf(t, api)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "starting", resp.Status)
}

func TestHealthHandlerDatabaseClosed(t *testing.T) {
	api := createTestApi(t)
	require.NoError(t, api.GtfsManager.GtfsDB.DB.Close())

	code, resp := healthOf(t, api)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "database connection failed", resp.Detail)
}

func TestMetricsEndpoint(t *testing.T) {
	api := createTestApi(t)
	serveApiAndRetrieveEndpoint(t, api, "/api/where/plan.json?key=TEST&from=Downtown&to=Mall&day=monday")

	resp, body := serveApiAndRetrieveBody(t, api, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `busplanner_path_queries_total{endpoint="plan",outcome="found"} 1`)
	assert.Contains(t, string(body), "busplanner_graph_build_duration_seconds")
}
