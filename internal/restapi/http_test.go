package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ia560/busplanner/internal/app"
	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/clock"
	"github.com/ia560/busplanner/internal/gtfs"
	"github.com/ia560/busplanner/internal/logging"
	"github.com/ia560/busplanner/internal/metrics"
	"github.com/ia560/busplanner/internal/models"
)

// mondayMorning is 07:30 on a Monday.
var mondayMorning = time.Date(2026, time.October, 19, 7, 30, 0, 0, time.UTC)

// createTestApi returns a RestAPI serving testdata/ames.csv with its clock
// stopped at mondayMorning.
func createTestApi(t *testing.T) *RestAPI {
	return createTestApiWithClock(t, clock.NewMockClock(mondayMorning))
}

func createTestApiWithClock(t *testing.T, c clock.Clock) *RestAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gtfsConfig := gtfs.Config{
		ScheduleURL: models.GetFixturePath(t, "ames.csv"),
		DataPath:    ":memory:",
		Env:         appconf.Test,
	}
	m := metrics.New()
	manager, err := gtfs.InitManager(context.Background(), gtfsConfig,
		gtfs.WithMetrics(m), gtfs.WithLogger(logger))
	require.NoError(t, err)

	application := &app.Application{
		Config: appconf.Config{
			Env:       appconf.Test,
			ApiKeys:   []string{"TEST"},
			RateLimit: 100,
		},
		GtfsConfig:  gtfsConfig,
		Rules:       &appconf.Rules{DeparturesLimit: 5},
		Logger:      logger,
		GtfsManager: manager,
		Clock:       c,
		Metrics:     m,
		Location:    time.UTC,
	}

	api := NewRestAPI(application)
	t.Cleanup(func() {
		api.Shutdown()
		manager.Shutdown()
	})
	return api
}

// serveAndRetrieveEndpoint serves a fresh test API and decodes the response
// to endpoint.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	resp, body := serveApiAndRetrieveBody(t, api, endpoint)

	var model models.ResponseModel
	require.NoError(t, json.Unmarshal(body, &model), string(body))
	return resp, model
}

func serveApiAndRetrieveBody(t *testing.T, api *RestAPI, endpoint string) (*http.Response, []byte) {
	t.Helper()

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(api.Handler(mux))
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body, api.Logger, "http_response_body")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// entryOf returns data.entry of a decoded response.
func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", model.Data)
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "entry is %T", data["entry"])
	return entry
}

// listOf returns data.list of a decoded response.
func listOf(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", model.Data)
	list, ok := data["list"].([]interface{})
	require.True(t, ok, "list is %T", data["list"])
	return list
}

// collectStrings reads the string field key of every object in list.
func collectStrings(t *testing.T, list []interface{}, key string) []string {
	t.Helper()
	out := make([]string, 0, len(list))
	for i, item := range list {
		object, ok := item.(map[string]interface{})
		require.True(t, ok, "item %d is %T", i, item)
		value, ok := object[key].(string)
		require.True(t, ok, "item %d key %q is %T", i, key, object[key])
		out = append(out, value)
	}
	return out
}
