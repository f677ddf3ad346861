package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/config.json?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, "busplanner", entry["id"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "UTC", entry["timezone"])
	assert.Equal(t, float64(4), entry["stopCount"])
	assert.Equal(t, float64(5), entry["departuresLimit"])
	assert.Equal(t, float64(0), entry["exclusionRules"])
	assert.Contains(t, entry["scheduleSource"], "ames.csv")
	assert.NotZero(t, entry["lastUpdated"])

	bounds, ok := entry["bounds"].(map[string]interface{})
	require.True(t, ok, "bounds missing")
	assert.InDelta(t, 41.9920, bounds["minLat"], 1e-6)
	assert.InDelta(t, 42.0445, bounds["maxLat"], 1e-6)
}
