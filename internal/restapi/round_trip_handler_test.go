package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/round-trip.json?key=TEST&from=Downtown&to=Airport&day=monday&time=07:00&returnTime=16:00")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, float64(110), entry["totalMinutes"])
	assert.Equal(t, "Round-trip: 60 mins out, 50 mins back", entry["headline"])

	outbound := entry["outbound"].(map[string]interface{})
	assert.Equal(t, "Downtown", outbound["origin"])
	assert.Equal(t, "08:00 AM", outbound["departure"])

	back := entry["return"].(map[string]interface{})
	assert.Equal(t, "Airport", back["origin"])
	assert.Equal(t, "Downtown", back["destination"])
	assert.Equal(t, "05:00 PM", back["departure"])
	assert.Equal(t, "05:50 PM", back["arrival"])
	assert.NotContains(t, entry, "outboundError")
	assert.NotContains(t, entry, "returnError")
}

func TestRoundTripHandlerOneLegFails(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/round-trip.json?key=TEST&from=Downtown&to=Airport&day=monday&time=07:00&returnTime=18:00")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.NotNil(t, entry["outbound"])
	assert.Nil(t, entry["return"])
	returnErr := entry["returnError"].(map[string]interface{})
	assert.Equal(t, float64(http.StatusNotFound), returnErr["code"])
	assert.Equal(t, "no itinerary from Airport to Downtown after 06:00 PM", returnErr["text"])
	assert.Equal(t, float64(60), entry["totalMinutes"])
}

func TestRoundTripHandlerBothLegsFail(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t,
		"/api/where/round-trip.json?key=TEST&from=Downtown&to=Airport&day=monday&time=09:00&returnTime=18:00")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, model.Code)
}

func TestRoundTripHandlerValidatesReturnTime(t *testing.T) {
	api := createTestApi(t)
	resp, body := serveApiAndRetrieveBody(t, api,
		"/api/where/round-trip.json?key=TEST&from=Downtown&to=Airport&returnTime=later")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"returnTime"`)
}
