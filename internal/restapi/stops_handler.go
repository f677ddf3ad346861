package restapi

import (
	"net/http"

	"github.com/ia560/busplanner/gtfsdb"
	"github.com/ia560/busplanner/internal/models"
	"github.com/ia560/busplanner/internal/schedule"
	"github.com/ia560/busplanner/internal/utils"
)

// stopsHandler lists every stop, or with day set only the stops that have a
// timed visit on that day.
func (api *RestAPI) stopsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fieldErrors := utils.FieldErrors{}
	day := utils.ParseDayParam(q, "day", schedule.Monday, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	var (
		stops []gtfsdb.StopRecord
		err   error
	)
	if q.Get("day") == "" {
		stops = api.GtfsManager.Stops()
	} else {
		stops, err = api.GtfsManager.StopsForDay(r.Context(), day)
	}
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(models.NewStopModels(stops), models.NewEmptyReferences(), false, api.Clock))
}

const (
	defaultSearchRadius = 500.0
	defaultMaxStops     = 100
	maxSearchRadius     = 50000.0
)

// stopsForLocationHandler lists stops within radius meters of lat/lon,
// closest first.
func (api *RestAPI) stopsForLocationHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fieldErrors := utils.FieldErrors{}
	lat := utils.ParseRequiredFloatParam(q, "lat", fieldErrors)
	lon := utils.ParseRequiredFloatParam(q, "lon", fieldErrors)
	radius := utils.ParseFloatParam(q, "radius", defaultSearchRadius, fieldErrors)
	maxCount := utils.ParseIntParam(q, "maxCount", defaultMaxStops, fieldErrors)
	if len(fieldErrors) == 0 {
		utils.ValidateLocation(lat, lon, radius, fieldErrors)
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	radius = min(radius, maxSearchRadius)
	if maxCount == 0 || maxCount > defaultMaxStops {
		maxCount = defaultMaxStops
	}

	// Ask for one more to learn whether the list was cut.
	found := api.GtfsManager.StopsNear(lat, lon, radius, maxCount+1)
	limitExceeded := len(found) > maxCount
	if limitExceeded {
		found = found[:maxCount]
	}

	list := make([]models.StopModel, 0, len(found))
	for _, sd := range found {
		m := models.NewStopModel(sd.Stop)
		distance := sd.Distance
		m.Distance = &distance
		list = append(list, m)
	}

	api.sendResponse(w, r, models.NewListResponse(list, models.NewEmptyReferences(), limitExceeded, api.Clock))
}
