package restapi

import (
	"net/http"

	"github.com/ia560/busplanner/internal/models"
)

// currentTimeHandler reports the server time and the service day and time
// used for "leave now" queries.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	if !api.GtfsManager.IsHealthy() {
		api.unavailableResponse(w, r)
		return
	}

	data := models.NewCurrentTimeData(api.Clock.Now())
	day, tod := api.ServiceMoment()
	entry := data.Entry.(models.CurrentTimeModel)
	entry.ServiceDay = day.String()
	entry.ServiceTime = tod.Format24()
	data.Entry = entry

	api.sendResponse(w, r, models.NewOKResponse(data, api.Clock))
}
