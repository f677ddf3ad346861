package restapi

import (
	"net/http"

	"github.com/ia560/busplanner/internal/models"
	"github.com/ia560/busplanner/internal/utils"
)

func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	stops := api.GtfsManager.Stops()

	points := make([][2]float64, 0, len(stops))
	for _, s := range stops {
		if s.HasLocation() {
			points = append(points, [2]float64{*s.Lat, *s.Lon})
		}
	}

	entry := models.ConfigModel{
		Id:              "busplanner",
		Name:            "Bus Journey Planner",
		Environment:     api.Config.Env.String(),
		ScheduleSource:  api.GtfsConfig.ScheduleURL,
		StopCount:       len(stops),
		ExclusionRules:  len(api.GtfsConfig.ExclusionRules),
		DeparturesLimit: api.DeparturesLimit(),
	}
	if api.Location != nil {
		entry.Timezone = api.Location.String()
	}
	if updated := api.GtfsManager.LastUpdated(); !updated.IsZero() {
		entry.LastUpdated = updated.UnixMilli()
	}
	if bounds, ok := utils.BoundsOf(points); ok {
		entry.Bounds = &bounds
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences(), api.Clock))
}
