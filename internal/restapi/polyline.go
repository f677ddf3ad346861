package restapi

import (
	"github.com/twpayne/go-polyline"

	"github.com/ia560/busplanner/internal/itinerary"
	"github.com/ia560/busplanner/internal/models"
)

// encodeSteps returns the Google polyline through the stops of steps, or ""
// when any stop has no coordinates.
func (api *RestAPI) encodeSteps(steps []itinerary.DisplayStep) string {
	coords := make([][]float64, 0, len(steps))
	for _, s := range steps {
		stop, ok := api.GtfsManager.FindStop(s.Stop)
		if !ok || !stop.HasLocation() {
			return ""
		}
		point := []float64{*stop.Lat, *stop.Lon}
		if n := len(coords); n > 0 && coords[n-1][0] == point[0] && coords[n-1][1] == point[1] {
			continue
		}
		coords = append(coords, point)
	}
	if len(coords) < 2 {
		return ""
	}
	return string(polyline.EncodeCoords(coords))
}

// references lists the routes and stops used by entries.
func (api *RestAPI) references(entries ...*models.PlanEntry) models.ReferencesModel {
	refs := models.NewEmptyReferences()
	seenRoutes := make(map[string]bool)
	seenStops := make(map[string]bool)

	for _, e := range entries {
		if e == nil {
			continue
		}
		for _, route := range e.Routes {
			if !seenRoutes[route] {
				seenRoutes[route] = true
				refs.Routes = append(refs.Routes, route)
			}
		}
		for _, step := range e.Steps {
			if seenStops[string(step.Stop)] {
				continue
			}
			seenStops[string(step.Stop)] = true
			if stop, ok := api.GtfsManager.FindStop(step.Stop); ok {
				refs.Stops = append(refs.Stops, models.NewStopModel(stop))
			}
		}
	}
	return refs
}
