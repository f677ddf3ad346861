package restapi

import (
	"net/http"

	"github.com/ia560/busplanner/internal/models"
	"github.com/ia560/busplanner/internal/planner"
	"github.com/ia560/busplanner/internal/utils"
)

// planHandler answers a one-way query with the fastest itinerary.
func (api *RestAPI) planHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := utils.FieldErrors{}
	req := api.parsePlanRequest(r, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	g, err := api.graphFor(r.Context(), req.day)
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	result, err := planner.FindPath(g, req.query(), api.plannerOptions(req)...)
	runs := 0
	if result != nil {
		runs = result.SearchRuns
	}
	api.Metrics.RecordQuery("plan", queryOutcome(err), runs)
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	entry := models.NewPlanEntry(result, req.day.String())
	entry.Polyline = api.encodeSteps(entry.Steps)
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.references(&entry), api.Clock))
}
