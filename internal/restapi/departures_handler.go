package restapi

import (
	"net/http"

	"github.com/ia560/busplanner/internal/models"
	"github.com/ia560/busplanner/internal/planner"
	"github.com/ia560/busplanner/internal/utils"
)

// departuresHandler lists one itinerary per distinct departure from the
// origin, earliest first.
func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := utils.FieldErrors{}
	req := api.parsePlanRequest(r, fieldErrors)
	maxLimit := api.DeparturesLimit()
	limit := utils.ParseIntParam(r.URL.Query(), "limit", maxLimit, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if limit == 0 || limit > maxLimit {
		limit = maxLimit
	}

	g, err := api.graphFor(r.Context(), req.day)
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	results, err := planner.FindAllDepartures(g, req.query(), limit, api.plannerOptions(req)...)
	runs := 0
	for _, res := range results {
		runs += res.SearchRuns
	}
	api.Metrics.RecordQuery("departures", queryOutcome(err), runs)
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	// The limit caps departures tried, so it cut the list short exactly when
	// the origin has more departures than that.
	departures, err := planner.CountDepartures(g, req.query())
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}
	limitExceeded := departures > limit

	list := make([]models.PlanEntry, 0, len(results))
	refs := make([]*models.PlanEntry, 0, len(results))
	for _, res := range results {
		entry := models.NewPlanEntry(res, req.day.String())
		entry.Polyline = api.encodeSteps(entry.Steps)
		list = append(list, entry)
	}
	for i := range list {
		refs = append(refs, &list[i])
	}

	api.sendResponse(w, r, models.NewListResponse(list, api.references(refs...), limitExceeded, api.Clock))
}
