package restapi

import (
	"errors"
	"net/http"

	"github.com/ia560/busplanner/internal/models"
	"github.com/ia560/busplanner/internal/planner"
	"github.com/ia560/busplanner/internal/utils"
)

// roundTripHandler plans from->to and to->from as two independent queries
// on the same day. time applies to the outbound leg and returnTime to the
// return leg. A leg without an itinerary is reported inside the entry; the
// request fails only when neither leg has one.
func (api *RestAPI) roundTripHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := utils.FieldErrors{}
	req := api.parsePlanRequest(r, fieldErrors)
	_, now := api.ServiceMoment()
	returnTime, returnTimed := utils.ParseTimeParam(r.URL.Query(), "returnTime", now, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	g, err := api.graphFor(r.Context(), req.day)
	if err != nil {
		api.plannerErrorResponse(w, r, err)
		return
	}

	ret := planner.AnyTime(req.to, req.from)
	if returnTimed {
		ret = planner.After(req.to, req.from, returnTime)
	}
	rt := planner.RoundTrip(g, req.query(), ret, api.plannerOptions(req)...)

	for _, leg := range []struct {
		result *planner.PathResult
		err    error
	}{{rt.Outbound, rt.OutboundErr}, {rt.Return, rt.ReturnErr}} {
		runs := 0
		if leg.result != nil {
			runs = leg.result.SearchRuns
		}
		api.Metrics.RecordQuery("round_trip", queryOutcome(leg.err), runs)
	}

	if rt.Outbound == nil && rt.Return == nil {
		api.plannerErrorResponse(w, r, rt.Err())
		return
	}
	if err := rt.Err(); err != nil && !errors.Is(err, planner.ErrNoPath) && !errors.Is(err, planner.ErrUnknownStop) {
		api.serverErrorResponse(w, r, err)
		return
	}

	entry := models.NewRoundTripEntry(rt, req.day.String(), legError)
	if entry.Outbound != nil {
		entry.Outbound.Polyline = api.encodeSteps(entry.Outbound.Steps)
	}
	if entry.Return != nil {
		entry.Return.Polyline = api.encodeSteps(entry.Return.Steps)
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.references(entry.Outbound, entry.Return), api.Clock))
}
