package restapi

import (
	"context"
	"net/http"

	"github.com/ia560/busplanner/internal/planner"
	"github.com/ia560/busplanner/internal/schedule"
	"github.com/ia560/busplanner/internal/timegraph"
	"github.com/ia560/busplanner/internal/utils"
)

// planRequest holds the parameters shared by the planning endpoints.
type planRequest struct {
	from     schedule.StopID
	to       schedule.StopID
	day      schedule.Weekday
	depart   schedule.TimeOfDay
	timed    bool
	strategy planner.Strategy
}

// parsePlanRequest reads from, to, day, time and strategy. day defaults to
// the current service day; time "now" means the current service time.
func (api *RestAPI) parsePlanRequest(r *http.Request, fieldErrors utils.FieldErrors) planRequest {
	q := r.URL.Query()
	today, now := api.ServiceMoment()

	req := planRequest{
		from: utils.ParseStopParam(q, "from", fieldErrors),
		to:   utils.ParseStopParam(q, "to", fieldErrors),
		day:  utils.ParseDayParam(q, "day", today, fieldErrors),
	}
	req.depart, req.timed = utils.ParseTimeParam(q, "time", now, fieldErrors)

	strategy, err := planner.ParseStrategy(q.Get("strategy"))
	if err != nil {
		fieldErrors.Add("strategy", `Field "strategy" must be "exhaustive" or "multi_source".`)
	}
	req.strategy = strategy
	return req
}

func (req planRequest) query() planner.Query {
	if req.timed {
		return planner.After(req.from, req.to, req.depart)
	}
	return planner.AnyTime(req.from, req.to)
}

func (api *RestAPI) plannerOptions(req planRequest) []planner.Option {
	return []planner.Option{
		planner.WithStrategy(req.strategy),
		planner.WithLogger(api.Logger),
	}
}

// graphFor builds the graph for day, failing fast on a cancelled request.
func (api *RestAPI) graphFor(ctx context.Context, day schedule.Weekday) (*timegraph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return api.GtfsManager.BuildGraph(ctx, day)
}
