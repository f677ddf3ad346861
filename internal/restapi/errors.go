package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ia560/busplanner/internal/gtfs"
	"github.com/ia560/busplanner/internal/logging"
	"github.com/ia560/busplanner/internal/metrics"
	"github.com/ia560/busplanner/internal/models"
	"github.com/ia560/busplanner/internal/planner"
	"github.com/ia560/busplanner/internal/utils"
)

// invalidAPIKeyResponse answers with the version 1 envelope older
// OneBusAway clients expect for a bad key.
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.ResponseModel{
		Code:        http.StatusUnauthorized,
		CurrentTime: models.ResponseCurrentTime(api.Clock),
		Text:        "permission denied",
		Version:     1,
	})
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.Logger, "request failed", err,
		slog.String("path", r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())))
	api.sendError(w, r, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) unavailableResponse(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusServiceUnavailable, "schedule data is not loaded")
}

// validationErrorResponse sends a 400 listing the problems per parameter.
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors utils.FieldErrors) {
	response := struct {
		models.ResponseModel
		FieldErrors utils.FieldErrors `json:"fieldErrors"`
	}{
		ResponseModel: models.ResponseModel{
			Code:        http.StatusBadRequest,
			CurrentTime: models.ResponseCurrentTime(api.Clock),
			Text:        "invalid request parameters",
			Version:     2,
		},
		FieldErrors: fieldErrors,
	}

	setJSONResponseType(w)
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.Logger, "failed to encode validation error response", err)
	}
}

// plannerErrorResponse maps a planner or manager failure to a response.
func (api *RestAPI) plannerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, gtfs.ErrNotReady) {
		api.unavailableResponse(w, r)
		return
	}
	if le := legError(err); le != nil && le.Code == http.StatusNotFound {
		api.sendNotFound(w, r, le.Text)
		return
	}
	api.serverErrorResponse(w, r, err)
}

// legError is the API form of a failed planner query.
func legError(err error) *models.LegError {
	var unknown *planner.UnknownStopError
	var notFound *planner.NotFoundError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &unknown):
		return &models.LegError{
			Code: http.StatusNotFound,
			Text: fmt.Sprintf("unknown stop %q on %s", unknown.Stop, unknown.Day),
		}
	case errors.As(err, &notFound):
		text := fmt.Sprintf("no itinerary from %s to %s", notFound.Origin, notFound.Destination)
		if notFound.TimeConstrained {
			text += " after " + notFound.EarliestDepart.Format12()
		}
		return &models.LegError{Code: http.StatusNotFound, Text: text}
	case errors.Is(err, planner.ErrUnknownStop), errors.Is(err, planner.ErrNoPath):
		return &models.LegError{Code: http.StatusNotFound, Text: err.Error()}
	default:
		return &models.LegError{Code: http.StatusInternalServerError, Text: "internal server error"}
	}
}

// queryOutcome labels err for metrics.PathQueriesTotal.
func queryOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeFound
	case errors.Is(err, planner.ErrUnknownStop):
		return metrics.OutcomeUnknownStop
	case errors.Is(err, planner.ErrNoPath):
		return metrics.OutcomeNoPath
	default:
		return metrics.OutcomeError
	}
}
