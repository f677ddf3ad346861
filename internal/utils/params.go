package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ia560/busplanner/internal/schedule"
)

// FieldErrors collects validation messages per query parameter.
type FieldErrors map[string][]string

// Add records msg against key.
func (fe FieldErrors) Add(key, msg string) {
	fe[key] = append(fe[key], msg)
}

func invalidValue(key string) string {
	return fmt.Sprintf("Invalid field value for field %q.", key)
}

// maxStopNameLength bounds stop names accepted from clients.
const maxStopNameLength = 256

// ParseStopParam reads a required stop name.
func ParseStopParam(params url.Values, key string, fieldErrors FieldErrors) schedule.StopID {
	val := strings.TrimSpace(params.Get(key))
	switch {
	case val == "":
		fieldErrors.Add(key, fmt.Sprintf("Missing required field %q.", key))
	case len(val) > maxStopNameLength:
		fieldErrors.Add(key, fmt.Sprintf("Field %q must be at most %d characters.", key, maxStopNameLength))
	}
	return schedule.StopID(val)
}

// ParseFloatParam reads an optional float. A missing key yields def.
func ParseFloatParam(params url.Values, key string, def float64, fieldErrors FieldErrors) float64 {
	val := params.Get(key)
	if val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		fieldErrors.Add(key, invalidValue(key))
		return def
	}
	return f
}

// ParseRequiredFloatParam reads a float that must be present.
func ParseRequiredFloatParam(params url.Values, key string, fieldErrors FieldErrors) float64 {
	if params.Get(key) == "" {
		fieldErrors.Add(key, fmt.Sprintf("Missing required field %q.", key))
		return 0
	}
	return ParseFloatParam(params, key, 0, fieldErrors)
}

// ParseIntParam reads an optional non-negative integer. A missing key
// yields def.
func ParseIntParam(params url.Values, key string, def int, fieldErrors FieldErrors) int {
	val := params.Get(key)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		fieldErrors.Add(key, invalidValue(key))
		return def
	}
	return n
}

// ParseDayParam reads a weekday name. A missing key yields def.
func ParseDayParam(params url.Values, key string, def schedule.Weekday, fieldErrors FieldErrors) schedule.Weekday {
	val := params.Get(key)
	if val == "" {
		return def
	}
	day, err := schedule.ParseWeekday(val)
	if err != nil {
		fieldErrors.Add(key, invalidValue(key))
		return def
	}
	return day
}

// ParseTimeParam reads an optional time of day. "now" resolves to now. The
// second result is false when the key is absent or invalid.
func ParseTimeParam(params url.Values, key string, now schedule.TimeOfDay, fieldErrors FieldErrors) (schedule.TimeOfDay, bool) {
	val := strings.TrimSpace(params.Get(key))
	if val == "" {
		return schedule.NoTime, false
	}
	if strings.EqualFold(val, "now") {
		return now, true
	}
	t, err := schedule.ParseTimeOfDay(val)
	if err != nil {
		fieldErrors.Add(key, invalidValue(key))
		return schedule.NoTime, false
	}
	return t, true
}

// ValidateLocation checks a coordinate pair and search radius.
func ValidateLocation(lat, lon, radius float64, fieldErrors FieldErrors) {
	if lat < -90 || lat > 90 {
		fieldErrors.Add("lat", "Latitude must be between -90 and 90.")
	}
	if lon < -180 || lon > 180 {
		fieldErrors.Add("lon", "Longitude must be between -180 and 180.")
	}
	if radius <= 0 {
		fieldErrors.Add("radius", "Radius must be positive.")
	}
}
