package models

import "github.com/ia560/busplanner/gtfsdb"

// StopModel is a stop as the API shows it.
type StopModel struct {
	Name     string   `json:"name"`
	Town     string   `json:"town"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Distance *float64 `json:"distance,omitempty"` // meters, location searches only
}

// NewStopModel converts a stored stop.
func NewStopModel(s gtfsdb.StopRecord) StopModel {
	return StopModel{
		Name: string(s.Name),
		Town: s.Town,
		Lat:  s.Lat,
		Lon:  s.Lon,
	}
}

// NewStopModels converts a list of stored stops, never returning nil.
func NewStopModels(stops []gtfsdb.StopRecord) []StopModel {
	out := make([]StopModel, 0, len(stops))
	for _, s := range stops {
		out = append(out, NewStopModel(s))
	}
	return out
}
