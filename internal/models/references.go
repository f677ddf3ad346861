package models

// ReferencesModel carries the objects an entry or list refers to by name.
type ReferencesModel struct {
	Routes []string    `json:"routes"`
	Stops  []StopModel `json:"stops"`
}

// NewEmptyReferences returns references with empty, non-nil slices.
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Routes: []string{},
		Stops:  []StopModel{},
	}
}
