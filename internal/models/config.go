package models

import "github.com/ia560/busplanner/internal/utils"

// ConfigModel describes the running planner.
type ConfigModel struct {
	Id              string                  `json:"id"`
	Name            string                  `json:"name"`
	Environment     string                  `json:"environment"`
	Timezone        string                  `json:"timezone"`
	ScheduleSource  string                  `json:"scheduleSource"`
	LastUpdated     int64                   `json:"lastUpdated"`
	StopCount       int                     `json:"stopCount"`
	Bounds          *utils.CoordinateBounds `json:"bounds,omitempty"`
	ExclusionRules  int                     `json:"exclusionRules"`
	DeparturesLimit int                     `json:"departuresLimit"`
}
