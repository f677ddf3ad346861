package models

import "time"

// CurrentTimeModel is the entry of current-time.json. ServiceDay and
// ServiceTime give the moment in the planner's time zone.
type CurrentTimeModel struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
	ServiceDay   string `json:"serviceDay,omitempty"`
	ServiceTime  string `json:"serviceTime,omitempty"`
}

// NewCurrentTimeData builds the current-time entry for t.
func NewCurrentTimeData(t time.Time) EntryData {
	return EntryData{
		Entry: CurrentTimeModel{
			ReadableTime: t.Format(time.RFC3339),
			Time:         t.UnixMilli(),
		},
		References: NewEmptyReferences(),
	}
}
