package models

import (
	"net/http"

	"github.com/ia560/busplanner/internal/clock"
)

// ResponseModel is the envelope of every API response.
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

// EntryData wraps a single object.
type EntryData struct {
	Entry      interface{}     `json:"entry"`
	References ReferencesModel `json:"references"`
}

// ListData wraps a list of objects.
type ListData struct {
	LimitExceeded bool            `json:"limitExceeded"`
	List          interface{}     `json:"list"`
	OutOfRange    bool            `json:"outOfRange"`
	References    ReferencesModel `json:"references"`
}

// ResponseCurrentTime is the currentTime field of a response, in Unix
// milliseconds.
func ResponseCurrentTime(c clock.Clock) int64 {
	if c == nil {
		return clock.RealClock{}.NowUnixMilli()
	}
	return c.NowUnixMilli()
}

// NewOKResponse wraps data in a 200 envelope.
func NewOKResponse(data interface{}, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        http.StatusOK,
		CurrentTime: ResponseCurrentTime(c),
		Data:        data,
		Text:        "OK",
		Version:     2,
	}
}

// NewEntryResponse returns an OK response holding one entry.
func NewEntryResponse(entry interface{}, references ReferencesModel, c clock.Clock) ResponseModel {
	return NewOKResponse(EntryData{Entry: entry, References: references}, c)
}

// NewListResponse returns an OK response holding a list.
func NewListResponse(list interface{}, references ReferencesModel, limitExceeded bool, c clock.Clock) ResponseModel {
	return NewOKResponse(ListData{
		LimitExceeded: limitExceeded,
		List:          list,
		References:    references,
	}, c)
}
