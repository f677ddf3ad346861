package clock

import (
	"time"

	"github.com/ia560/busplanner/internal/schedule"
)

// ServiceMoment returns the weekday and time of day of c's current time in
// loc. A nil loc means UTC.
func ServiceMoment(c Clock, loc *time.Location) (schedule.Weekday, schedule.TimeOfDay) {
	if loc == nil {
		loc = time.UTC
	}
	now := c.Now().In(loc)
	tod := schedule.TimeOfDay(now.Hour()*3600 + now.Minute()*60 + now.Second())
	return schedule.WeekdayOf(now), tod
}
