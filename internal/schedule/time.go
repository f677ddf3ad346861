package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 24 * secondsPerHour

	// MinutesPerDay is the length of the service clock in minutes.
	MinutesPerDay = 1440
)

// TimeOfDay is a scheduled time expressed in seconds since the start of the
// service day. Values past 24:00:00 are valid and describe trips that run
// after midnight; Clock folds them back onto a 24-hour clock.
type TimeOfDay int

// NoTime marks a visit whose depart time is missing or could not be parsed.
const NoTime TimeOfDay = -1

// NewTimeOfDay returns the TimeOfDay for the given hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*secondsPerHour + minute*secondsPerMinute)
}

// Valid reports whether t holds a usable time.
func (t TimeOfDay) Valid() bool {
	return t >= 0
}

// Clock returns t normalised to [00:00, 24:00).
func (t TimeOfDay) Clock() TimeOfDay {
	if !t.Valid() {
		return t
	}
	return t % secondsPerDay
}

// Minutes returns t as fractional minutes since the start of the service day.
func (t TimeOfDay) Minutes() float64 {
	return float64(t) / secondsPerMinute
}

// Format24 renders the normalised clock time as "15:04".
func (t TimeOfDay) Format24() string {
	if !t.Valid() {
		return "-"
	}
	c := int(t.Clock())
	return fmt.Sprintf("%02d:%02d", c/secondsPerHour, (c%secondsPerHour)/secondsPerMinute)
}

// Format12 renders the normalised clock time as "03:04 PM".
func (t TimeOfDay) Format12() string {
	if !t.Valid() {
		return "-"
	}
	c := int(t.Clock())
	hour := c / secondsPerHour
	minute := (c % secondsPerHour) / secondsPerMinute

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%02d:%02d %s", hour, minute, suffix)
}

func (t TimeOfDay) String() string {
	return t.Format24()
}

// ParseTimeOfDay parses "HH:MM", "HH:MM:SS" and their 12-hour forms with an
// AM/PM suffix. Hours up to 47 are accepted in 24-hour notation so that
// after-midnight service keeps its order within the service day.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return NoTime, fmt.Errorf("empty time")
	}

	upper := strings.ToUpper(raw)
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			upper = strings.TrimSpace(strings.TrimSuffix(upper, suffix))
			break
		}
	}

	parts := strings.Split(upper, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return NoTime, fmt.Errorf("invalid time %q", s)
	}

	fields := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return NoTime, fmt.Errorf("invalid time %q", s)
		}
		fields[i] = v
	}
	hour, minute, second := fields[0], fields[1], fields[2]
	if minute > 59 || second > 59 {
		return NoTime, fmt.Errorf("invalid time %q", s)
	}

	switch meridiem {
	case "":
		if hour > 47 {
			return NoTime, fmt.Errorf("invalid time %q: hour out of range", s)
		}
	default:
		if hour < 1 || hour > 12 {
			return NoTime, fmt.Errorf("invalid time %q: hour out of range", s)
		}
		hour %= 12
		if meridiem == "PM" {
			hour += 12
		}
	}

	return TimeOfDay(hour*secondsPerHour + minute*secondsPerMinute + second), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals; it panics on bad input.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ElapsedSeconds returns the seconds from a to b on the 24-hour clock. When b
// reads earlier than a the trip crossed midnight and a full day is added.
func ElapsedSeconds(a, b TimeOfDay) int64 {
	d := int64(b.Clock()) - int64(a.Clock())
	if d < 0 {
		d += secondsPerDay
	}
	return d
}

// ElapsedMinutes is ElapsedSeconds in fractional minutes, for display.
func ElapsedMinutes(a, b TimeOfDay) float64 {
	return float64(ElapsedSeconds(a, b)) / secondsPerMinute
}
