package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TimeOfDay
	}{
		{name: "24 hour", input: "08:15", expected: NewTimeOfDay(8, 15)},
		{name: "with seconds", input: "08:15:30", expected: NewTimeOfDay(8, 15) + 30},
		{name: "12 hour morning", input: "08:15 AM", expected: NewTimeOfDay(8, 15)},
		{name: "12 hour afternoon", input: "3:04 pm", expected: NewTimeOfDay(15, 4)},
		{name: "noon", input: "12:00 PM", expected: NewTimeOfDay(12, 0)},
		{name: "midnight", input: "12:00 AM", expected: NewTimeOfDay(0, 0)},
		{name: "after midnight service", input: "24:10", expected: NewTimeOfDay(24, 10)},
		{name: "surrounding whitespace", input: "  07:00 ", expected: NewTimeOfDay(7, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, input := range []string{"", "noon", "8", "08:61", "48:00", "13:00 PM", "0:30 AM", "-1:00", "1:2:3:4"} {
		t.Run(input, func(t *testing.T) {
			got, err := ParseTimeOfDay(input)
			assert.Error(t, err)
			assert.Equal(t, NoTime, got)
			assert.False(t, got.Valid())
		})
	}
}

func TestTimeOfDay_Format(t *testing.T) {
	assert.Equal(t, "08:45", NewTimeOfDay(8, 45).Format24())
	assert.Equal(t, "08:45 AM", NewTimeOfDay(8, 45).Format12())
	assert.Equal(t, "12:05 AM", NewTimeOfDay(0, 5).Format12())
	assert.Equal(t, "12:30 PM", NewTimeOfDay(12, 30).Format12())
	assert.Equal(t, "11:59 PM", NewTimeOfDay(23, 59).Format12())
	assert.Equal(t, "00:10", NewTimeOfDay(24, 10).Format24(), "after-midnight service folds onto the clock")
	assert.Equal(t, "-", NoTime.Format24())
	assert.Equal(t, "-", NoTime.Format12())
}

func TestElapsedMinutes(t *testing.T) {
	tests := []struct {
		name     string
		from, to TimeOfDay
		expected float64
	}{
		{name: "same day", from: NewTimeOfDay(8, 0), to: NewTimeOfDay(8, 20), expected: 20},
		{name: "simultaneous", from: NewTimeOfDay(8, 0), to: NewTimeOfDay(8, 0), expected: 0},
		{name: "crosses midnight on the clock", from: NewTimeOfDay(23, 50), to: NewTimeOfDay(0, 10), expected: 20},
		{name: "crosses midnight in service time", from: NewTimeOfDay(23, 50), to: NewTimeOfDay(24, 10), expected: 20},
		{name: "seconds precision", from: NewTimeOfDay(8, 0), to: NewTimeOfDay(8, 1) + 30, expected: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ElapsedMinutes(tt.from, tt.to)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestElapsedSeconds(t *testing.T) {
	assert.Equal(t, int64(1200), ElapsedSeconds(NewTimeOfDay(8, 0), NewTimeOfDay(8, 20)))
	assert.Equal(t, int64(1200), ElapsedSeconds(NewTimeOfDay(23, 50), NewTimeOfDay(0, 10)))
	assert.Equal(t, int64(0), ElapsedSeconds(NewTimeOfDay(8, 0), NewTimeOfDay(8, 0)))

	// Second-level offsets add up exactly where float minutes would drift.
	base := MustParseTimeOfDay("01:39:59")
	var total int64
	prev := base
	for _, offset := range []TimeOfDay{629, 924, 1937, 2547, 2890, 3120} {
		total += ElapsedSeconds(prev, base+offset)
		prev = base + offset
	}
	assert.Equal(t, int64(3120), total)
	assert.Equal(t, int64(52), total/60)
}

func TestParseWeekday(t *testing.T) {
	for input, expected := range map[string]Weekday{
		"Monday":    Monday,
		"tue":       Tuesday,
		"WEDNESDAY": Wednesday,
		" sun ":     Sunday,
	} {
		got, err := ParseWeekday(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got, input)
	}

	_, err := ParseWeekday("funday")
	assert.Error(t, err)
	_, err = ParseWeekday("mo")
	assert.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	// 2024-06-17 was a Monday.
	monday := time.Date(2024, 6, 17, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, Monday, WeekdayOf(monday))
	assert.Equal(t, Sunday, WeekdayOf(monday.AddDate(0, 0, 6)))
	assert.Equal(t, Saturday, WeekdayOf(monday.AddDate(0, 0, 5)))
}

func TestWeekdaySet(t *testing.T) {
	s := NewWeekdaySet(Monday, Friday)
	assert.True(t, s.Has(Monday))
	assert.True(t, s.Has(Friday))
	assert.False(t, s.Has(Sunday))
	assert.False(t, s.Has(Weekday(9)))
	assert.Equal(t, []Weekday{Monday, Friday}, s.Days())
	assert.Equal(t, "Mon,Fri", s.String())
	assert.True(t, WeekdaySet(0).Empty())
	assert.Len(t, EveryDay.Days(), 7)
}

func TestFilterForDay(t *testing.T) {
	weekdays := NewWeekdaySet(Monday, Tuesday, Wednesday, Thursday, Friday)
	visits := []StopVisit{
		{Stop: "Library", Route: "1", DepartTime: NewTimeOfDay(8, 0), OperatingDays: weekdays},
		{Stop: "Library", Route: "1", DepartTime: NoTime, OperatingDays: weekdays},
		{Stop: "Mall", Route: "2", DepartTime: NewTimeOfDay(9, 0), OperatingDays: NewWeekdaySet(Saturday)},
	}

	kept, dropped := FilterForDay(visits, Monday)
	assert.Len(t, kept, 1)
	assert.Equal(t, StopID("Library"), kept[0].Stop)
	assert.Equal(t, 1, dropped, "the untimed row is skipped, not fatal")

	kept, dropped = FilterForDay(visits, Saturday)
	assert.Len(t, kept, 1)
	assert.Equal(t, StopID("Mall"), kept[0].Stop)
	assert.Zero(t, dropped)

	kept, dropped = FilterForDay(nil, Sunday)
	assert.Empty(t, kept)
	assert.Zero(t, dropped)
}
