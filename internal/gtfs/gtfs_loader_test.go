package gtfs

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia560/busplanner/internal/schedule"
)

func gtfsZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func sampleFeed(t *testing.T) []byte {
	return gtfsZip(t, map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"CYR,CyRide,https://www.cyride.com,America/Chicago\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"R1,CYR,1,Red,3\n" +
			"R2,CYR,,Blue,3\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,zone_id,location_type,parent_station\n" +
			"STA,Ames Station,42.0250,-93.6150,,1,\n" +
			"S1,Downtown,42.0253,-93.6155,Z1,0,STA\n" +
			"S2,Campus,42.0267,-93.6465,Z2,0,\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WK,1,1,1,1,1,0,0,20250101,20261231\n" +
			"SA,0,0,0,0,0,1,0,20250101,20261231\n",
		"trips.txt": "route_id,service_id,trip_id\n" +
			"R1,WK,T1\n" +
			"R2,SA,T2\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,08:00:00,S1,1\n" +
			"T1,08:15:00,08:15:00,S2,2\n" +
			"T2,24:10:00,24:10:00,S2,1\n" +
			"T2,24:30:00,24:30:00,S1,2\n",
	})
}

func TestParseGTFS(t *testing.T) {
	data, err := parseGTFS(sampleFeed(t))
	require.NoError(t, err)

	require.Len(t, data.Stops, 2, "parent stations are not stops")
	names := map[schedule.StopID]string{}
	for _, s := range data.Stops {
		names[s.Name] = s.Town
		assert.True(t, s.HasLocation())
	}
	assert.Equal(t, "Ames Station", names["Downtown"], "town is the parent station name")
	assert.Equal(t, "Z2", names["Campus"], "town falls back to the zone")

	require.Len(t, data.Visits, 4)
	byTrip := map[schedule.RouteID][]schedule.StopVisit{}
	for _, v := range data.Visits {
		byTrip[v.Route] = append(byTrip[v.Route], v)
	}

	red := byTrip["1"]
	require.Len(t, red, 2)
	assert.Equal(t, schedule.NewTimeOfDay(8, 0), red[0].DepartTime)
	assert.True(t, red[0].OperatesOn(schedule.Friday))
	assert.False(t, red[0].OperatesOn(schedule.Saturday))

	blue := byTrip["R2"]
	require.Len(t, blue, 2, "route id stands in for a missing short name")
	assert.Equal(t, schedule.NewTimeOfDay(24, 10), blue[0].DepartTime)
	assert.Equal(t, schedule.NewWeekdaySet(schedule.Saturday), blue[0].OperatingDays)
}

func TestParseGTFS_Invalid(t *testing.T) {
	_, err := parseGTFS([]byte("not a zip"))
	assert.Error(t, err)
}

func TestParseSchedule_DispatchesOnFormat(t *testing.T) {
	data, err := parseSchedule(sampleFeed(t), FormatGTFS)
	require.NoError(t, err)
	assert.Len(t, data.Visits, 4)

	data, err = parseSchedule([]byte("Stop Location,Route,Depart Time\nA,1,07:00\n"), FormatCSV)
	require.NoError(t, err)
	assert.Len(t, data.Visits, 1)
}
