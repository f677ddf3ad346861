package gtfsdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/schedule"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(NewConfig(":memory:", appconf.Test, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func sampleImport(source string) ImportData {
	lat, lon := 42.0267, -93.6465
	weekdays := schedule.NewWeekdaySet(schedule.Monday, schedule.Tuesday, schedule.Wednesday, schedule.Thursday, schedule.Friday)
	return ImportData{
		Source: source,
		Hash:   HashSource([]byte(source)),
		Stops: []StopRecord{
			{Name: "Downtown", Town: "Ames", Lat: &lat, Lon: &lon},
			{Name: "Hospital", Town: "Ames"},
			{Name: "Depot", Town: "Nevada"},
		},
		Visits: []schedule.StopVisit{
			{Stop: "Downtown", Town: "Ames", Route: "68", DepartTime: schedule.NewTimeOfDay(9, 0), OperatingDays: weekdays},
			{Stop: "Hospital", Town: "Ames", Route: "68", DepartTime: schedule.NewTimeOfDay(9, 10), OperatingDays: weekdays},
			{Stop: "Hospital", Town: "Ames", Route: "12", DepartTime: schedule.NewTimeOfDay(11, 0), OperatingDays: schedule.NewWeekdaySet(schedule.Saturday)},
			{Stop: "Depot", Town: "Nevada", Route: "68", DepartTime: schedule.NoTime, OperatingDays: weekdays},
		},
	}
}

func TestNewClient_TestEnvRequiresMemory(t *testing.T) {
	_, err := NewClient(NewConfig("/tmp/planner.db", appconf.Test, false))
	assert.Error(t, err)
}

func TestImport_RoundTripsVisits(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	assert.Equal(t, ":memory:", client.GetDBPath())

	imported, err := client.Import(ctx, sampleImport("schedule.csv"))
	require.NoError(t, err)
	assert.True(t, imported)

	monday, err := client.VisitsForDay(ctx, schedule.Monday)
	require.NoError(t, err)
	require.Len(t, monday, 3)
	assert.Equal(t, schedule.StopID("Downtown"), monday[0].Stop)
	assert.Equal(t, schedule.NewTimeOfDay(9, 0), monday[0].DepartTime)
	assert.Equal(t, schedule.NoTime, monday[2].DepartTime, "missing times survive storage")
	assert.True(t, monday[0].OperatesOn(schedule.Friday))

	saturday, err := client.VisitsForDay(ctx, schedule.Saturday)
	require.NoError(t, err)
	require.Len(t, saturday, 1)
	assert.Equal(t, schedule.RouteID("12"), saturday[0].Route)

	counts, err := client.TableCounts()
	require.NoError(t, err)
	assert.Equal(t, 3, counts["stops"])
	assert.Equal(t, 4, counts["stop_visits"])
	assert.Equal(t, 1, counts["import_metadata"])
}

func TestImport_StopsAndCoordinates(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	_, err := client.Import(ctx, sampleImport("schedule.csv"))
	require.NoError(t, err)

	stops, err := client.Stops(ctx)
	require.NoError(t, err)
	require.Len(t, stops, 3)
	assert.Equal(t, schedule.StopID("Depot"), stops[0].Name)
	assert.False(t, stops[0].HasLocation())
	require.True(t, stops[1].HasLocation())
	assert.InDelta(t, 42.0267, *stops[1].Lat, 1e-9)

	// Depot has no timed visit, and Saturday only serves Hospital.
	monday, err := client.StopsForDay(ctx, schedule.Monday)
	require.NoError(t, err)
	assert.Len(t, monday, 2)

	saturday, err := client.StopsForDay(ctx, schedule.Saturday)
	require.NoError(t, err)
	require.Len(t, saturday, 1)
	assert.Equal(t, schedule.StopID("Hospital"), saturday[0].Name)
}

func TestImport_SkipsUnchangedSource(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	assert.Zero(t, client.ImportRuntime())

	data := sampleImport("schedule.csv")
	imported, err := client.Import(ctx, data)
	require.NoError(t, err)
	require.True(t, imported)
	elapsed := client.ImportRuntime()
	assert.Positive(t, elapsed)

	imported, err = client.Import(ctx, data)
	require.NoError(t, err)
	assert.False(t, imported)
	assert.Equal(t, elapsed, client.ImportRuntime(), "a skipped import keeps the last runtime")

	changed := sampleImport("schedule.csv")
	changed.Hash = HashSource([]byte("new contents"))
	changed.Visits = changed.Visits[:1]
	imported, err = client.Import(ctx, changed)
	require.NoError(t, err)
	assert.True(t, imported)

	n, err := client.Queries.CountVisits(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	meta, err := client.Queries.GetImportMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, changed.Hash, meta.FileHash)
	assert.Equal(t, int64(1), meta.VisitCount)
}

func TestImport_LargeBatch(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	data := ImportData{Source: "big.csv", Hash: "h"}
	for i := 0; i < insertBatchSize*2+7; i++ {
		data.Visits = append(data.Visits, schedule.StopVisit{
			Stop: "Downtown", Route: "1",
			DepartTime:    schedule.TimeOfDay(i * 60),
			OperatingDays: schedule.EveryDay,
		})
	}
	_, err := client.Import(ctx, data)
	require.NoError(t, err)

	visits, err := client.VisitsForDay(ctx, schedule.Sunday)
	require.NoError(t, err)
	assert.Len(t, visits, insertBatchSize*2+7)
	assert.Equal(t, schedule.TimeOfDay(60), visits[1].DepartTime)
}

func TestHashSource(t *testing.T) {
	h := HashSource([]byte("abc"))
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashSource([]byte("abc")))
	assert.NotEqual(t, h, HashSource([]byte("abd")))
	assert.Equal(t, "ba7816bf", shortHash(h))
}

func TestDayMask(t *testing.T) {
	assert.Equal(t, int64(1), DayMask(schedule.Monday))
	assert.Equal(t, int64(1<<6), DayMask(schedule.Sunday))
}
