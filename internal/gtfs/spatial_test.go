package gtfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia560/busplanner/gtfsdb"
	"github.com/ia560/busplanner/internal/schedule"
)

func located(name string, lat, lon float64) gtfsdb.StopRecord {
	return gtfsdb.StopRecord{Name: schedule.StopID(name), Lat: &lat, Lon: &lon}
}

func TestStopIndex_Near(t *testing.T) {
	idx := buildStopSpatialIndex([]gtfsdb.StopRecord{
		located("Center", 40.0, -105.0),
		located("East", 40.0, -104.995),  // ~426m
		located("North", 40.002, -105.0), // ~222m
		located("Far", 40.1, -105.0),     // ~11km
		{Name: "Unlocated"},
	})
	assert.Equal(t, 4, idx.Len())

	found := idx.near(40.0, -105.0, 500, 0)
	require.Len(t, found, 3)
	assert.Equal(t, schedule.StopID("Center"), found[0].Stop.Name)
	assert.Equal(t, schedule.StopID("North"), found[1].Stop.Name)
	assert.Equal(t, schedule.StopID("East"), found[2].Stop.Name)
	assert.InDelta(t, 222, found[1].Distance, 5)

	limited := idx.near(40.0, -105.0, 500, 1)
	require.Len(t, limited, 1)
	assert.Equal(t, schedule.StopID("Center"), limited[0].Stop.Name)
}

func TestStopIndex_Empty(t *testing.T) {
	var idx *stopIndex
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.near(0, 0, 100, 0))

	assert.Nil(t, buildStopSpatialIndex(nil).near(0, 0, 100, 0))
}
