package gtfs

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/ia560/busplanner/gtfsdb"
	"github.com/ia560/busplanner/internal/utils"
)

// StopDistance is a stop found by a location search.
type StopDistance struct {
	Stop     gtfsdb.StopRecord
	Distance float64 // meters
}

// stopIndex is an R-tree of located stops keyed by [lat, lon].
type stopIndex struct {
	tree rtree.RTreeG[gtfsdb.StopRecord]
	size int
}

func buildStopSpatialIndex(stops []gtfsdb.StopRecord) *stopIndex {
	idx := &stopIndex{}
	for _, s := range stops {
		if !s.HasLocation() {
			continue
		}
		pt := [2]float64{*s.Lat, *s.Lon}
		idx.tree.Insert(pt, pt, s)
		idx.size++
	}
	return idx
}

// Len is the number of indexed stops.
func (idx *stopIndex) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

// near returns the stops within radius meters of (lat, lon), closest first.
// A positive maxCount truncates the result.
func (idx *stopIndex) near(lat, lon, radius float64, maxCount int) []StopDistance {
	if idx == nil || idx.size == 0 {
		return nil
	}

	b := utils.CalculateBounds(lat, lon, radius)
	var found []StopDistance
	idx.tree.Search(
		[2]float64{b.MinLat, b.MinLon},
		[2]float64{b.MaxLat, b.MaxLon},
		func(_, _ [2]float64, s gtfsdb.StopRecord) bool {
			d := utils.Distance(lat, lon, *s.Lat, *s.Lon)
			if d <= radius {
				found = append(found, StopDistance{Stop: s, Distance: d})
			}
			return true
		})

	sort.Slice(found, func(i, j int) bool {
		if found[i].Distance != found[j].Distance {
			return found[i].Distance < found[j].Distance
		}
		return found[i].Stop.Name < found[j].Stop.Name
	})
	if maxCount > 0 && len(found) > maxCount {
		found = found[:maxCount]
	}
	return found
}
