package utils

import "math"

// RadiusOfEarthInMeters is the mean Earth radius.
const RadiusOfEarthInMeters = 6371010.0

// CoordinateBounds is a latitude/longitude box in degrees.
type CoordinateBounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// Contains reports whether the point lies inside b, edges included.
func (b CoordinateBounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Center is the midpoint of b.
func (b CoordinateBounds) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// Distance is the great-circle distance in meters between two points, using
// the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * RadiusOfEarthInMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// CalculateBounds returns a box that contains every point within distance
// meters of (lat, lon).
func CalculateBounds(lat, lon, distance float64) CoordinateBounds {
	latOffset := distance / RadiusOfEarthInMeters * 180 / math.Pi
	lonOffset := distance / (RadiusOfEarthInMeters * math.Cos(toRadians(lat))) * 180 / math.Pi

	return CoordinateBounds{
		MinLat: lat - latOffset,
		MaxLat: lat + latOffset,
		MinLon: lon - lonOffset,
		MaxLon: lon + lonOffset,
	}
}

// BoundsOf returns the smallest box holding every point, and false when
// there are none. Points are [lat, lon] pairs.
func BoundsOf(points [][2]float64) (CoordinateBounds, bool) {
	if len(points) == 0 {
		return CoordinateBounds{}, false
	}
	b := CoordinateBounds{
		MinLat: points[0][0], MaxLat: points[0][0],
		MinLon: points[0][1], MaxLon: points[0][1],
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p[0])
		b.MaxLat = math.Max(b.MaxLat, p[0])
		b.MinLon = math.Min(b.MinLon, p[1])
		b.MaxLon = math.Max(b.MaxLon, p[1])
	}
	return b, true
}
