// Package geo provides great-circle distance math for geofence checks.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// Distance returns the haversine great-circle distance in meters between
// two WGS84 coordinates. It is total over valid lat/lng ranges; NaN inputs
// propagate NaN rather than panicking.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLng := toRadians(lng2 - lng1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
