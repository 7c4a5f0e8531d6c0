package domain

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates,
// rounded to the nearest whole kilometer. Symmetric and zero for identical
// points.
func HaversineKm(a, b Geo) int {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return int(math.Round(earthRadiusKm * c))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
