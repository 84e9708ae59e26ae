package tracking

import "math"

const earthRadiusKm = 6371.0

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h a hair outside [0, 1] for (anti)coincident points
	h = math.Min(1, math.Max(0, h))

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistanceBetween returns the distance between two optional coordinate pairs.
// ok is false when any coordinate is missing: unknown, not zero.
func DistanceBetween(fromLat, fromLng, toLat, toLng *float64) (km float64, ok bool) {
	if fromLat == nil || fromLng == nil || toLat == nil || toLng == nil {
		return 0, false
	}
	return DistanceKm(Point{Lat: *fromLat, Lng: *fromLng}, Point{Lat: *toLat, Lng: *toLng}), true
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
