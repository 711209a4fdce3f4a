package geo

import (
	"math"
	"strings"
)

// Haversine distance in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// EstimateMinutes is the tracking page's naive ETA: straight-line distance
// at a fixed average speed, floored at one minute. Not a routing engine.
func EstimateMinutes(fromLat, fromLng, toLat, toLng, speedKmh float64) int {
	if speedKmh <= 0 {
		speedKmh = 25 // typical city bus average
	}
	distanceKm := Haversine(fromLat, fromLng, toLat, toLng) / 1000
	eta := int(distanceKm / speedKmh * 60)
	if eta < 1 {
		eta = 1
	}
	return eta
}

// StopCoords resolves the coordinates of a named stop. The stop list is
// static; stops the system does not know yield ok=false and callers fall
// back to no ETA.
func StopCoords(stop string) (lat, lng float64, ok bool) {
	c, ok := stops[strings.ToLower(strings.TrimSpace(stop))]
	if !ok {
		return 0, 0, false
	}
	return c[0], c[1], true
}

var stops = map[string][2]float64{
	"kathmandu": {27.7172, 85.3240},
	"lalitpur":  {27.6644, 85.3188},
	"bhaktapur": {27.6710, 85.4298},
	"balkhu":    {27.6841, 85.2973},
}
