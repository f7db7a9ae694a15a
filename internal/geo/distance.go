// Package geo computes surface distances and places new jobs on the map.
package geo

import (
	"math"

	"github.com/neighborjob/marketplace/internal/model"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371e3

// Distance returns the great-circle distance between a and b in whole
// meters using the haversine formula. Non-finite input yields 0; use
// Measure when that case must be told apart.
func Distance(a, b model.Coordinate) int {
	d, _ := Measure(a, b)
	return d
}

// Measure is Distance with an ok flag that is false when the result is not
// a finite number.
func Measure(a, b model.Coordinate) (int, bool) {
	phi1 := radians(a.Latitude)
	phi2 := radians(b.Latitude)
	dPhi := radians(b.Latitude - a.Latitude)
	dLambda := radians(b.Longitude - a.Longitude)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	meters := math.Round(EarthRadiusMeters * c)
	if math.IsNaN(meters) || math.IsInf(meters, 0) {
		return 0, false
	}
	return int(meters), true
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
