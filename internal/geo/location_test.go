package geo_test

import (
	"math"
	"testing"

	"github.com/neighborjob/marketplace/internal/geo"
	"github.com/neighborjob/marketplace/internal/model"
)

func TestJitter_StaysWithinSpread(t *testing.T) {
	origin := model.Coordinate{Latitude: 10, Longitude: 20}
	for _, r := range []float64{0, 0.25, 0.5, 0.999} {
		j := &geo.Jitter{Spread: 0.01, Rand: func() float64 { return r }}
		got := j.Place(origin)
		if d := math.Abs(got.Latitude - origin.Latitude); d > 0.005+1e-9 {
			t.Errorf("rand=%v: latitude offset %v outside ±0.005", r, d)
		}
		if d := math.Abs(got.Longitude - origin.Longitude); d > 0.005+1e-9 {
			t.Errorf("rand=%v: longitude offset %v outside ±0.005", r, d)
		}
	}
}

func TestJitter_MidpointIsOrigin(t *testing.T) {
	origin := model.Coordinate{Latitude: -1.5, Longitude: 3}
	j := &geo.Jitter{Rand: func() float64 { return 0.5 }}
	if got := j.Place(origin); got != origin {
		t.Errorf("Place = %v, want %v", got, origin)
	}
}

func TestFixed_IgnoresOrigin(t *testing.T) {
	want := model.Coordinate{Latitude: 0.001, Longitude: 0.002}
	f := geo.Fixed(want)
	if got := f.Place(model.Coordinate{Latitude: 50, Longitude: 50}); got != want {
		t.Errorf("Place = %v, want %v", got, want)
	}
}

func TestOrigin_ReturnsViewerLocation(t *testing.T) {
	origin := model.Coordinate{Latitude: 7, Longitude: 8}
	if got := (geo.Origin{}).Place(origin); got != origin {
		t.Errorf("Place = %v, want %v", got, origin)
	}
}
