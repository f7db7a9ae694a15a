package geo

import (
	"math/rand"

	"github.com/neighborjob/marketplace/internal/model"
)

// LocationProvider picks the coordinate of a job posted by a viewer
// standing at origin.
type LocationProvider interface {
	Place(origin model.Coordinate) model.Coordinate
}

// DefaultJitterSpread is the width in degrees of the square a jittered job
// may land in, centred on the viewer.
const DefaultJitterSpread = 0.01

// Jitter places jobs at a random offset around the viewer. It stands in for
// a real location picker.
type Jitter struct {
	Spread float64
	// Rand returns a value in [0, 1). Defaults to math/rand.
	Rand func() float64
}

// NewJitter returns a Jitter with the default spread.
func NewJitter() *Jitter {
	return &Jitter{Spread: DefaultJitterSpread}
}

// Place implements LocationProvider.
func (j *Jitter) Place(origin model.Coordinate) model.Coordinate {
	next := j.Rand
	if next == nil {
		next = rand.Float64
	}
	spread := j.Spread
	if spread == 0 {
		spread = DefaultJitterSpread
	}
	return model.Coordinate{
		Latitude:  origin.Latitude + (next()-0.5)*spread,
		Longitude: origin.Longitude + (next()-0.5)*spread,
	}
}

// Fixed places every job at the same coordinate.
type Fixed model.Coordinate

// Place implements LocationProvider.
func (f Fixed) Place(model.Coordinate) model.Coordinate {
	return model.Coordinate(f)
}

// Origin places every job exactly where the viewer stands.
type Origin struct{}

// Place implements LocationProvider.
func (Origin) Place(origin model.Coordinate) model.Coordinate {
	return origin
}
