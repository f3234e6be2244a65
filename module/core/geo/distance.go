// Package geo evaluates geofences on the WGS84 ellipsoid.
package geo

import (
	"context"
	"math"

	"github.com/tidwall/geodesic"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

// boundaryTolerance is the slack, in meters, under which a distance equal to
// the radius still counts as inside.
const boundaryTolerance = 1e-6

// Distance returns the geodesic distance between a and b in meters.
func Distance(a, b domain.Coordinate) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lng, b.Lat, b.Lng, &s12, nil, nil)
	return math.Abs(s12)
}

// IsWithinDistance reports whether a and b are at most maxMeters apart.
func IsWithinDistance(a, b domain.Coordinate, maxMeters float64) bool {
	if maxMeters < 0 || math.IsNaN(maxMeters) {
		return false
	}
	return Distance(a, b) <= maxMeters+boundaryTolerance
}

// Offset returns the point reached by travelling meters from c along bearing
// (degrees clockwise from north).
func Offset(c domain.Coordinate, bearing, meters float64) domain.Coordinate {
	var lat, lng float64
	geodesic.WGS84.Direct(c.Lat, c.Lng, bearing, meters, &lat, &lng, nil)
	return domain.Coordinate{Lat: lat, Lng: lng}
}

// Evaluator is the in-process distance evaluator used by the alert loop.
type Evaluator struct{}

func (Evaluator) IsWithinDistance(_ context.Context, a, b domain.Coordinate, maxMeters float64) (bool, error) {
	if !a.Valid() || !b.Valid() {
		return false, domain.ErrInvalidCoordinate
	}
	return IsWithinDistance(a, b, maxMeters), nil
}
