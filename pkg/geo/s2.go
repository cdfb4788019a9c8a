package geo

import (
	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/paulmach/orb"

	"github.com/golang/geo/s2"
)

// DistanceMeters is the great-circle distance between two lon/lat points, in meter
func DistanceMeters(a, b orb.Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	lb := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return la.Distance(lb).Radians() * pkg.EARTH_RADIUS_METERS
}
