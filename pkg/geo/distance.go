package geo

import (
	"math"

	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/orb"
)

const (
	earthRadiusKM = pkg.EARTH_RADIUS_METERS / 1000.0
)

// GetDestinationPoint returns the destination point given the starting point, bearing and distance
// dist in km
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {
	lat2, lon2 := destination(lat1, lon1, bearing, dist)
	return lat2, normalizeLongitude(lon2)
}

// destination leaves the longitude unwrapped, it may fall outside [-180, 180].
func destination(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {

	dr := dist / earthRadiusKM

	bearing = util.DegreeToRadians(bearing)

	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2Part1 := math.Sin(lat1) * math.Cos(dr)
	lat2Part2 := math.Cos(lat1) * math.Sin(dr) * math.Cos(bearing)

	lat2 := math.Asin(lat2Part1 + lat2Part2)

	lon2Part1 := math.Sin(bearing) * math.Sin(dr) * math.Cos(lat1)
	lon2Part2 := math.Cos(dr) - (math.Sin(lat1) * math.Sin(lat2))

	lon2 := lon1 + math.Atan2(lon2Part1, lon2Part2)

	return util.RadiansToDegree(lat2), util.RadiansToDegree(lon2)
}

// BoundsAround returns the boxes spanned by the south-west and north-east points radiusMeters
// away from p along the diagonals. a box crossing the antimeridian is split in two, one on
// each side.
func BoundsAround(p orb.Point, radiusMeters float64) []orb.Bound {
	lon := normalizeLongitude(p.Lon())
	diag := radiusMeters * math.Sqrt2 / 1000.0
	lowerLat, lowerLon := destination(p.Lat(), lon, 225, diag)
	upperLat, upperLon := destination(p.Lat(), lon, 45, diag)

	minLat, maxLat := math.Min(lowerLat, p.Lat()), math.Max(upperLat, p.Lat())
	minLon, maxLon := math.Min(lowerLon, lon), math.Max(upperLon, lon)
	box := func(minLon, maxLon float64) orb.Bound {
		return orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}
	}

	switch {
	case minLon < -180:
		return []orb.Bound{box(minLon+360, 180), box(-180, maxLon)}
	case maxLon > 180:
		return []orb.Bound{box(minLon, 180), box(-180, maxLon-360)}
	}
	return []orb.Bound{box(minLon, maxLon)}
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}
