package usecases

import (
	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/osmparser"
	"github.com/paulmach/orb"
)

type RouteAnnotator interface {
	Loaded() bool
	Stats() (osmparser.LoadStats, bool)
	AnnotateRouteFromNodeIDs(nodeIDs []uint64) (datastructure.AnnotatedRoute, error)
	AnnotateRouteFromLonLats(coords []orb.Point) (datastructure.AnnotatedRoute, error)
	GetAllTagsForWayID(wayID uint64) (map[string]string, error)
	NodeCoordinates(nodeIDs []uint64) ([]orb.Point, []bool, error)
}

type SegmentSpeeds interface {
	GetRouteSpeeds(nodeIDs []uint64) ([]uint32, error)
}

type WaySpeeds interface {
	GetWaySpeeds(wayIDs []uint64) ([]uint32, error)
}
