package controllers

import (
	"github.com/lintang-b-s/routeannotator/pkg/http/usecases"
	"github.com/lintang-b-s/routeannotator/pkg/osmparser"
	"github.com/paulmach/orb"
)

type AnnotationService interface {
	Ready() (osmparser.LoadStats, bool)
	AnnotateNodes(nodeIDs []uint64) (usecases.AnnotatedRoute, error)
	AnnotateCoordinates(coords []orb.Point) (usecases.AnnotatedRoute, error)
	WayTags(wayID uint64) (map[string]string, error)
	NodeGeometry(nodeIDs []uint64) (string, error)
}

type SpeedService interface {
	RouteSpeeds(nodeIDs []uint64) ([]uint32, error)
	WaySpeeds(wayIDs []uint64) ([]uint32, error)
}
