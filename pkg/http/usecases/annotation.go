package usecases

import (
	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/osmparser"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"
)

// AnnotatedRoute is an annotation plus the tag records of every way it touches.
// TagsetIndexes[i] points into WayTags, or is -1 for an unmatched pair.
type AnnotatedRoute struct {
	WayIndexes    datastructure.AnnotatedRoute
	WayTags       []map[string]string
	TagsetIndexes []int
}

type AnnotationService struct {
	log       *zap.Logger
	annotator RouteAnnotator
}

func NewAnnotationService(log *zap.Logger, annotator RouteAnnotator) *AnnotationService {
	return &AnnotationService{
		log:       log,
		annotator: annotator,
	}
}

func (as *AnnotationService) Ready() (osmparser.LoadStats, bool) {
	return as.annotator.Stats()
}

func (as *AnnotationService) AnnotateNodes(nodeIDs []uint64) (AnnotatedRoute, error) {
	route, err := as.annotator.AnnotateRouteFromNodeIDs(nodeIDs)
	if err != nil {
		return AnnotatedRoute{}, err
	}
	return as.withTags(route)
}

func (as *AnnotationService) AnnotateCoordinates(coords []orb.Point) (AnnotatedRoute, error) {
	route, err := as.annotator.AnnotateRouteFromLonLats(coords)
	if err != nil {
		return AnnotatedRoute{}, err
	}
	return as.withTags(route)
}

func (as *AnnotationService) WayTags(wayID uint64) (map[string]string, error) {
	return as.annotator.GetAllTagsForWayID(wayID)
}

// NodeGeometry encodes the stored locations of the nodes as a polyline, skipping nodes
// without a location.
func (as *AnnotationService) NodeGeometry(nodeIDs []uint64) (string, error) {
	points, known, err := as.annotator.NodeCoordinates(nodeIDs)
	if err != nil {
		return "", err
	}
	coords := make([][]float64, 0, len(points))
	for i, p := range points {
		if !known[i] {
			continue
		}
		coords = append(coords, []float64{p.Lat(), p.Lon()})
	}
	return string(polyline.EncodeCoords(coords)), nil
}

// withTags fetches the tags of every distinct way of the route once.
func (as *AnnotationService) withTags(route datastructure.AnnotatedRoute) (AnnotatedRoute, error) {
	res := AnnotatedRoute{
		WayIndexes:    route,
		WayTags:       make([]map[string]string, 0),
		TagsetIndexes: make([]int, len(route)),
	}
	seen := make(map[datastructure.WayID]int)
	for i, wayID := range route {
		if !route.Matched(i) {
			res.TagsetIndexes[i] = -1
			continue
		}
		if pos, ok := seen[wayID]; ok {
			res.TagsetIndexes[i] = pos
			continue
		}
		tags, err := as.annotator.GetAllTagsForWayID(uint64(wayID))
		if err != nil {
			return AnnotatedRoute{}, util.WrapErrorf(err, util.ErrInternalServerError,
				"way %d returned by annotation has no tags", wayID)
		}
		pos := len(res.WayTags)
		seen[wayID] = pos
		res.WayTags = append(res.WayTags, tags)
		res.TagsetIndexes[i] = pos
	}
	return res, nil
}
