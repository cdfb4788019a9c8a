package usecases

import (
	"strconv"
	"testing"

	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/osmparser"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAnnotator struct {
	route     datastructure.AnnotatedRoute
	err       error
	tagCalls  map[uint64]int
	locations map[uint64]orb.Point
}

func (f *fakeAnnotator) Loaded() bool { return true }

func (f *fakeAnnotator) Stats() (osmparser.LoadStats, bool) { return osmparser.LoadStats{}, true }

func (f *fakeAnnotator) AnnotateRouteFromNodeIDs([]uint64) (datastructure.AnnotatedRoute, error) {
	return f.route, f.err
}

func (f *fakeAnnotator) AnnotateRouteFromLonLats([]orb.Point) (datastructure.AnnotatedRoute, error) {
	return f.route, f.err
}

func (f *fakeAnnotator) GetAllTagsForWayID(wayID uint64) (map[string]string, error) {
	f.tagCalls[wayID]++
	if wayID > 10 {
		return nil, util.NewErrorf(util.ErrNotFound, "way id %d not found", wayID)
	}
	return map[string]string{"_way_id": strconv.FormatUint(wayID+100, 10)}, nil
}

func (f *fakeAnnotator) NodeCoordinates(nodeIDs []uint64) ([]orb.Point, []bool, error) {
	points := make([]orb.Point, len(nodeIDs))
	known := make([]bool, len(nodeIDs))
	for i, id := range nodeIDs {
		points[i], known[i] = f.locations[id]
	}
	return points, known, nil
}

func TestAnnotateNodesDeduplicatesTags(t *testing.T) {
	inv := datastructure.InvalidWayID
	fake := &fakeAnnotator{
		route:    datastructure.AnnotatedRoute{3, 3, inv, 5, 3},
		tagCalls: map[uint64]int{},
	}
	svc := NewAnnotationService(zap.NewNop(), fake)

	res, err := svc.AnnotateNodes([]uint64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, fake.route, res.WayIndexes)
	assert.Equal(t, []int{0, 0, -1, 1, 0}, res.TagsetIndexes)
	assert.Equal(t, []map[string]string{{"_way_id": "103"}, {"_way_id": "105"}}, res.WayTags)
	assert.Equal(t, map[uint64]int{3: 1, 5: 1}, fake.tagCalls)
}

func TestAnnotateCoordinatesErrors(t *testing.T) {
	fake := &fakeAnnotator{
		err:      util.NewErrorf(util.ErrCoordinatesNotSupported, "no coordinates"),
		tagCalls: map[uint64]int{},
	}
	svc := NewAnnotationService(zap.NewNop(), fake)

	_, err := svc.AnnotateCoordinates([]orb.Point{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, util.ErrCoordinatesNotSupported)

	fake.err = nil
	fake.route = datastructure.AnnotatedRoute{42}
	_, err = svc.AnnotateCoordinates([]orb.Point{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, util.ErrInternalServerError)
}

func TestNodeGeometry(t *testing.T) {
	fake := &fakeAnnotator{
		tagCalls: map[uint64]int{},
		locations: map[uint64]orb.Point{
			1: {-120.2, 38.5},
			3: {-120.95, 40.7},
		},
	}
	svc := NewAnnotationService(zap.NewNop(), fake)

	geometry, err := svc.NodeGeometry([]uint64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC", geometry)
}
