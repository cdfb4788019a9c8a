package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	helper "github.com/lintang-b-s/routeannotator/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/routeannotator/pkg/http/usecases"
	"github.com/lintang-b-s/routeannotator/pkg/osmparser"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAnnotationService struct {
	loaded     bool
	err        error
	gotNodes   []uint64
	gotCoords  []orb.Point
	geometryOf []uint64
}

var sampleRoute = usecases.AnnotatedRoute{
	WayIndexes:    datastructure.AnnotatedRoute{0, datastructure.InvalidWayID},
	WayTags:       []map[string]string{{"highway": "primary", "_way_id": "6091729"}},
	TagsetIndexes: []int{0, -1},
}

func (f *fakeAnnotationService) Ready() (osmparser.LoadStats, bool) {
	if !f.loaded {
		return osmparser.LoadStats{}, false
	}
	return osmparser.LoadStats{Files: 1, Ways: 1, Edges: 2, Nodes: 3}, true
}

func (f *fakeAnnotationService) AnnotateNodes(nodeIDs []uint64) (usecases.AnnotatedRoute, error) {
	f.gotNodes = nodeIDs
	return sampleRoute, f.err
}

func (f *fakeAnnotationService) AnnotateCoordinates(coords []orb.Point) (usecases.AnnotatedRoute, error) {
	f.gotCoords = coords
	return sampleRoute, f.err
}

func (f *fakeAnnotationService) WayTags(wayID uint64) (map[string]string, error) {
	if wayID != 0 {
		return nil, util.NewErrorf(util.ErrNotFound, "way id %d not found", wayID)
	}
	return map[string]string{"highway": "primary", "_way_id": "6091729"}, f.err
}

func (f *fakeAnnotationService) NodeGeometry(nodeIDs []uint64) (string, error) {
	f.geometryOf = nodeIDs
	return "_p~iF~ps|U", f.err
}

type fakeSpeedService struct{}

func (fakeSpeedService) RouteSpeeds(nodeIDs []uint64) ([]uint32, error) {
	speeds := make([]uint32, len(nodeIDs)-1)
	for i := range speeds {
		speeds[i] = pkg.INVALID_SPEED
	}
	speeds[0] = 79
	return speeds, nil
}

func (fakeSpeedService) WaySpeeds(wayIDs []uint64) ([]uint32, error) {
	return make([]uint32, len(wayIDs)), nil
}

func serve(t *testing.T, svc *fakeAnnotationService, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := httprouter.New()
	New(svc, fakeSpeedService{}, zap.NewNop()).Routes(helper.NewRouteGroup(router, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAnnotateNodeList(t *testing.T) {
	svc := &fakeAnnotationService{loaded: true}
	rec := serve(t, svc, "/nodelist/50253600,50253602,50137292")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"way_indexes": [0, null],
		"way_tags": [{"highway": "primary", "_way_id": "6091729"}],
		"tagset_indexes": [0, -1]
	}`, rec.Body.String())
	assert.Equal(t, []uint64{50253600, 50253602, 50137292}, svc.gotNodes)
	assert.Nil(t, svc.geometryOf)
}

func TestAnnotateNodeListGeometry(t *testing.T) {
	svc := &fakeAnnotationService{loaded: true}
	rec := serve(t, svc, "/nodelist/1,2?geometry=true")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "_p~iF~ps|U", body["geometry"])
	assert.Equal(t, []uint64{1, 2}, svc.geometryOf)
}

func TestAnnotateCoordList(t *testing.T) {
	svc := &fakeAnnotationService{loaded: true}
	rec := serve(t, svc, "/coordlist/-120.1872774,48.4715898;-120.1882910,48.4725110")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []orb.Point{{-120.1872774, 48.4715898}, {-120.1882910, 48.4725110}}, svc.gotCoords)
}

func TestAnnotatePolyline(t *testing.T) {
	svc := &fakeAnnotationService{loaded: true}
	rec := serve(t, svc, "/polyline/_p~iF~ps%7CU_ulLnnqC")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.gotCoords, 2)
	assert.InDelta(t, -120.2, svc.gotCoords[0].Lon(), 1e-9)
	assert.InDelta(t, 38.5, svc.gotCoords[0].Lat(), 1e-9)
	assert.InDelta(t, -120.95, svc.gotCoords[1].Lon(), 1e-9)
	assert.InDelta(t, 40.7, svc.gotCoords[1].Lat(), 1e-9)
}

func TestBadRequests(t *testing.T) {
	testCases := []struct {
		name   string
		target string
	}{
		{name: "single node", target: "/nodelist/50253600"},
		{name: "non numeric node", target: "/nodelist/1,abc"},
		{name: "negative node", target: "/nodelist/1,-2"},
		{name: "empty element", target: "/nodelist/1,,2"},
		{name: "single coordinate", target: "/coordlist/1,2"},
		{name: "coordinate not a number", target: "/coordlist/1,2;NaN,3"},
		{name: "infinite coordinate", target: "/coordlist/1,2;Inf,3"},
		{name: "coordinate arity", target: "/coordlist/1,2;3,4,5"},
		{name: "latitude out of range", target: "/coordlist/1,2;3,95"},
		{name: "broken polyline", target: "/polyline/_p~iF~ps"},
		{name: "way id", target: "/ways/abc/tags"},
		{name: "single speed node", target: "/speeds/1"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAnnotationService{loaded: true}
			rec := serve(t, svc, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.gotNodes)
			assert.Nil(t, svc.gotCoords)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestErrorStatusCodes(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "not loaded", err: util.NewErrorf(util.ErrNotInitialized, "not loaded"), want: http.StatusServiceUnavailable},
		{name: "no coordinates", err: util.NewErrorf(util.ErrCoordinatesNotSupported, "no coords"), want: http.StatusNotImplemented},
		{name: "validation", err: util.NewErrorf(util.ErrValidation, "too short"), want: http.StatusBadRequest},
		{name: "internal", err: util.NewErrorf(util.ErrInternalServerError, "boom"), want: http.StatusInternalServerError},
		{name: "unknown", err: assert.AnError, want: http.StatusInternalServerError},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeAnnotationService{err: tt.err}, "/coordlist/1,2;3,4")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWayTags(t *testing.T) {
	rec := serve(t, &fakeAnnotationService{loaded: true}, "/ways/0/tags")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":{"highway":"primary","_way_id":"6091729"}}`, rec.Body.String())

	rec = serve(t, &fakeAnnotationService{loaded: true}, "/ways/7/tags")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSpeeds(t *testing.T) {
	rec := serve(t, &fakeAnnotationService{}, "/speeds/86909066,86909064,999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"speeds":[79,4294967295]}`, rec.Body.String())

	rec = serve(t, &fakeAnnotationService{}, "/wayspeeds/6091729")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"speeds":[0]}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	rec := serve(t, &fakeAnnotationService{}, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(t, &fakeAnnotationService{loaded: true}, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"loaded":true,"stats":{"files":1,"ways":1,"edges":2,"nodes":3,"nodes_with_coordinates":0}}`,
		rec.Body.String())
}
