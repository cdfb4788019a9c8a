package spatialindex

import (
	"testing"

	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildTree(t *testing.T) (*Rtree, *datastructure.WayIndex) {
	b := datastructure.NewWayIndexBuilder(true)
	_, ok := b.AddWay(6091729, []osm.NodeID{50253600, 50253602, 50137292}, osm.Tags{{Key: "highway", Value: "primary"}})
	require.True(t, ok)
	b.SetNodeLocation(50253600, -120.1872774, 48.4715898)
	b.SetNodeLocation(50253602, -120.1882910, 48.4725110)
	idx := b.Build()

	rt := NewRtree()
	rt.Build(idx, zap.NewNop())
	return rt, idx
}

func TestNearest(t *testing.T) {
	rt, idx := buildTree(t)
	require.Equal(t, 2, rt.Len())

	first, _ := idx.InternalNode(50253600)
	second, _ := idx.InternalNode(50253602)

	testCases := []struct {
		name      string
		q         orb.Point
		tolerance float64
		want      datastructure.Index
		wantFound bool
	}{
		{name: "exact location", q: orb.Point{-120.1872774, 48.4715898}, tolerance: 5, want: first, wantFound: true},
		{name: "second node", q: orb.Point{-120.1882910, 48.4725110}, tolerance: 5, want: second, wantFound: true},
		// ~2.2m north of the first node
		{name: "within tolerance", q: orb.Point{-120.1872774, 48.4716098}, tolerance: 5, want: first, wantFound: true},
		// ~11m north of the first node
		{name: "outside tolerance", q: orb.Point{-120.1872774, 48.4716898}, tolerance: 5, wantFound: false},
		{name: "wider tolerance", q: orb.Point{-120.1872774, 48.4716898}, tolerance: 20, want: first, wantFound: true},
		{name: "far away", q: orb.Point{0, 0}, tolerance: 5, wantFound: false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, found := rt.Nearest(tt.q, tt.tolerance)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNearestEquidistant(t *testing.T) {
	rt := NewRtree()
	rt.Insert(7, orb.Point{10.0, 0.00001})
	rt.Insert(3, orb.Point{10.0, -0.00001})

	got, found := rt.Nearest(orb.Point{10.0, 0}, 5)
	require.True(t, found)
	assert.Equal(t, datastructure.Index(3), got)
}

func TestSearchWithinRadius(t *testing.T) {
	rt, _ := buildTree(t)
	assert.Len(t, rt.SearchWithinRadius(orb.Point{-120.1877, 48.472}, 200), 2)
	assert.Empty(t, rt.SearchWithinRadius(orb.Point{-120.1877, 48.472}, 1))
}

func TestNearestAcrossAntimeridian(t *testing.T) {
	rt := NewRtree()
	rt.Insert(1, orb.Point{179.99999, 0})
	rt.Insert(2, orb.Point{-179.99999, 10})

	testCases := []struct {
		name      string
		q         orb.Point
		want      datastructure.Index
		wantFound bool
	}{
		{name: "node east of the query", q: orb.Point{179.99997, 0}, want: 1, wantFound: true},
		{name: "node across the antimeridian going east", q: orb.Point{179.99999, 10}, want: 2, wantFound: true},
		{name: "node across the antimeridian going west", q: orb.Point{-179.99999, 0}, want: 1, wantFound: true},
		{name: "too far", q: orb.Point{179.9999, 0}, wantFound: false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, found := rt.Nearest(tt.q, 5)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNearestToleranceIsExclusive(t *testing.T) {
	rt := NewRtree()
	p := orb.Point{-120.1872774, 48.4715898}
	rt.Insert(0, p)

	q := orb.Point{-120.1872774, 48.4716098}
	d := geo.DistanceMeters(q, p)

	_, found := rt.Nearest(q, d)
	assert.False(t, found)

	got, found := rt.Nearest(q, d+0.01)
	require.True(t, found)
	assert.Equal(t, datastructure.Index(0), got)
}
