package spatialindex

import (
	"math"

	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree indexes the location of every way node with known coordinates.
type Rtree struct {
	tr *rtree.RTreeG[datastructure.Index]
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build inserts every located node of idx as a point leaf.
func (rt *Rtree) Build(idx *datastructure.WayIndex, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	idx.ForEachNodeLocation(func(n datastructure.Index, p orb.Point) {
		rt.Insert(n, p)
	})
	log.Info("R-tree spatial index built.", zap.Int("nodes", rt.Len()))
}

func (rt *Rtree) Insert(n datastructure.Index, p orb.Point) {
	point := [2]float64{p.Lon(), p.Lat()}
	rt.tr.Insert(point, point, n)
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

func (rt *Rtree) search(q orb.Point, radius float64, iter func(p orb.Point, n datastructure.Index)) {
	for _, b := range geo.BoundsAround(q, radius) {
		rt.tr.Search([2]float64{b.Min.Lon(), b.Min.Lat()}, [2]float64{b.Max.Lon(), b.Max.Lat()},
			func(min, max [2]float64, data datastructure.Index) bool {
				iter(orb.Point{min[0], min[1]}, data)
				return true
			})
	}
}

// SearchWithinRadius returns the nodes inside the boxes circumscribing the circle of radius
// (in meter) around q. callers filter by exact distance.
func (rt *Rtree) SearchWithinRadius(q orb.Point, radius float64) []datastructure.Index {
	results := make([]datastructure.Index, 0, 4)
	rt.search(q, radius, func(_ orb.Point, n datastructure.Index) {
		results = append(results, n)
	})
	return results
}

// Nearest returns the closest node to q by great-circle distance, if one lies strictly within
// tolerance meters. equally distant nodes resolve to the lower index.
func (rt *Rtree) Nearest(q orb.Point, tolerance float64) (datastructure.Index, bool) {
	best := datastructure.InvalidIndex
	bestDist := math.Inf(1)
	rt.search(q, tolerance, func(p orb.Point, n datastructure.Index) {
		d := geo.DistanceMeters(q, p)
		if d >= tolerance {
			return
		}
		if d < bestDist || (d == bestDist && n < best) {
			best = n
			bestDist = d
		}
	})
	return best, best != datastructure.InvalidIndex
}
