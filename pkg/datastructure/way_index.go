package datastructure

import (
	"math"
	"strconv"

	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// [start, end) into keyValues
type tagRange struct {
	start uint32
	end   uint32
}

type keyValue struct {
	key   uint32
	value uint32
}

type wayRecord struct {
	osmID osm.WayID
	tags  tagRange
}

/*
WayIndex maps ordered pairs of consecutive way nodes to the way they belong to.

osm node ids are translated to dense internal ids (Index) on ingest, so the edge map is
keyed by a single uint64. tag strings are interned once in a shared string table and every
way keeps a range of (key, value) string id pairs, including the synthetic _way_id tag.
node locations are only kept when the index is built with coordinates.
*/
type WayIndex struct {
	pairWay         map[nodePair]WayID
	nodeIDMap       map[osm.NodeID]Index
	nodeCoords      []orb.Point
	ways            []wayRecord
	keyValues       []keyValue
	strings         util.IDMap
	withCoordinates bool
}

// WayIndexBuilder accumulates ways (and optionally node locations) and produces an
// immutable WayIndex. it is not safe for concurrent use.
type WayIndexBuilder struct {
	idx      *WayIndex
	wayIDMap map[osm.WayID]WayID
	edges    int
}

func NewWayIndexBuilder(withCoordinates bool) *WayIndexBuilder {
	return &WayIndexBuilder{
		idx: &WayIndex{
			pairWay:         make(map[nodePair]WayID),
			nodeIDMap:       make(map[osm.NodeID]Index),
			ways:            make([]wayRecord, 0),
			keyValues:       make([]keyValue, 0),
			strings:         util.NewIdMap(),
			withCoordinates: withCoordinates,
		},
		wayIDMap: make(map[osm.WayID]WayID),
	}
}

func (b *WayIndexBuilder) internalNode(id osm.NodeID) Index {
	if n, ok := b.idx.nodeIDMap[id]; ok {
		return n
	}
	n := Index(len(b.idx.nodeIDMap))
	b.idx.nodeIDMap[id] = n
	if b.idx.withCoordinates {
		b.idx.nodeCoords = append(b.idx.nodeCoords, orb.Point{math.NaN(), math.NaN()})
	}
	return n
}

func (b *WayIndexBuilder) addTags(id osm.WayID, tags osm.Tags) tagRange {
	start := uint32(len(b.idx.keyValues))
	for _, tag := range tags {
		if tag.Key == pkg.WAY_ID_TAG {
			continue
		}
		b.idx.keyValues = append(b.idx.keyValues, keyValue{
			key:   uint32(b.idx.strings.GetID(tag.Key)),
			value: uint32(b.idx.strings.GetID(tag.Value)),
		})
	}
	b.idx.keyValues = append(b.idx.keyValues, keyValue{
		key:   uint32(b.idx.strings.GetID(pkg.WAY_ID_TAG)),
		value: uint32(b.idx.strings.GetID(strconv.FormatInt(int64(id), 10))),
	})
	return tagRange{start: start, end: uint32(len(b.idx.keyValues))}
}

// AddWay indexes every consecutive node pair of the way. ways with fewer than two nodes are
// ignored. a way id seen before keeps its WayID and gets its tags replaced; an ordered pair
// seen before is re-pointed to this way.
func (b *WayIndexBuilder) AddWay(id osm.WayID, nodes []osm.NodeID, tags osm.Tags) (WayID, bool) {
	if len(nodes) < 2 {
		return InvalidWayID, false
	}

	tr := b.addTags(id, tags)
	wayID, ok := b.wayIDMap[id]
	if ok {
		b.idx.ways[wayID].tags = tr
	} else {
		util.AssertPanic(len(b.idx.ways) < int(InvalidWayID), "too many ways for a 32 bit way id")
		wayID = WayID(len(b.idx.ways))
		b.wayIDMap[id] = wayID
		b.idx.ways = append(b.idx.ways, wayRecord{osmID: id, tags: tr})
	}

	// nodes 1,2,3,4 -> (1,2), (2,3), (3,4)
	prev := b.internalNode(nodes[0])
	for i := 1; i < len(nodes); i++ {
		curr := b.internalNode(nodes[i])
		pair := newNodePair(prev, curr)
		if _, exists := b.idx.pairWay[pair]; !exists {
			b.edges++
		}
		b.idx.pairWay[pair] = wayID
		prev = curr
	}
	return wayID, true
}

// HasNode reports whether the node is referenced by an indexed way.
func (b *WayIndexBuilder) HasNode(id osm.NodeID) bool {
	_, ok := b.idx.nodeIDMap[id]
	return ok
}

// SetNodeLocation records the location of an indexed node. no-op without coordinates
// or for nodes no indexed way references.
func (b *WayIndexBuilder) SetNodeLocation(id osm.NodeID, lon, lat float64) {
	if !b.idx.withCoordinates {
		return
	}
	n, ok := b.idx.nodeIDMap[id]
	if !ok {
		return
	}
	b.idx.nodeCoords[n] = orb.Point{lon, lat}
}

func (b *WayIndexBuilder) NumberOfWays() int {
	return len(b.idx.ways)
}

func (b *WayIndexBuilder) NumberOfEdges() int {
	return b.edges
}

// Build hands over the index. the builder must not be used afterwards.
func (b *WayIndexBuilder) Build() *WayIndex {
	idx := b.idx
	idx.strings.Compact()
	b.idx = nil
	b.wayIDMap = nil
	return idx
}

func (w *WayIndex) WithCoordinates() bool {
	return w.withCoordinates
}

func (w *WayIndex) NumberOfWays() int {
	return len(w.ways)
}

func (w *WayIndex) NumberOfEdges() int {
	return len(w.pairWay)
}

func (w *WayIndex) NumberOfNodes() int {
	return len(w.nodeIDMap)
}

func (w *WayIndex) InternalNode(id osm.NodeID) (Index, bool) {
	n, ok := w.nodeIDMap[id]
	return n, ok
}

// ExternalToInternal maps osm node ids to internal ids, InvalidIndex for unknown nodes.
func (w *WayIndex) ExternalToInternal(nodeIDs []uint64) []Index {
	internal := make([]Index, len(nodeIDs))
	for i, id := range nodeIDs {
		n, ok := w.nodeIDMap[osm.NodeID(id)]
		if !ok {
			internal[i] = InvalidIndex
			continue
		}
		internal[i] = n
	}
	return internal
}

// LookupEdge finds the way containing from->to, falling back to to->from.
func (w *WayIndex) LookupEdge(from, to Index) WayID {
	if from == InvalidIndex || to == InvalidIndex {
		return InvalidWayID
	}
	if wayID, ok := w.pairWay[newNodePair(from, to)]; ok {
		return wayID
	}
	if wayID, ok := w.pairWay[newNodePair(to, from)]; ok {
		return wayID
	}
	return InvalidWayID
}

// AnnotateRoute returns len(route)-1 way ids, one for every consecutive pair.
func (w *WayIndex) AnnotateRoute(route []Index) AnnotatedRoute {
	if len(route) < 2 {
		return AnnotatedRoute{}
	}
	result := make(AnnotatedRoute, len(route)-1)
	for i := 0; i < len(route)-1; i++ {
		result[i] = w.LookupEdge(route[i], route[i+1])
	}
	return result
}

func (w *WayIndex) OSMWayID(id WayID) (osm.WayID, bool) {
	if int(id) >= len(w.ways) {
		return 0, false
	}
	return w.ways[id].osmID, true
}

// Tags materialises the tag map of a way, _way_id included.
func (w *WayIndex) Tags(id WayID) (map[string]string, bool) {
	if int(id) >= len(w.ways) {
		return nil, false
	}
	tr := w.ways[id].tags
	tags := make(map[string]string, tr.end-tr.start)
	for i := tr.start; i < tr.end; i++ {
		kv := w.keyValues[i]
		key, _ := w.strings.GetStr(int(kv.key))
		value, _ := w.strings.GetStr(int(kv.value))
		tags[key] = value
	}
	return tags, true
}

// NodeLocation returns the lon/lat of an internal node, false when unknown.
func (w *WayIndex) NodeLocation(n Index) (orb.Point, bool) {
	if !w.withCoordinates || int(n) >= len(w.nodeCoords) {
		return orb.Point{}, false
	}
	p := w.nodeCoords[n]
	if math.IsNaN(p[0]) {
		return orb.Point{}, false
	}
	return p, true
}

// ForEachNodeLocation visits every node with a known location.
func (w *WayIndex) ForEachNodeLocation(fn func(n Index, p orb.Point)) {
	for i, p := range w.nodeCoords {
		if math.IsNaN(p[0]) {
			continue
		}
		fn(Index(i), p)
	}
}
