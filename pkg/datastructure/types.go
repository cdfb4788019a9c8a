package datastructure

import (
	"bytes"
	"math"
	"strconv"
)

// Index is the dense internal id of an osm node referenced by an indexed way.
type Index uint32

// WayID is the dense internal id of an indexed way, in ingest order.
type WayID uint32

const (
	InvalidIndex Index = math.MaxUint32
	InvalidWayID WayID = math.MaxUint32
)

// nodePair packs an ordered (from, to) pair of internal node ids.
type nodePair uint64

func newNodePair(from, to Index) nodePair {
	return nodePair(uint64(from)<<32 | uint64(to))
}

// AnnotatedRoute holds one way id per consecutive node pair of a route.
// Pairs without a matching way hold InvalidWayID.
type AnnotatedRoute []WayID

func (r AnnotatedRoute) Matched(i int) bool {
	return r[i] != InvalidWayID
}

// MarshalJSON writes unmatched pairs as null.
func (r AnnotatedRoute) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, w := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if w == InvalidWayID {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatUint(uint64(w), 10))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
