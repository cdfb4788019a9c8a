package datastructure

import (
	"github.com/lintang-b-s/routeannotator/pkg"
)

// SegmentKey is an ordered pair of osm node ids.
type SegmentKey struct {
	From uint64
	To   uint64
}

// SegmentTable maps ordered node pairs to a recorded speed.
type SegmentTable struct {
	speeds map[SegmentKey]uint32
}

func NewSegmentTable() *SegmentTable {
	return &SegmentTable{
		speeds: make(map[SegmentKey]uint32),
	}
}

func (t *SegmentTable) Add(from, to uint64, speed uint32) {
	t.speeds[SegmentKey{From: from, To: to}] = speed
}

// Merge copies every entry of other into t, overwriting identical keys.
func (t *SegmentTable) Merge(other *SegmentTable) {
	for k, v := range other.speeds {
		t.speeds[k] = v
	}
}

func (t *SegmentTable) Get(from, to uint64) (uint32, bool) {
	speed, ok := t.speeds[SegmentKey{From: from, To: to}]
	return speed, ok
}

func (t *SegmentTable) Len() int {
	return len(t.speeds)
}

// RouteSpeeds returns the speed of every consecutive ordered pair, INVALID_SPEED for
// pairs without a record. A nil table answers INVALID_SPEED everywhere.
func (t *SegmentTable) RouteSpeeds(nodeIDs []uint64) []uint32 {
	if len(nodeIDs) < 2 {
		return []uint32{}
	}
	speeds := make([]uint32, len(nodeIDs)-1)
	for i := range speeds {
		speeds[i] = pkg.INVALID_SPEED
		if t == nil {
			continue
		}
		if speed, ok := t.speeds[SegmentKey{From: nodeIDs[i], To: nodeIDs[i+1]}]; ok {
			speeds[i] = speed
		}
	}
	return speeds
}
