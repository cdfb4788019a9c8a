package datastructure

import (
	"github.com/lintang-b-s/routeannotator/pkg"
)

// WaySpeedTable maps osm way ids to a speed in km/h.
type WaySpeedTable struct {
	speeds  map[uint64]uint32
	skipped int
}

func NewWaySpeedTable() *WaySpeedTable {
	return &WaySpeedTable{
		speeds: make(map[uint64]uint32),
	}
}

func (t *WaySpeedTable) Add(wayID uint64, speed uint32) {
	t.speeds[wayID] = speed
}

func (t *WaySpeedTable) Merge(other *WaySpeedTable) {
	for k, v := range other.speeds {
		t.speeds[k] = v
	}
	t.skipped += other.skipped
}

func (t *WaySpeedTable) Get(wayID uint64) (uint32, bool) {
	speed, ok := t.speeds[wayID]
	return speed, ok
}

func (t *WaySpeedTable) Len() int {
	return len(t.speeds)
}

// Skipped counts rows dropped because their speed does not fit below INVALID_SPEED.
func (t *WaySpeedTable) Skipped() int {
	return t.skipped
}

// WaySpeeds returns one speed per way id, INVALID_SPEED for unknown ways.
func (t *WaySpeedTable) WaySpeeds(wayIDs []uint64) []uint32 {
	speeds := make([]uint32, len(wayIDs))
	for i, id := range wayIDs {
		speeds[i] = pkg.INVALID_SPEED
		if t == nil {
			continue
		}
		if speed, ok := t.speeds[id]; ok {
			speeds[i] = speed
		}
	}
	return speeds
}
