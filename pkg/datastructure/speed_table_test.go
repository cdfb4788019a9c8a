package datastructure

import (
	"testing"

	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invalid = pkg.INVALID_SPEED

func TestReadSegmentCSV(t *testing.T) {
	table, err := ReadSegmentCSV("testdata/congestion.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	speed, ok := table.Get(86909066, 86909064)
	require.True(t, ok)
	assert.Equal(t, uint32(79), speed)

	_, ok = table.Get(86909064, 86909066)
	assert.False(t, ok, "segments are ordered")
}

func TestSegmentTableMerge(t *testing.T) {
	first, err := ReadSegmentCSV("testdata/congestion.csv")
	require.NoError(t, err)
	second, err := ReadSegmentCSV("testdata/congestion2.csv")
	require.NoError(t, err)

	merged := NewSegmentTable()
	merged.Merge(first)
	merged.Merge(second)

	assert.Equal(t, []uint32{79, 80, invalid}, merged.RouteSpeeds([]uint64{86909066, 86909064, 86909066, 999}))
	assert.Equal(t, []uint32{62}, merged.RouteSpeeds([]uint64{86909064, 86909065}), "later file wins")
}

func TestReadSegmentCSVInvalidSpeedRow(t *testing.T) {
	table, err := ReadSegmentCSV("testdata/invalid-speed.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []uint32{invalid, 10}, table.RouteSpeeds([]uint64{86909064, 86909065, 86909070}))

	first, err := ReadSegmentCSV("testdata/congestion.csv")
	require.NoError(t, err)
	merged := NewSegmentTable()
	merged.Merge(first)
	merged.Merge(table)
	assert.Equal(t, []uint32{79, invalid}, merged.RouteSpeeds([]uint64{86909066, 86909064, 86909065}),
		"a later invalid speed clears the segment")
}

func TestSegmentTableRouteSpeeds(t *testing.T) {
	var empty *SegmentTable
	assert.Equal(t, []uint32{invalid, invalid, invalid}, empty.RouteSpeeds([]uint64{90, 91, 92, 93}))
	assert.Equal(t, []uint32{invalid, invalid, invalid}, NewSegmentTable().RouteSpeeds([]uint64{90, 91, 92, 93}))
	assert.Empty(t, NewSegmentTable().RouteSpeeds([]uint64{90}))
}

func TestReadSegmentCSVErrors(t *testing.T) {
	testCases := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{name: "missing file", path: "testdata/nope.csv", wantMsg: "testdata/nope.csv"},
		{name: "non numeric speed", path: "testdata/malformed.csv", wantMsg: "testdata/malformed.csv:2"},
		{name: "too few fields", path: "testdata/short-row.csv", wantMsg: "testdata/short-row.csv"},
		{name: "speed above 32 bits", path: "testdata/overflow.csv", wantMsg: "testdata/overflow.csv:2"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSegmentCSV(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, util.ErrIO)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReadWaySpeedCSV(t *testing.T) {
	table, err := ReadWaySpeedCSV("testdata/wayspeeds.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 1, table.Skipped())

	// 30 mph -> round(48.27)
	assert.Equal(t, []uint32{48, 50, 40, invalid, invalid},
		table.WaySpeeds([]uint64{6091729, 93091314, 80378486, 1, 2}))

	var empty *WaySpeedTable
	assert.Equal(t, []uint32{invalid}, empty.WaySpeeds([]uint64{6091729}))
}

func TestReadWaySpeedCSVBadUnit(t *testing.T) {
	_, err := ReadWaySpeedCSV("testdata/bad-unit.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-unit.csv:1")
}
