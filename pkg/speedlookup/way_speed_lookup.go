package speedlookup

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/lintang-b-s/routeannotator/pkg/concurrent"
	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/metrics"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"go.uber.org/zap"
)

// WaySpeedLookup answers speed queries by osm way id from `way_id,name,unit,speed` csv files.
// loads behave like SpeedLookup loads.
type WaySpeedLookup struct {
	logger  *zap.Logger
	workers int
	mergeMu sync.Mutex
	table   atomic.Pointer[datastructure.WaySpeedTable]
}

func NewWaySpeedLookup(logger *zap.Logger, workers int) *WaySpeedLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	w := &WaySpeedLookup{logger: logger, workers: workers}
	w.table.Store(datastructure.NewWaySpeedTable())
	return w
}

func (w *WaySpeedLookup) LoadCSV(paths []string) (*concurrent.Future[int], error) {
	if err := validatePaths(paths); err != nil {
		return nil, err
	}
	paths = append([]string(nil), paths...)

	return concurrent.Go(func() (int, error) {
		start := time.Now()
		tables, err := parseAll(paths, w.workers, datastructure.ReadWaySpeedCSV)
		metrics.ObserveLoad("way_csv", start, err)
		if err != nil {
			w.logger.Error("loading way speed csv failed", zap.Strings("paths", paths), zap.Error(err))
			return 0, err
		}

		w.mergeMu.Lock()
		merged := datastructure.NewWaySpeedTable()
		merged.Merge(w.table.Load())
		for _, t := range tables {
			merged.Merge(t)
		}
		w.table.Store(merged)
		w.mergeMu.Unlock()

		w.logger.Info("way speed csv loaded", zap.Strings("paths", paths), zap.Int("ways", merged.Len()),
			zap.Int("skipped", merged.Skipped()))
		return merged.Len(), nil
	}), nil
}

func (w *WaySpeedLookup) Len() int {
	return w.table.Load().Len()
}

// GetWaySpeeds returns one speed in km/h per osm way id, INVALID_SPEED for unknown ways.
func (w *WaySpeedLookup) GetWaySpeeds(wayIDs []uint64) (speeds []uint32, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery("way_speeds", start, err) }()

	if len(wayIDs) == 0 {
		return nil, util.NewErrorf(util.ErrValidation, "way id array must not be empty")
	}
	speeds = w.table.Load().WaySpeeds(wayIDs)
	metrics.AddUnmatched("way_speeds", countInvalid(speeds))
	return speeds, nil
}

func countInvalid(speeds []uint32) int {
	n := 0
	for _, s := range speeds {
		if s == pkg.INVALID_SPEED {
			n++
		}
	}
	return n
}
