package speedlookup

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/routeannotator/pkg/concurrent"
	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/metrics"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"go.uber.org/zap"
)

func validatePaths(paths []string) error {
	if len(paths) == 0 {
		return util.NewErrorf(util.ErrBadParamInput, "at least one csv path is required")
	}
	for i, p := range paths {
		if p == "" {
			return util.NewErrorf(util.ErrBadParamInput, "csv path at position %d is empty", i)
		}
	}
	return nil
}

type parsed[T any] struct {
	table T
	err   error
}

// parseAll reads every file on its own worker and returns the tables in argument order,
// or the first error in argument order.
func parseAll[T any](paths []string, workers int, read func(string) (T, error)) ([]T, error) {
	results := concurrent.Run(workers, paths, func(path string) parsed[T] {
		table, err := read(path)
		return parsed[T]{table: table, err: err}
	})
	tables := make([]T, len(results))
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		tables[i] = r.table
	}
	return tables, nil
}

/*
SpeedLookup answers speed queries for ordered node pairs from one or more
`from_node_id,to_node_id,speed` csv files.

every load parses its files into new tables, merges them on top of a copy of the current
table and publishes the result atomically. a load that fails on any file leaves the current
table untouched.
*/
type SpeedLookup struct {
	logger  *zap.Logger
	workers int
	// serializes merges so concurrent loads do not drop each other's rows
	mergeMu sync.Mutex
	table   atomic.Pointer[datastructure.SegmentTable]
}

// New creates a lookup with an empty table, or with the table read from a single
// initial csv path.
func New(logger *zap.Logger, workers int, paths ...string) (*SpeedLookup, error) {
	if len(paths) > 1 {
		return nil, util.NewErrorf(util.ErrBadParamInput, "at most one initial csv path, got %d", len(paths))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	s := &SpeedLookup{logger: logger, workers: workers}
	s.table.Store(datastructure.NewSegmentTable())

	if len(paths) == 1 {
		if err := validatePaths(paths); err != nil {
			return nil, err
		}
		table, err := datastructure.ReadSegmentCSV(paths[0])
		if err != nil {
			return nil, err
		}
		s.table.Store(table)
	}
	return s, nil
}

// LoadCSV merges the files into the table in the background. identical keys take the value
// of the last file. the future resolves with the number of entries after the merge.
func (s *SpeedLookup) LoadCSV(paths []string) (*concurrent.Future[int], error) {
	if err := validatePaths(paths); err != nil {
		return nil, err
	}
	paths = append([]string(nil), paths...)

	return concurrent.Go(func() (int, error) {
		start := time.Now()
		n, err := s.load(paths)
		metrics.ObserveLoad("segment_csv", start, err)
		if err != nil {
			s.logger.Error("loading segment speed csv failed", zap.Strings("paths", paths), zap.Error(err))
			return 0, err
		}
		s.logger.Info("segment speed csv loaded", zap.Strings("paths", paths), zap.Int("segments", n),
			zap.Duration("took", time.Since(start)))
		return n, nil
	}), nil
}

func (s *SpeedLookup) load(paths []string) (int, error) {
	tables, err := parseAll(paths, s.workers, datastructure.ReadSegmentCSV)
	if err != nil {
		return 0, err
	}

	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()
	merged := datastructure.NewSegmentTable()
	merged.Merge(s.table.Load())
	for _, t := range tables {
		merged.Merge(t)
	}
	s.table.Store(merged)
	return merged.Len(), nil
}

func (s *SpeedLookup) Len() int {
	return s.table.Load().Len()
}

// GetRouteSpeeds returns the recorded speed of every consecutive ordered pair of node ids,
// INVALID_SPEED where none was recorded. an empty table is valid and answers all INVALID_SPEED.
func (s *SpeedLookup) GetRouteSpeeds(nodeIDs []uint64) (speeds []uint32, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery("route_speeds", start, err) }()

	if len(nodeIDs) < 2 {
		return nil, util.NewErrorf(util.ErrValidation, "node id array too short, need at least 2 ids, got %d", len(nodeIDs))
	}
	speeds = s.table.Load().RouteSpeeds(nodeIDs)
	metrics.AddUnmatched("route_speeds", countInvalid(speeds))
	return speeds, nil
}
