package annotator

import (
	"context"
	"maps"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/routeannotator/pkg/concurrent"
	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/metrics"
	"github.com/lintang-b-s/routeannotator/pkg/osmparser"
	"github.com/lintang-b-s/routeannotator/pkg/spatialindex"
	"github.com/lintang-b-s/routeannotator/pkg/tagfilter"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// loadedIndex is everything one successful load produced. it is never mutated after publish,
// except for the tag cache which is safe for concurrent use.
type loadedIndex struct {
	ways  *datastructure.WayIndex
	rtree *spatialindex.Rtree
	stats osmparser.LoadStats
	tags  *lru.Cache[datastructure.WayID, map[string]string]
}

/*
Annotator matches consecutive node pairs (or coordinates snapped to nodes) of a route
against the ways of one or more OSM extracts.

an Annotator owns a single index. loads build a fresh index in the background and publish it
atomically once complete, so queries never observe a partially built index and a failed load
keeps the previous one.
*/
type Annotator struct {
	opts    Options
	logger  *zap.Logger
	current atomic.Pointer[loadedIndex]
}

func New(opts Options, logger *zap.Logger) (*Annotator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annotator{
		opts:   opts.withDefaults(),
		logger: logger,
	}, nil
}

func (a *Annotator) Options() Options {
	return a.opts
}

// LoadOSMExtract parses the extract files in the background. paths must be non-empty;
// tagsPath may be empty for no tag filter. the returned future resolves once the new index
// is live, or with the error that aborted the load.
func (a *Annotator) LoadOSMExtract(paths []string, tagsPath string) (*concurrent.Future[osmparser.LoadStats], error) {
	if len(paths) == 0 {
		return nil, util.NewErrorf(util.ErrBadParamInput, "at least one osm extract path is required")
	}
	for i, p := range paths {
		if p == "" {
			return nil, util.NewErrorf(util.ErrBadParamInput, "osm extract path at position %d is empty", i)
		}
	}
	paths = append([]string(nil), paths...)

	return concurrent.Go(func() (osmparser.LoadStats, error) {
		start := time.Now()
		stats, err := a.load(paths, tagsPath)
		metrics.ObserveLoad("osm", start, err)
		if err != nil {
			a.logger.Error("loading osm extract failed", zap.Strings("paths", paths), zap.Error(err))
		}
		return stats, err
	}), nil
}

func (a *Annotator) load(paths []string, tagsPath string) (osmparser.LoadStats, error) {
	filter, err := tagfilter.Load(tagsPath)
	if err != nil {
		return osmparser.LoadStats{}, err
	}
	if !filter.Empty() {
		a.logger.Info("indexing ways by tag filter", zap.Strings("keys", filter.Keys()))
	}

	parser := osmparser.NewOSMParser(filter, a.opts.Coordinates, a.opts.LoadWorkers, a.logger)
	ways, stats, err := parser.Parse(context.Background(), paths)
	if err != nil {
		return osmparser.LoadStats{}, err
	}

	next := &loadedIndex{
		ways:  ways,
		stats: stats,
	}
	if a.opts.Coordinates {
		next.rtree = spatialindex.NewRtree()
		next.rtree.Build(ways, a.logger)
	}
	if a.opts.TagCacheSize > 0 {
		next.tags, err = lru.New[datastructure.WayID, map[string]string](a.opts.TagCacheSize)
		if err != nil {
			return osmparser.LoadStats{}, util.WrapErrorf(err, util.ErrInternalServerError, "cannot create tag cache")
		}
	}

	a.current.Store(next)
	return stats, nil
}

func (a *Annotator) index() (*loadedIndex, error) {
	idx := a.current.Load()
	if idx == nil {
		return nil, util.NewErrorf(util.ErrNotInitialized, "annotator not yet initialized, load an osm extract first")
	}
	return idx, nil
}

// Loaded reports whether a load has completed successfully.
func (a *Annotator) Loaded() bool {
	return a.current.Load() != nil
}

func (a *Annotator) Stats() (osmparser.LoadStats, bool) {
	idx := a.current.Load()
	if idx == nil {
		return osmparser.LoadStats{}, false
	}
	return idx.stats, true
}

// AnnotateRouteFromNodeIDs returns, for every consecutive pair of osm node ids, the way id
// containing that pair in either direction, or InvalidWayID.
func (a *Annotator) AnnotateRouteFromNodeIDs(nodeIDs []uint64) (route datastructure.AnnotatedRoute, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery("annotate_node_ids", start, err) }()

	idx, err := a.index()
	if err != nil {
		return nil, err
	}
	if len(nodeIDs) < 2 {
		return nil, util.NewErrorf(util.ErrValidation, "node id array too short, need at least 2 ids, got %d", len(nodeIDs))
	}

	route = idx.ways.AnnotateRoute(idx.ways.ExternalToInternal(nodeIDs))
	metrics.AddUnmatched("annotate_node_ids", countUnmatched(route))
	return route, nil
}

// AnnotateRouteFromLonLats snaps every coordinate to the nearest indexed node within the snap
// tolerance and annotates the resulting node pairs. pairs touching an unsnapped coordinate
// are unmatched, including coordinates outside the valid lon/lat range.
func (a *Annotator) AnnotateRouteFromLonLats(coords []orb.Point) (route datastructure.AnnotatedRoute, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery("annotate_lon_lats", start, err) }()

	idx, err := a.index()
	if err != nil {
		return nil, err
	}
	if err := validateCoordinates(coords); err != nil {
		return nil, err
	}
	if !a.opts.Coordinates || idx.rtree == nil {
		return nil, util.NewErrorf(util.ErrCoordinatesNotSupported,
			"annotator was not created with coordinates support")
	}

	nodes := make([]datastructure.Index, len(coords))
	for i, c := range coords {
		n, ok := idx.rtree.Nearest(c, a.opts.SnapTolerance)
		if !ok {
			n = datastructure.InvalidIndex
		}
		nodes[i] = n
	}

	route = idx.ways.AnnotateRoute(nodes)
	metrics.AddUnmatched("annotate_lon_lats", countUnmatched(route))
	return route, nil
}

func validateCoordinates(coords []orb.Point) error {
	if len(coords) < 2 {
		return util.NewErrorf(util.ErrValidation, "coordinate array too short, need at least 2 coordinates, got %d", len(coords))
	}
	for i, c := range coords {
		if !util.IsFinite(c.Lon()) || !util.IsFinite(c.Lat()) {
			return util.NewErrorf(util.ErrValidation, "coordinate %d is not a number: [%v,%v]", i, c.Lon(), c.Lat())
		}
	}
	return nil
}

func countUnmatched(route datastructure.AnnotatedRoute) int {
	n := 0
	for i := range route {
		if !route.Matched(i) {
			n++
		}
	}
	return n
}

// GetAllTagsForWayID returns the tags of a way id previously returned by an annotate call,
// including the _way_id tag holding the osm way id. the map belongs to the caller.
func (a *Annotator) GetAllTagsForWayID(wayID uint64) (tags map[string]string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery("way_tags", start, err) }()

	idx, err := a.index()
	if err != nil {
		return nil, err
	}
	if wayID >= uint64(datastructure.InvalidWayID) {
		return nil, util.NewErrorf(util.ErrNotFound, "way id %d not found", wayID)
	}
	id := datastructure.WayID(wayID)

	if idx.tags != nil {
		if cached, ok := idx.tags.Get(id); ok {
			metrics.TagCacheHit(true)
			return maps.Clone(cached), nil
		}
		metrics.TagCacheHit(false)
	}

	tags, ok := idx.ways.Tags(id)
	if !ok {
		return nil, util.NewErrorf(util.ErrNotFound, "way id %d not found", wayID)
	}
	if idx.tags != nil {
		idx.tags.Add(id, tags)
		tags = maps.Clone(tags)
	}
	return tags, nil
}

// NodeCoordinates returns the stored location of every osm node id, and whether it is known.
func (a *Annotator) NodeCoordinates(nodeIDs []uint64) ([]orb.Point, []bool, error) {
	idx, err := a.index()
	if err != nil {
		return nil, nil, err
	}
	if !a.opts.Coordinates {
		return nil, nil, util.NewErrorf(util.ErrCoordinatesNotSupported,
			"annotator was not created with coordinates support")
	}

	points := make([]orb.Point, len(nodeIDs))
	known := make([]bool, len(nodeIDs))
	for i, n := range idx.ways.ExternalToInternal(nodeIDs) {
		if n == datastructure.InvalidIndex {
			continue
		}
		points[i], known[i] = idx.ways.NodeLocation(n)
	}
	return points, known, nil
}
