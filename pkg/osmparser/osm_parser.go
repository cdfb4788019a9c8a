package osmparser

import (
	"context"
	"time"

	"github.com/lintang-b-s/routeannotator/pkg/datastructure"
	"github.com/lintang-b-s/routeannotator/pkg/tagfilter"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type OsmParser struct {
	filter          tagfilter.Set
	withCoordinates bool
	workers         int
	logger          *zap.Logger
}

func NewOSMParser(filter tagfilter.Set, withCoordinates bool, workers int, logger *zap.Logger) *OsmParser {
	if workers < 1 {
		workers = 1
	}
	return &OsmParser{
		filter:          filter,
		withCoordinates: withCoordinates,
		workers:         workers,
		logger:          logger,
	}
}

func (p *OsmParser) acceptOsmWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 {
		return false
	}
	return p.filter.Accept(way.Tags)
}

/*
Parse builds a WayIndex from one or more extract files.

the way pass runs once per file in parallel, each file producing its accepted ways in
file order. results are merged in argument order, so a way or node pair that appears in
several files ends up with the data of the last file. when coordinates are enabled a
second pass over every file collects the locations of nodes referenced by indexed ways.

any file failing to open or decode fails the whole load; no partial index is returned.
*/
func (p *OsmParser) Parse(ctx context.Context, paths []string) (*datastructure.WayIndex, LoadStats, error) {
	start := time.Now()
	perFile := make([][]parsedWay, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			ways, err := p.scanWays(gctx, path)
			if err != nil {
				return err
			}
			perFile[i] = ways
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, LoadStats{}, err
	}

	builder := datastructure.NewWayIndexBuilder(p.withCoordinates)
	for i, ways := range perFile {
		for _, way := range ways {
			builder.AddWay(way.id, way.nodes, way.tags)
		}
		perFile[i] = nil
	}
	p.logger.Sugar().Infof("indexed %d ways, %d edges", builder.NumberOfWays(), builder.NumberOfEdges())

	if p.withCoordinates {
		for _, path := range paths {
			if err := p.scanNodes(ctx, path, builder); err != nil {
				return nil, LoadStats{}, err
			}
		}
	}

	idx := builder.Build()
	stats := LoadStats{
		Files: len(paths),
		Ways:  idx.NumberOfWays(),
		Edges: idx.NumberOfEdges(),
		Nodes: idx.NumberOfNodes(),
	}
	idx.ForEachNodeLocation(func(datastructure.Index, orb.Point) {
		stats.NodesWithCoordinates++
	})

	p.logger.Info("osm extract loaded",
		zap.Int("files", stats.Files),
		zap.Int("ways", stats.Ways),
		zap.Int("edges", stats.Edges),
		zap.Int("nodes", stats.Nodes),
		zap.Int("nodes_with_coordinates", stats.NodesWithCoordinates),
		zap.Duration("took", time.Since(start)),
	)
	return idx, stats, nil
}

func (p *OsmParser) scanWays(ctx context.Context, path string) ([]parsedWay, error) {
	scanner, format, err := openExtract(ctx, path, scanOptions{skipNodes: true, procs: 1})
	if err != nil {
		return nil, err
	}
	defer scanner.Close()
	p.logger.Sugar().Infof("scanning openstreetmap ways of %s (%s)...", path, format)

	ways := make([]parsedWay, 0)
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if (countWays+1)%100000 == 0 {
			p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		if !p.acceptOsmWay(way) {
			continue
		}
		ways = append(ways, newParsedWay(way))
	}
	if err := scanner.Err(); err != nil {
		return nil, util.WrapErrorf(errors.Wrapf(err, "scan ways of %s", path), util.ErrIO,
			"cannot parse osm extract %s", path)
	}
	return ways, nil
}

func (p *OsmParser) scanNodes(ctx context.Context, path string, builder *datastructure.WayIndexBuilder) error {
	scanner, _, err := openExtract(ctx, path, scanOptions{skipWays: true, procs: p.workers})
	if err != nil {
		return err
	}
	defer scanner.Close()

	countNodes := 0
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if (countNodes+1)%500000 == 0 {
			p.logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
		}
		countNodes++

		if builder.HasNode(node.ID) {
			builder.SetNodeLocation(node.ID, node.Lon, node.Lat)
		}
	}
	if err := scanner.Err(); err != nil {
		return util.WrapErrorf(errors.Wrapf(err, "scan nodes of %s", path), util.ErrIO,
			"cannot parse osm extract %s", path)
	}
	return nil
}
