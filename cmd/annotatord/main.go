package main

import (
	"context"
	"flag"
	"strings"

	"github.com/lintang-b-s/routeannotator/pkg/annotator"
	"github.com/lintang-b-s/routeannotator/pkg/http"
	"github.com/lintang-b-s/routeannotator/pkg/http/usecases"
	"github.com/lintang-b-s/routeannotator/pkg/logger"
	"github.com/lintang-b-s/routeannotator/pkg/speedlookup"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	osmFiles     = flag.String("osm", "", "comma separated list of osm extracts (.osm, .osm.bz2, .osm.pbf)")
	tagsFile     = flag.String("tags", "", "file listing the tag keys a way needs to be indexed (optional)")
	coordinates  = flag.Bool("coordinates", false, "keep node locations to support coordinate queries")
	segmentFiles = flag.String("segment-csv", "", "comma separated list of from,to,speed csv files (optional)")
	wayFiles     = flag.String("way-csv", "", "comma separated list of way_id,name,unit,speed csv files (optional)")
	rateLimit    = flag.Bool("rate-limit", false, "enable the request rate limiter")
)

func splitList(s string) []string {
	parts := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := util.LoadConfig(); err != nil {
		logger.Fatal("reading config failed", zap.Error(err))
	}

	paths := splitList(*osmFiles)
	if len(paths) == 0 {
		logger.Fatal("at least one osm extract is required, use -osm")
	}

	opts := annotator.DefaultOptions()
	opts.Coordinates = *coordinates
	opts.SnapTolerance = viper.GetFloat64("SNAP_TOLERANCE_METERS")
	opts.TagCacheSize = viper.GetInt("TAG_CACHE_SIZE")
	opts.LoadWorkers = viper.GetInt("LOAD_WORKERS")

	routeAnnotator, err := annotator.New(opts, logger)
	if err != nil {
		logger.Fatal("creating annotator failed", zap.Error(err))
	}
	segmentSpeeds, err := speedlookup.New(logger, opts.LoadWorkers)
	if err != nil {
		logger.Fatal("creating speed lookup failed", zap.Error(err))
	}
	waySpeeds := speedlookup.NewWaySpeedLookup(logger, opts.LoadWorkers)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	defer cleanup()

	loaded, err := routeAnnotator.LoadOSMExtract(paths, *tagsFile)
	if err != nil {
		logger.Fatal("loading osm extract failed", zap.Error(err))
	}
	if files := splitList(*segmentFiles); len(files) > 0 {
		f, err := segmentSpeeds.LoadCSV(files)
		if err != nil {
			logger.Fatal("loading segment speeds failed", zap.Error(err))
		}
		if _, err := f.Wait(ctx); err != nil {
			logger.Fatal("loading segment speeds failed", zap.Error(err))
		}
	}
	if files := splitList(*wayFiles); len(files) > 0 {
		f, err := waySpeeds.LoadCSV(files)
		if err != nil {
			logger.Fatal("loading way speeds failed", zap.Error(err))
		}
		if _, err := f.Wait(ctx); err != nil {
			logger.Fatal("loading way speeds failed", zap.Error(err))
		}
	}
	stats, err := loaded.Wait(ctx)
	if err != nil {
		logger.Fatal("loading osm extract failed", zap.Error(err))
	}
	logger.Info("route annotator ready", zap.Int("ways", stats.Ways), zap.Int("edges", stats.Edges))

	api := http.NewServer(logger)
	annotationService := usecases.NewAnnotationService(logger, routeAnnotator)
	speedService := usecases.NewSpeedService(logger, segmentSpeeds, waySpeeds)
	if _, err := api.Use(ctx, logger, *rateLimit, annotationService, speedService); err != nil {
		logger.Fatal("starting api failed", zap.Error(err))
	}
	go func() {
		if err := api.Wait(); err != nil && ctx.Err() == nil {
			logger.Fatal("api stopped with error", zap.Error(err))
		}
	}()

	signal := http.GracefulShutdown()
	logger.Info("Route Annotator Server Stopping", zap.String("signal", signal.String()))
	cleanup()
	if err := api.Wait(); err != nil {
		logger.Error("api stopped with error", zap.Error(err))
	}
	logger.Info("Route Annotator Server Stopped")
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
