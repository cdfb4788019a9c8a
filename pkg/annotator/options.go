package annotator

import (
	"fmt"
	"math"
	"runtime"

	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/lintang-b-s/routeannotator/pkg/util"
)

// Options configures an Annotator. Coordinates enables node locations, the node R-tree and
// AnnotateRouteFromLonLats.
type Options struct {
	Coordinates bool

	// SnapTolerance is the largest distance in meters between a query coordinate and the
	// node it resolves to.
	SnapTolerance float64
	TagCacheSize  int
	LoadWorkers   int
}

func DefaultOptions() Options {
	return Options{
		SnapTolerance: pkg.DEFAULT_SNAP_TOLERANCE_METERS,
		TagCacheSize:  pkg.DEFAULT_TAG_CACHE_SIZE,
		LoadWorkers:   runtime.GOMAXPROCS(0),
	}
}

func (o Options) validate() error {
	if math.IsNaN(o.SnapTolerance) || math.IsInf(o.SnapTolerance, 0) || o.SnapTolerance < 0 {
		return util.NewErrorf(util.ErrBadParamInput, "snap tolerance must be a finite non-negative number, got %v", o.SnapTolerance)
	}
	if o.TagCacheSize < 0 {
		return util.NewErrorf(util.ErrBadParamInput, "tag cache size must not be negative, got %d", o.TagCacheSize)
	}
	return nil
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SnapTolerance == 0 {
		o.SnapTolerance = def.SnapTolerance
	}
	if o.TagCacheSize == 0 {
		o.TagCacheSize = def.TagCacheSize
	}
	if o.LoadWorkers < 1 {
		o.LoadWorkers = def.LoadWorkers
	}
	return o
}

// OptionsFromMap builds Options from loosely typed configuration such as decoded JSON.
// "coordinates" is the only recognised key and must hold a bool.
func OptionsFromMap(m map[string]any) (Options, error) {
	opts := DefaultOptions()
	for key, value := range m {
		switch key {
		case "coordinates":
			b, ok := value.(bool)
			if !ok {
				return Options{}, util.NewErrorf(util.ErrBadParamInput,
					"option %q must be a boolean, got %s", key, typeName(value))
			}
			opts.Coordinates = b
		default:
			return Options{}, util.NewErrorf(util.ErrBadParamInput, "unknown option %q", key)
		}
	}
	return opts, nil
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
