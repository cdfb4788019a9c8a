package tagfilter

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/osm"
)

// Set holds the tag keys a way must carry (at least one of) to be indexed.
// The empty set accepts every way.
type Set struct {
	keys map[string]struct{}
}

func New(keys ...string) Set {
	s := Set{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		s.keys[k] = struct{}{}
	}
	return s
}

// Load reads tag keys separated by commas and/or newlines. an empty path yields the empty set.
func Load(path string) (Set, error) {
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Set{}, util.WrapErrorf(err, util.ErrIO, "cannot read tag filter file %s", path)
	}
	defer f.Close()

	keys := make([]string, 0)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		keys = append(keys, util.Fields(sc.Text())...)
	}
	if err := sc.Err(); err != nil {
		return Set{}, util.WrapErrorf(err, util.ErrIO, "cannot read tag filter file %s", path)
	}
	return New(keys...), nil
}

func (s Set) Empty() bool {
	return len(s.keys) == 0
}

func (s Set) Len() int {
	return len(s.keys)
}

func (s Set) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Accept reports whether a way with these tags passes the filter.
func (s Set) Accept(tags osm.Tags) bool {
	if s.Empty() {
		return true
	}
	for _, tag := range tags {
		if s.Has(tag.Key) {
			return true
		}
	}
	return false
}

func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
