package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuery(t *testing.T) {
	before := testutil.ToFloat64(queryTotal.WithLabelValues("test_op", ResultError))
	ObserveQuery("test_op", time.Now(), errors.New("boom"))
	ObserveQuery("test_op", time.Now(), nil)
	assert.Equal(t, before+1, testutil.ToFloat64(queryTotal.WithLabelValues("test_op", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(queryTotal.WithLabelValues("test_op", ResultOK)))
}

func TestAddUnmatched(t *testing.T) {
	AddUnmatched("unmatched_op", 0)
	AddUnmatched("unmatched_op", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(unmatchedPairs.WithLabelValues("unmatched_op")))
}

func TestTagCacheHit(t *testing.T) {
	hits := testutil.ToFloat64(tagCacheLookups.WithLabelValues("hit"))
	TagCacheHit(true)
	assert.Equal(t, hits+1, testutil.ToFloat64(tagCacheLookups.WithLabelValues("hit")))
}
