package metrics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQueryFailure(t *testing.T) {
	before := testutil.ToFloat64(StoreQueryFailures.WithLabelValues("get_related"))

	ObserveQueryFailure("get_related")

	after := testutil.ToFloat64(StoreQueryFailures.WithLabelValues("get_related"))
	assert.Equal(t, before+1, after)
}

func TestObserveSchemaFallback(t *testing.T) {
	before := testutil.ToFloat64(SchemaFallbacks.WithLabelValues("likes_count"))

	ObserveSchemaFallback("likes_count")
	ObserveSchemaFallback("likes_count")

	assert.Equal(t, before+2, testutil.ToFloat64(SchemaFallbacks.WithLabelValues("likes_count")))
}

func TestObserveExport(t *testing.T) {
	before := testutil.ToFloat64(ExportRecords.WithLabelValues("csv"))

	ObserveExport("csv", "success", 0.2, 7)

	assert.Equal(t, before+7, testutil.ToFloat64(ExportRecords.WithLabelValues("csv")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(ExportDuration), 1)
}

type fakePool struct{ stats sql.DBStats }

func (f fakePool) Stats() sql.DBStats { return f.stats }

func TestPoolStatsCollector(t *testing.T) {
	c := NewPoolStatsCollector(fakePool{stats: sql.DBStats{OpenConnections: 4, Idle: 3, InUse: 1}})
	c.Start(time.Hour)
	c.Stop()

	assert.Equal(t, float64(4), testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("open")))
	assert.Equal(t, float64(3), testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("idle")))
	assert.Equal(t, float64(1), testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("in_use")))
}
