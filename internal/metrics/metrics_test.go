package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.PageFetched(20 * time.Millisecond)
	m.PageFetched(30 * time.Millisecond)
	m.PageFailed()
	m.Discarded()
	m.Revalidated(3)
	m.Reordered(nil)
	m.Reordered(errors.New("x"))
	m.Refreshed(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleDiscarded))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Revalidations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reorders.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reorders.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemRefreshes.WithLabelValues("ok")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.PageFetched(time.Second)
	m.PageFailed()
	m.Discarded()
	m.Revalidated(1)
	m.Reordered(nil)
	m.Refreshed(nil)
	m.Reset()
	m.Removed()
	m.TaskStarted()
	m.TaskDone()
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Removed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "channelsync_local_removals_total 1"))
}
