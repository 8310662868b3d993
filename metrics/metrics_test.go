package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.IncFetchFailure()
	m.IncAIFallback()
	m.IncAIFallback()
	m.IncDuplicate()
	m.IncLead("yc")
	m.IncLead("yc")
	m.IncLead("reddit")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AIFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Duplicates))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LeadsTotal.WithLabelValues("yc")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeadsTotal.WithLabelValues("reddit")))
}

func TestTrackReference(t *testing.T) {
	m := New()
	done := m.TrackReference()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReferencesRunning))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ReferencesRunning))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncFetchFailure()
		m.IncAIFallback()
		m.IncDuplicate()
		m.IncLead("yc")
		m.ObserveStage(StageFetch, time.Now())
		m.TrackReference()()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.IncFetchFailure()
	m.ObserveStage(StageFetch, time.Now().Add(-time.Second))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "leadgen_fetch_failures_total 1")
	assert.Contains(t, string(body), `leadgen_stage_duration_seconds_count{stage="fetch"} 1`)
}
