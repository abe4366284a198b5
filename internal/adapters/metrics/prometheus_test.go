package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/internal/adapters/metrics"
	"go.trai.ch/sitepipe/internal/core/domain"
)

func scrape(t *testing.T, p *metrics.PrometheusRecorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusRecorder_Scrape(t *testing.T) {
	p := metrics.NewPrometheusRecorder(nil)
	p.ObserveStage("build", "styles", 150*time.Millisecond, nil)
	p.ObserveStage("build", "lint-html", 10*time.Millisecond, errors.New("boom"))
	p.ObservePipeline("build", 500*time.Millisecond, errors.New("boom"))
	p.IncReload(domain.ReloadCSS)
	p.IncReload(domain.ReloadCSS)

	body := scrape(t, p)
	assert.Contains(t, body, `sitepipe_stage_duration_seconds_count{pipeline="build",stage="styles"} 1`)
	assert.Contains(t, body, `sitepipe_stage_results_total{pipeline="build",result="failed",stage="lint-html"} 1`)
	assert.Contains(t, body, `sitepipe_pipeline_results_total{pipeline="build",result="failed"} 1`)
	assert.Contains(t, body, `sitepipe_reloads_total{kind="css"} 2`)
}

func TestPrometheusRecorder_SharedRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	metrics.NewPrometheusRecorder(reg)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, mfs, "vectors without observations are not exported")

	assert.Panics(t, func() { metrics.NewPrometheusRecorder(reg) })
}
