// Package metrics records pipeline timings in a Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
)

const namespace = "sitepipe"

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// PrometheusRecorder implements ports.Metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	stageDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	pipelineDuration *prom.HistogramVec
	pipelineResults  *prom.CounterVec
	reloads          *prom.CounterVec
}

var _ ports.Metrics = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder registers the sitepipe collectors on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	p := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"pipeline", "stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage results by outcome",
		}, []string{"pipeline", "stage", "result"}),
		pipelineDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of whole pipeline runs",
			Buckets:   prom.DefBuckets,
		}, []string{"pipeline"}),
		pipelineResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_results_total",
			Help:      "Pipeline results by outcome",
		}, []string{"pipeline", "result"}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Reload notifications sent to browsers",
		}, []string{"kind"}),
	}
	reg.MustRegister(p.stageDuration, p.stageResults, p.pipelineDuration, p.pipelineResults, p.reloads)
	return p
}

// ObserveStage records one stage run.
func (p *PrometheusRecorder) ObserveStage(pipeline, stage string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues(pipeline, stage).Observe(d.Seconds())
	p.stageResults.WithLabelValues(pipeline, stage, result(err)).Inc()
}

// ObservePipeline records one pipeline run.
func (p *PrometheusRecorder) ObservePipeline(pipeline string, d time.Duration, err error) {
	p.pipelineDuration.WithLabelValues(pipeline).Observe(d.Seconds())
	p.pipelineResults.WithLabelValues(pipeline, result(err)).Inc()
}

// IncReload counts a reload notification.
func (p *PrometheusRecorder) IncReload(kind domain.ReloadKind) {
	p.reloads.WithLabelValues(string(kind)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}
