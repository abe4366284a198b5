package ports

import (
	"net/http"
	"time"

	"go.trai.ch/sitepipe/internal/core/domain"
)

// Metrics records pipeline durations and outcomes.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	ObserveStage(pipeline, stage string, d time.Duration, err error)
	ObservePipeline(pipeline string, d time.Duration, err error)
	IncReload(kind domain.ReloadKind)
	// Handler exposes the collected metrics over HTTP.
	Handler() http.Handler
}
