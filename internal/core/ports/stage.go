package ports

import (
	"context"
	"io"

	"go.trai.ch/sitepipe/internal/core/domain"
)

// StageJob is everything a handler needs to execute one stage.
type StageJob struct {
	Stage  *domain.Stage
	Config *domain.Config
	Store  OutputStore
	// Inputs are the files the stage globs resolved to, sorted by path.
	Inputs []domain.SourceFile
	// Log receives human-readable stage output.
	Log io.Writer
}

// StageHandler executes one kind of stage.
//
//go:generate mockgen -source=stage.go -destination=mocks/mock_stage.go -package=mocks
type StageHandler interface {
	Handle(ctx context.Context, job *StageJob) error
}

// StageRunner resolves inputs for a stage and hands it to the matching handler.
type StageRunner interface {
	RunStage(ctx context.Context, stage *domain.Stage, log io.Writer) error
}

// PipelineRunner executes a whole task graph.
type PipelineRunner interface {
	Run(ctx context.Context, tg *domain.TaskGraph) error
}
