package domain

import "go.trai.ch/zerr"

var (
	// ErrPipelineAlreadyExists is returned when registering a pipeline under a name that is already taken.
	ErrPipelineAlreadyExists = zerr.New("pipeline already exists")

	// ErrPipelineNotFound is returned when a requested pipeline is not registered.
	ErrPipelineNotFound = zerr.New("pipeline not found")

	// ErrEmptyComposition is returned when a series or parallel group has no members.
	ErrEmptyComposition = zerr.New("composition has no stages")

	// ErrInvalidStage is returned when a stage description is incomplete.
	ErrInvalidStage = zerr.New("invalid stage")

	// ErrStepAlreadyExists is returned when attempting to add a step with a name that already exists.
	ErrStepAlreadyExists = zerr.New("step already exists")

	// ErrMissingDependency is returned when a step references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the step dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrNoPipelinesSpecified is returned when no pipeline names are given to run.
	ErrNoPipelinesSpecified = zerr.New("no pipelines specified")

	// ErrInvalidWatchRule is returned when a watch rule has no patterns or an invalid glob.
	ErrInvalidWatchRule = zerr.New("invalid watch rule")

	// ErrInvalidConfig is returned when the resolved configuration is unusable.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
	ErrConfigNotFound = zerr.New("could not find sitepipe.yaml")

	// ErrPipelineFailed is returned when a pipeline run fails.
	ErrPipelineFailed = zerr.New("pipeline execution failed")

	// ErrStageFailed is returned when a single stage fails.
	ErrStageFailed = zerr.New("stage execution failed")

	// ErrUnknownStageKind is returned when no handler is registered for a stage kind.
	ErrUnknownStageKind = zerr.New("no handler for stage kind")

	// ErrNoInputs is returned when a stage that requires inputs resolved none.
	ErrNoInputs = zerr.New("stage matched no input files")

	// ErrInvalidGlob is returned when an input or watch pattern is malformed.
	ErrInvalidGlob = zerr.New("invalid glob pattern")

	// ErrInputResolutionFailed is returned when input resolution fails.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrOutputPathOutsideRoot is returned when a write would escape the output root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside output root")

	// ErrOutputClearFailed is returned when the output root cannot be cleared.
	ErrOutputClearFailed = zerr.New("failed to clear output directory")

	// ErrOutputWriteFailed is returned when an output file cannot be written.
	ErrOutputWriteFailed = zerr.New("failed to write output file")

	// ErrFileReadFailed is returned when an input file cannot be read.
	ErrFileReadFailed = zerr.New("failed to read input file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrDataFileParseFailed is returned when the template data file is not a JSON object.
	ErrDataFileParseFailed = zerr.New("failed to parse template data file")

	// ErrTemplateRenderFailed is returned when a template fails to parse or execute.
	ErrTemplateRenderFailed = zerr.New("failed to render template")

	// ErrMinifyFailed is returned when a minifier rejects its input.
	ErrMinifyFailed = zerr.New("failed to minify")

	// ErrStyleCompileFailed is returned when the style compiler exits with an error.
	ErrStyleCompileFailed = zerr.New("failed to compile stylesheet")

	// ErrStylePostProcessFailed is returned when compiled CSS cannot be post-processed.
	ErrStylePostProcessFailed = zerr.New("failed to post-process stylesheet")

	// ErrSpriteBuildFailed is returned when an icon cannot be merged into the sprite.
	ErrSpriteBuildFailed = zerr.New("failed to build icon sprite")

	// ErrLintFailed is returned when built HTML violates enabled lint rules.
	ErrLintFailed = zerr.New("html lint failed")

	// ErrDevServerStartFailed is returned when the dev server cannot bind its listener.
	ErrDevServerStartFailed = zerr.New("failed to start dev server")

	// ErrWatcherStartFailed is returned when the file watcher cannot subscribe to the source tree.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")
)

// Annotate attaches key/value metadata to a sentinel. Unlike zerr.With on the
// sentinel itself, the result still matches the sentinel with errors.Is.
func Annotate(sentinel error, kv ...any) error {
	err := zerr.Wrap(sentinel, "")
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		err = zerr.With(err, key, kv[i+1])
	}
	return err
}

// Wrap classifies cause under sentinel. The result reads "sentinel: cause"
// and matches both with errors.Is. A nil cause yields nil.
func Wrap(cause, sentinel error) error {
	if cause == nil {
		return nil
	}
	return &classifiedError{sentinel: sentinel, cause: cause}
}

type classifiedError struct {
	sentinel error
	cause    error
}

func (e *classifiedError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

// Message returns the sentinel text alone, the way zerr errors report themselves.
func (e *classifiedError) Message() string {
	return e.sentinel.Error()
}

func (e *classifiedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}
