package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
	"git.home.luguber.info/inful/sitegen/internal/assets"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/extension"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// StageName is a strongly-typed identifier for a build stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names, in execution order.
const (
	StageLoadManifest    StageName = "load_manifest"
	StageBeforeHooks     StageName = "before_build_hooks"
	StageLoadContent     StageName = "load_content"
	StageIndex           StageName = "index"
	StageRender          StageName = "render"
	StageAssets          StageName = "assets"
	StageAfterHooks      StageName = "after_build_hooks"
	StageAssemble        StageName = "assemble"
	StageWrite           StageName = "write"
	StagePrune           StageName = "prune"
	StagePersistManifest StageName = "persist_manifest"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the stage name and cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// BuildState carries mutable state and timings across stages of one build.
type BuildState struct {
	Cfg     *config.Config
	Opts    Options
	BuildID string

	Previous   *Manifest
	Pages      []*content.Page
	Index      *site.Index
	Extensions []extension.Extension

	// Artifacts is the assembled, deterministically-ordered output set.
	Artifacts []artifact.Artifact

	// coreArtifacts and hookArtifacts are merged during assembly; keeping
	// them apart preserves the rule that hooks add but never replace.
	coreArtifacts []artifact.Artifact
	hookArtifacts []artifact.Artifact

	Written []string
	Pruned  []string

	assetPipeline *assets.Pipeline

	Timings map[StageName]time.Duration
	start   time.Time
}

func newBuildState(cfg *config.Config, opts Options, buildID string) *BuildState {
	return &BuildState{
		Cfg:     cfg,
		Opts:    opts,
		BuildID: buildID,
		Timings: make(map[StageName]time.Duration),
		start:   time.Now(),
	}
}

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first error. Unknown errors are classified fatal.
func runStages(ctx context.Context, bs *BuildState, recorder metrics.Recorder, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return newCanceledStageError(st.Name, ctx.Err())
		default:
		}

		if bs.Opts.Progress != nil {
			bs.Opts.Progress(string(st.Name))
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Timings[st.Name] = dur
		recorder.ObserveStageDuration(string(st.Name), dur)

		if err != nil {
			var se *StageError
			if !errors.As(err, &se) {
				se = newFatalStageError(st.Name, err)
			}
			switch se.Kind {
			case StageErrorCanceled:
				recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			default:
				recorder.IncStageResult(string(st.Name), metrics.ResultFatal)
			}
			return se
		}

		recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
		slog.Debug("Stage complete",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
