// Package extension provides the hook system that lets site-level behaviors
// attach to pipeline stages.
//
// Extensions are resolved from an explicit registry keyed by string
// identifier; there is no directory scanning or reflection. They may
// contribute additional output artifacts but can never remove or mutate
// artifacts produced by the core pipeline.
package extension

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Stage identifies a pipeline hook point.
type Stage string

const (
	StageBeforeBuild     Stage = "before-build"
	StageAfterPageRender Stage = "after-page-render"
	StageAfterBuild      Stage = "after-build"
)

// Extension is one named, configured pipeline hook.
type Extension interface {
	// Name is the unique extension identifier (e.g. "sitemap", "feed").
	Name() string

	// Stages lists the pipeline stages this extension subscribes to.
	Stages() []Stage

	// Run executes the extension at one of its subscribed stages. Returned
	// artifacts are added to the build's output set.
	Run(ctx context.Context, stage Stage, hc *HookContext) ([]artifact.Artifact, error)
}

// HookContext carries the stage-relevant build data, read-only by contract.
type HookContext struct {
	Config *config.Config
	Pages  []*content.Page
	Index  *site.Index

	// Rendered is set only at the after-page-render stage.
	Rendered *RenderedPage
}

// RenderedPage is the after-page-render payload.
type RenderedPage struct {
	Page *content.Page
	HTML string
}

// Factory constructs a configured extension from its option map. Factories
// validate their options and fail resolution on invalid configuration.
type Factory func(options map[string]any) (Extension, error)

// Registry maps extension names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Duplicate registration is an error.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("extension name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for %q", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("extension %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Resolve constructs the configured extension for name.
func (r *Registry) Resolve(name string, options map[string]any) (Extension, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("extension %q not registered", name)
	}
	ext, err := factory(options)
	if err != nil {
		return nil, fmt.Errorf("configure extension %q: %w", name, err)
	}
	return ext, nil
}

// ResolveEnabled constructs every enabled extension in configuration order.
// Registration order never matters for invocation; the enabled list is the
// authoritative ordering.
func (r *Registry) ResolveEnabled(enabled []config.ExtensionConfig) ([]Extension, error) {
	exts := make([]Extension, 0, len(enabled))
	for _, ec := range enabled {
		ext, err := r.Resolve(ec.Name, ec.Options)
		if err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, nil
}

// subscribes reports whether ext subscribes to stage.
func subscribes(ext Extension, stage Stage) bool {
	for _, s := range ext.Stages() {
		if s == stage {
			return true
		}
	}
	return false
}

// RunStage invokes every subscribed extension in order, collecting their
// contributed artifacts. The first failing extension aborts with its error.
func RunStage(ctx context.Context, exts []Extension, stage Stage, hc *HookContext) ([]artifact.Artifact, error) {
	var out []artifact.Artifact
	for _, ext := range exts {
		if !subscribes(ext, stage) {
			continue
		}
		artifacts, err := ext.Run(ctx, stage, hc)
		if err != nil {
			return nil, fmt.Errorf("extension %s: %w", ext.Name(), err)
		}
		for i := range artifacts {
			if artifacts[i].Origin == "" {
				artifacts[i].Origin = ext.Name()
			}
		}
		out = append(out, artifacts...)
	}
	return out, nil
}
