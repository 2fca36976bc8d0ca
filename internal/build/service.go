// Package build orchestrates the pipeline and reconciles the output tree:
// desired artifacts are computed bottom-up, diffed against the previous
// build's manifest, written, pruned, and the new manifest persisted.
package build

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
	"git.home.luguber.info/inful/sitegen/internal/assets"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/extension"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markup"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/render"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Options control one build invocation.
type Options struct {
	// Clean empties the output root before the write phase instead of
	// relying on manifest diffing.
	Clean bool

	// Verbose reports each pruned path individually.
	Verbose bool

	// Progress, when set, is invoked with each stage name as it starts.
	Progress func(stage string)
}

// Service runs builds. External collaborators (template engine, markup
// renderer, image transformer, extensions) are injected at construction;
// nil collaborators get the default wiring.
type Service struct {
	registry    *extension.Registry
	engine      render.Engine
	renderer    markup.Renderer
	transformer assets.Transformer
	recorder    metrics.Recorder
	workers     int
}

// NewService creates a build service with default collaborators.
func NewService() *Service {
	return &Service{
		recorder: metrics.NoopRecorder{},
		workers:  runtime.NumCPU(),
	}
}

// WithRegistry sets the extension registry.
func (s *Service) WithRegistry(reg *extension.Registry) *Service {
	s.registry = reg
	return s
}

// WithEngine sets the template engine.
func (s *Service) WithEngine(engine render.Engine) *Service {
	s.engine = engine
	return s
}

// WithMarkupRenderer sets the markup renderer.
func (s *Service) WithMarkupRenderer(r markup.Renderer) *Service {
	s.renderer = r
	return s
}

// WithTransformer sets the image transformation service.
func (s *Service) WithTransformer(t assets.Transformer) *Service {
	s.transformer = t
	return s
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	s.recorder = r
	return s
}

// WithWorkers bounds render/asset concurrency.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Build runs one build invocation and returns the full list of written
// output paths. A failed build leaves the previous manifest and output
// tree intact.
func (s *Service) Build(ctx context.Context, cfg *config.Config, opts Options) ([]string, error) {
	buildID := uuid.NewString()
	bs := newBuildState(cfg, opts, buildID)
	slog.Info("Build starting", logfields.BuildID(buildID))

	err := runStages(ctx, bs, s.recorder, []StageDef{
		{StageLoadManifest, s.stageLoadManifest},
		{StageBeforeHooks, s.stageBeforeHooks},
		{StageLoadContent, s.stageLoadContent},
		{StageIndex, s.stageIndex},
		{StageRender, s.stageRender},
		{StageAssets, s.stageAssets},
		{StageAfterHooks, s.stageAfterHooks},
		{StageAssemble, s.stageAssemble},
		{StageWrite, s.stageWrite},
		{StagePrune, s.stagePrune},
		{StagePersistManifest, s.stagePersistManifest},
	})

	s.recorder.ObserveBuildDuration(time.Since(bs.start))
	if err != nil {
		s.recorder.IncBuildOutcome("failed")
		slog.Error("Build failed", logfields.BuildID(buildID), logfields.Error(err))
		return nil, err
	}

	s.recorder.IncBuildOutcome("success")
	slog.Info("Build complete",
		logfields.BuildID(buildID),
		slog.Int("artifacts", len(bs.Artifacts)),
		slog.Int("written", len(bs.Written)),
		slog.Int("pruned", len(bs.Pruned)))
	return bs.Written, nil
}

func (s *Service) stageLoadManifest(_ context.Context, bs *BuildState) error {
	bs.Previous = LoadManifest(ManifestPath(bs.Cfg.CacheDir))
	return nil
}

func (s *Service) stageBeforeHooks(ctx context.Context, bs *BuildState) error {
	reg := s.registry
	if reg == nil {
		reg = extension.NewRegistry()
		if err := extension.RegisterBuiltins(reg); err != nil {
			return err
		}
	}
	exts, err := reg.ResolveEnabled(bs.Cfg.Extensions)
	if err != nil {
		return serrors.Wrap(err, serrors.CategoryExtension, serrors.SeverityFatal, "extension resolution failed")
	}
	bs.Extensions = exts

	hc := &extension.HookContext{Config: bs.Cfg}
	artifacts, err := extension.RunStage(ctx, exts, extension.StageBeforeBuild, hc)
	if err != nil {
		return serrors.Wrap(err, serrors.CategoryExtension, serrors.SeverityFatal, "before-build hook failed")
	}
	bs.hookArtifacts = append(bs.hookArtifacts, artifacts...)
	return nil
}

func (s *Service) stageLoadContent(_ context.Context, bs *BuildState) error {
	loader := content.NewLoader(bs.Cfg.ContentDir, bs.Cfg.IncludeDrafts, bs.Cfg.ContentTypes)
	pages, err := loader.Load()
	if err != nil {
		return err
	}
	bs.Pages = pages
	return nil
}

func (s *Service) stageIndex(_ context.Context, bs *BuildState) error {
	bs.Index = site.Build(bs.Pages, bs.Cfg.Taxonomies)
	return nil
}

// stageRender renders every content page and listing page. Pages have no
// cross-page dependencies, so rendering fans out across workers; results
// are collected positionally to keep artifact order independent of
// completion order.
func (s *Service) stageRender(ctx context.Context, bs *BuildState) error {
	engine := s.engine
	if engine == nil {
		var err error
		engine, err = render.NewHTMLEngine(bs.Cfg.LayoutsDir)
		if err != nil {
			return serrors.Wrap(err, serrors.CategoryRender, serrors.SeverityFatal, "template engine setup failed")
		}
	}
	renderer := s.renderer
	if renderer == nil {
		renderer = markup.NewGoldmarkRenderer(bs.Cfg.Markup)
	}
	transformer := s.transformer
	if transformer == nil {
		transformer = assets.NewImageTransformer()
	}

	cache, err := assets.NewTransformCache(bs.Cfg.CacheDir, transformer, s.recorder)
	if err != nil {
		return serrors.Wrap(err, serrors.CategoryAsset, serrors.SeverityFatal, "transform cache setup failed")
	}
	rewriter := assets.NewRewriter(bs.Cfg.BaseURL, bs.Cfg.Markup.ExternalLinkRel, bs.Cfg.Markup.ExternalLinkTarget)
	pipeline := assets.NewPipeline(bs.Cfg.StaticDir, cache, rewriter)
	bs.assetPipeline = pipeline

	bridge := render.NewBridge(bs.Cfg, engine, renderer, bs.Index)

	type pageResult struct {
		html      string // pre-rewrite HTML, for after-page-render hooks
		artifacts []artifact.Artifact
	}
	results := make([]pageResult, len(bs.Pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, page := range bs.Pages {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			html, err := bridge.RenderPage(page)
			if err != nil {
				if bs.Cfg.ContinueOnRenderError {
					slog.Error("Page render failed, continuing", logfields.Page(page.SourcePath), logfields.Error(err))
					return nil
				}
				return err
			}
			rewritten, pageArtifacts, err := pipeline.ProcessPage(page, html)
			if err != nil {
				return err
			}
			arts := append([]artifact.Artifact{
				artifact.FromBytes(page.OutputPath(), []byte(rewritten), page.SourcePath),
			}, pageArtifacts...)
			results[i] = pageResult{html: html, artifacts: arts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, page := range bs.Pages {
		if results[i].artifacts == nil {
			continue // render failure under continue-on-error policy
		}
		bs.coreArtifacts = append(bs.coreArtifacts, results[i].artifacts...)

		hc := &extension.HookContext{
			Config: bs.Cfg,
			Pages:  bs.Pages,
			Index:  bs.Index,
			Rendered: &extension.RenderedPage{
				Page: page,
				HTML: results[i].html,
			},
		}
		hookArts, err := extension.RunStage(ctx, bs.Extensions, extension.StageAfterPageRender, hc)
		if err != nil {
			return serrors.Wrap(err, serrors.CategoryExtension, serrors.SeverityFatal, "after-page-render hook failed")
		}
		bs.hookArtifacts = append(bs.hookArtifacts, hookArts...)
	}
	s.recorder.AddPagesRendered(len(bs.Pages))

	return s.renderListings(bridge, bs)
}

// renderListings produces paginated listing pages for every collection and
// taxonomy term. A listing's first page yields to a content page that
// already owns the same destination (a section index.md wins over the
// generated listing).
func (s *Service) renderListings(bridge *render.Bridge, bs *BuildState) error {
	owned := map[string]struct{}{}
	for _, a := range bs.coreArtifacts {
		owned[a.Dest] = struct{}{}
	}

	collections := make([]*site.Collection, 0, len(bs.Index.Collections))
	for _, col := range bs.Index.Collections {
		collections = append(collections, col)
	}
	for _, terms := range bs.Index.Taxonomies {
		for _, col := range terms {
			collections = append(collections, col)
		}
	}
	sort.Slice(collections, func(i, j int) bool { return collections[i].Name < collections[j].Name })

	for _, col := range collections {
		for _, pager := range site.Paginate(col, bs.Cfg.PageSize) {
			dest := pager.OutputPath()
			if _, taken := owned[dest]; taken {
				continue
			}
			html, err := bridge.RenderListing(pager)
			if err != nil {
				return err
			}
			a := artifact.FromBytes(dest, []byte(html), "listing:"+col.Name)
			owned[dest] = struct{}{}
			bs.coreArtifacts = append(bs.coreArtifacts, a)
		}
	}
	return nil
}

func (s *Service) stageAssets(_ context.Context, bs *BuildState) error {
	static, err := bs.assetPipeline.Static()
	if err != nil {
		return err
	}
	bs.coreArtifacts = append(bs.coreArtifacts, static...)
	return nil
}

func (s *Service) stageAfterHooks(ctx context.Context, bs *BuildState) error {
	hc := &extension.HookContext{
		Config: bs.Cfg,
		Pages:  bs.Pages,
		Index:  bs.Index,
	}
	artifacts, err := extension.RunStage(ctx, bs.Extensions, extension.StageAfterBuild, hc)
	if err != nil {
		return serrors.Wrap(err, serrors.CategoryExtension, serrors.SeverityFatal, "after-build hook failed")
	}
	bs.hookArtifacts = append(bs.hookArtifacts, artifacts...)
	return nil
}

// stageAssemble merges core and hook artifacts into one deterministically
// ordered set. Duplicate destinations are a build error; hook artifacts may
// add to the set but never displace a core artifact.
func (s *Service) stageAssemble(_ context.Context, bs *BuildState) error {
	byDest := map[string]string{} // dest -> origin
	merged := make([]artifact.Artifact, 0, len(bs.coreArtifacts)+len(bs.hookArtifacts))

	for _, a := range bs.coreArtifacts {
		if first, dup := byDest[a.Dest]; dup {
			return serrors.DuplicateDestination(a.Dest, first, a.Origin)
		}
		byDest[a.Dest] = a.Origin
		merged = append(merged, a)
	}
	for _, a := range bs.hookArtifacts {
		if first, dup := byDest[a.Dest]; dup {
			return serrors.ExtensionFailed(a.Origin,
				serrors.DuplicateDestination(a.Dest, first, a.Origin))
		}
		byDest[a.Dest] = a.Origin
		merged = append(merged, a)
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Dest < merged[j].Dest })
	bs.Artifacts = merged
	return nil
}
