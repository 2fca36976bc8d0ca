// Package assets produces copy and transform artifacts for static files,
// content-colocated assets, and parameterized image transforms.
//
// The pipeline never deletes anything: stale outputs (including old
// transformed images) are pruned by the reconciler's manifest diff.
package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
	"git.home.luguber.info/inful/sitegen/internal/content"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// Pipeline resolves asset references into output artifacts.
type Pipeline struct {
	staticDir string
	cache     *TransformCache
	rewriter  *Rewriter
}

// NewPipeline wires the asset pipeline for one build invocation.
func NewPipeline(staticDir string, cache *TransformCache, rewriter *Rewriter) *Pipeline {
	return &Pipeline{staticDir: staticDir, cache: cache, rewriter: rewriter}
}

// Static returns a verbatim copy artifact for every file under the static
// root, preserving relative paths. A missing static root is not an error.
func (p *Pipeline) Static() ([]artifact.Artifact, error) {
	if p.staticDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(p.staticDir); os.IsNotExist(err) {
		return nil, nil
	}

	var artifacts []artifact.Artifact
	err := filepath.WalkDir(p.staticDir, func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.staticDir, fp)
		if err != nil {
			return err
		}
		a, err := artifact.FromFile(filepath.ToSlash(rel), fp, "static")
		if err != nil {
			return err
		}
		artifacts = append(artifacts, a)
		return nil
	})
	if err != nil {
		return nil, serrors.Wrap(err, serrors.CategoryAsset, serrors.SeverityFatal, "static asset walk failed")
	}

	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Dest < artifacts[j].Dest })
	return artifacts, nil
}

// ProcessPage resolves every asset reference of page, produces the copy and
// transform artifacts, and returns the page HTML with references rewritten
// to their final output-relative URLs.
func (p *Pipeline) ProcessPage(page *content.Page, html string) (string, []artifact.Artifact, error) {
	if len(page.AssetRefs) == 0 {
		rewritten, err := p.rewriter.Rewrite(html, nil)
		return rewritten, nil, err
	}

	pageDir := strings.TrimSuffix(page.OutputPath(), "index.html")
	srcDir := filepath.Dir(page.AbsPath)

	urlMap := make(map[string]string, len(page.AssetRefs))
	seen := map[string]struct{}{}
	var artifacts []artifact.Artifact
	add := func(a artifact.Artifact) {
		if _, dup := seen[a.Dest]; dup {
			return
		}
		seen[a.Dest] = struct{}{}
		artifacts = append(artifacts, a)
	}

	for _, ref := range page.AssetRefs {
		file, query := splitRef(ref)
		srcAbs := filepath.Join(srcDir, filepath.FromSlash(file))
		if _, err := os.Stat(srcAbs); err != nil {
			return "", nil, serrors.AssetMissing(ref, page.SourcePath)
		}

		// Verbatim copy next to the page output, preserving the relative path.
		dest := path.Join(pageDir, file)
		copied, err := artifact.FromFile(dest, srcAbs, page.SourcePath)
		if err != nil {
			return "", nil, serrors.Wrap(err, serrors.CategoryAsset, serrors.SeverityFatal, "asset copy failed").
				WithContext("reference", ref)
		}
		add(copied)

		params, isTransform, err := ParseTransformParams(query)
		if err != nil {
			return "", nil, serrors.TransformFailed(ref, err)
		}
		if !isTransform {
			urlMap[ref] = "/" + dest
			continue
		}

		transformed, url, err := p.transform(page, file, srcAbs, copied.Fingerprint, params)
		if err != nil {
			return "", nil, err
		}
		add(transformed)
		urlMap[ref] = url
	}

	rewritten, err := p.rewriter.Rewrite(html, urlMap)
	if err != nil {
		return "", nil, serrors.RenderFailed(page.SourcePath, err)
	}
	return rewritten, artifacts, nil
}

// transform produces (or reuses) the cached transformed image and returns
// its copy artifact plus the final reference URL.
func (p *Pipeline) transform(page *content.Page, file, srcAbs, srcHash string, params TransformParams) (artifact.Artifact, string, error) {
	ext := path.Ext(file)
	srcRel := path.Join(path.Dir(page.SourcePath), file)
	key := Key(srcRel, srcHash, params)

	cached, err := p.cache.Get(key, ext, func() ([]byte, error) {
		return os.ReadFile(srcAbs) // #nosec G304 -- resolved under the content root
	}, params)
	if err != nil {
		return artifact.Artifact{}, "", serrors.TransformFailed(fmt.Sprintf("%s?%s", file, params.Canonical()), err)
	}

	dest := OutputPath(key, ext)
	a, err := artifact.FromFile(dest, cached, page.SourcePath)
	if err != nil {
		return artifact.Artifact{}, "", serrors.Wrap(err, serrors.CategoryAsset, serrors.SeverityFatal, "transformed image copy failed").
			WithContext("reference", file)
	}
	return a, "/" + dest, nil
}

func splitRef(ref string) (file, query string) {
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}
