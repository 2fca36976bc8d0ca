package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/content"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

func writeFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, data, 0o644))
	return abs
}

func bundlePage(t *testing.T, root string, refs ...string) *content.Page {
	t.Helper()
	abs := writeFile(t, root, "posts/trip/index.md", []byte("body"))
	return &content.Page{
		SourcePath: "posts/trip/index.md",
		AbsPath:    abs,
		Slug:       "trip",
		Section:    "posts",
		AssetRefs:  refs,
	}
}

func newTestPipeline(t *testing.T, staticDir string) *Pipeline {
	t.Helper()
	cache, err := NewTransformCache(t.TempDir(), &countingTransformer{out: pngBytes(t, 4, 4)}, nil)
	require.NoError(t, err)
	return NewPipeline(staticDir, cache, NewRewriter("https://example.com", "", ""))
}

func TestPipeline_StaticMissingDirIsEmpty(t *testing.T) {
	p := newTestPipeline(t, filepath.Join(t.TempDir(), "absent"))
	artifacts, err := p.Static()
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestPipeline_StaticWalksSorted(t *testing.T) {
	staticDir := t.TempDir()
	writeFile(t, staticDir, "js/app.js", []byte("js"))
	writeFile(t, staticDir, "css/main.css", []byte("css"))
	writeFile(t, staticDir, "favicon.ico", []byte("ico"))

	p := newTestPipeline(t, staticDir)
	artifacts, err := p.Static()
	require.NoError(t, err)
	require.Len(t, artifacts, 3)

	assert.Equal(t, "css/main.css", artifacts[0].Dest)
	assert.Equal(t, "favicon.ico", artifacts[1].Dest)
	assert.Equal(t, "js/app.js", artifacts[2].Dest)
	assert.Equal(t, "static", artifacts[0].Origin)
	assert.NotEmpty(t, artifacts[0].Fingerprint)
}

func TestPipeline_ProcessPageNoRefs(t *testing.T) {
	p := newTestPipeline(t, "")
	html, artifacts, err := p.ProcessPage(&content.Page{SourcePath: "a.md"}, "<p>hi")
	require.NoError(t, err)
	assert.Empty(t, artifacts)
	assert.Equal(t, "<p>hi", html)
}

func TestPipeline_ProcessPageCopiesColocatedAssets(t *testing.T) {
	root := t.TempDir()
	page := bundlePage(t, root, "images/hero.jpg")
	writeFile(t, root, "posts/trip/images/hero.jpg", []byte("jpegdata"))

	p := newTestPipeline(t, "")
	html, artifacts, err := p.ProcessPage(page, `<p><img src="images/hero.jpg"></p>`)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	assert.Equal(t, "posts/trip/images/hero.jpg", artifacts[0].Dest)
	assert.Equal(t, "posts/trip/index.md", artifacts[0].Origin)
	assert.Contains(t, html, `src="/posts/trip/images/hero.jpg"`)
}

func TestPipeline_ProcessPageTransform(t *testing.T) {
	root := t.TempDir()
	page := bundlePage(t, root, "hero.png?w=400")
	writeFile(t, root, "posts/trip/hero.png", pngBytes(t, 8, 8))

	p := newTestPipeline(t, "")
	html, artifacts, err := p.ProcessPage(page, `<p><img src="hero.png?w=400"></p>`)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "posts/trip/hero.png", artifacts[0].Dest)
	assert.True(t, strings.HasPrefix(artifacts[1].Dest, TransformedDir+"/"))
	assert.True(t, strings.HasSuffix(artifacts[1].Dest, ".png"))
	assert.Contains(t, html, `src="/`+artifacts[1].Dest+`"`)
}

func TestPipeline_ProcessPageDedupsDest(t *testing.T) {
	root := t.TempDir()
	page := bundlePage(t, root, "hero.png", "hero.png")
	writeFile(t, root, "posts/trip/hero.png", pngBytes(t, 4, 4))

	p := newTestPipeline(t, "")
	_, artifacts, err := p.ProcessPage(page, "<p>x</p>")
	require.NoError(t, err)
	assert.Len(t, artifacts, 1)
}

func TestPipeline_ProcessPageMissingAsset(t *testing.T) {
	root := t.TempDir()
	page := bundlePage(t, root, "missing.png")

	p := newTestPipeline(t, "")
	_, _, err := p.ProcessPage(page, "<p>x</p>")
	require.Error(t, err)

	var be *serrors.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, serrors.CategoryAsset, be.Category)
	assert.Equal(t, "missing.png", be.Context["reference"])
}

func TestPipeline_ProcessPageBadTransformQuery(t *testing.T) {
	root := t.TempDir()
	page := bundlePage(t, root, "hero.png?w=abc")
	writeFile(t, root, "posts/trip/hero.png", pngBytes(t, 4, 4))

	p := newTestPipeline(t, "")
	_, _, err := p.ProcessPage(page, "<p>x</p>")
	require.Error(t, err)

	var be *serrors.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, serrors.CategoryAsset, be.Category)
}
