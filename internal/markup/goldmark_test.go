package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldmarkRenderer_Basic(t *testing.T) {
	r := NewGoldmarkRenderer(Options{})
	html, err := r.Render([]byte("# Title\n\nSome *emphasis* here.\n"))
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<em>emphasis</em>")
}

func TestGoldmarkRenderer_GFMTables(t *testing.T) {
	r := NewGoldmarkRenderer(Options{})
	html, err := r.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
}

func TestGoldmarkRenderer_SmartQuotes(t *testing.T) {
	plain := NewGoldmarkRenderer(Options{})
	smart := NewGoldmarkRenderer(Options{SmartQuotes: true})

	src := []byte(`She said "hello".`)

	html, err := plain.Render(src)
	require.NoError(t, err)
	assert.Contains(t, html, "&quot;hello&quot;")

	html, err = smart.Render(src)
	require.NoError(t, err)
	assert.Contains(t, html, "&ldquo;hello&rdquo;")
}

func TestGoldmarkRenderer_Autolink(t *testing.T) {
	src := []byte("Visit https://example.com for more.")

	plain := NewGoldmarkRenderer(Options{})
	html, err := plain.Render(src)
	require.NoError(t, err)
	assert.NotContains(t, html, "<a href")

	auto := NewGoldmarkRenderer(Options{Autolink: true})
	html, err = auto.Render(src)
	require.NoError(t, err)
	assert.Contains(t, html, `<a href="https://example.com"`)
}

func TestGoldmarkRenderer_HeadingAnchors(t *testing.T) {
	r := NewGoldmarkRenderer(Options{HeadingAnchors: true})
	html, err := r.Render([]byte("## Getting Started\n"))
	require.NoError(t, err)
	assert.Contains(t, html, `id="getting-started"`)
}

func TestGoldmarkRenderer_UnsafeHTML(t *testing.T) {
	src := []byte("<div class=\"x\">raw</div>\n")

	safe := NewGoldmarkRenderer(Options{})
	html, err := safe.Render(src)
	require.NoError(t, err)
	assert.Contains(t, html, "<!-- raw HTML omitted -->")

	unsafe := NewGoldmarkRenderer(Options{UnsafeHTML: true})
	html, err = unsafe.Render(src)
	require.NoError(t, err)
	assert.Contains(t, html, `<div class="x">raw</div>`)
}

func TestGoldmarkRenderer_BlockAttributes(t *testing.T) {
	src := []byte("# Title {#custom .hero}\n")

	plain := NewGoldmarkRenderer(Options{})
	html, err := plain.Render(src)
	require.NoError(t, err)
	assert.NotContains(t, html, `id="custom"`)

	attr := NewGoldmarkRenderer(Options{DefaultAttributes: []string{"heading"}})
	html, err = attr.Render(src)
	require.NoError(t, err)
	assert.Contains(t, html, `id="custom"`)
	assert.Contains(t, html, `class="hero"`)
}

func TestGoldmarkRenderer_Mentions(t *testing.T) {
	r := NewGoldmarkRenderer(Options{MentionBaseURL: "https://forge.example/u/"})
	html, err := r.Render([]byte("Thanks @alice and @bob-smith!\n"))
	require.NoError(t, err)
	assert.Contains(t, html, `<a href="https://forge.example/u/alice">@alice</a>`)
	assert.Contains(t, html, `<a href="https://forge.example/u/bob-smith">@bob-smith</a>`)
}

func TestGoldmarkRenderer_MentionsDisabledByDefault(t *testing.T) {
	r := NewGoldmarkRenderer(Options{})
	html, err := r.Render([]byte("ping @alice\n"))
	require.NoError(t, err)
	assert.Contains(t, html, "@alice")
	assert.NotContains(t, html, "<a href")
}

func TestGoldmarkRenderer_MentionNotInsideWord(t *testing.T) {
	r := NewGoldmarkRenderer(Options{MentionBaseURL: "https://forge.example/u/"})
	html, err := r.Render([]byte("mail me at me@example.com\n"))
	require.NoError(t, err)
	assert.NotContains(t, html, "forge.example/u/")
}
