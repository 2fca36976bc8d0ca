package site

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/content"
)

func page(src string, weight int, date time.Time, meta map[string]any) *content.Page {
	if meta == nil {
		meta = map[string]any{}
	}
	p := &content.Page{
		SourcePath: src,
		Slug:       "p",
		Weight:     weight,
		Date:       date,
		Metadata:   meta,
	}
	if i := strings.IndexByte(src, '/'); i > 0 {
		p.Section = src[:i]
	}
	return p
}

func TestBuild_SectionAndAllCollections(t *testing.T) {
	pages := []*content.Page{
		page("posts/a.md", 0, time.Time{}, nil),
		page("posts/b.md", 0, time.Time{}, nil),
		page("docs/c.md", 0, time.Time{}, nil),
		page("index.md", 0, time.Time{}, nil),
	}

	idx := Build(pages, nil)
	assert.Equal(t, 4, idx.Count(CollectionAll))
	assert.Equal(t, 2, idx.Count("posts"))
	assert.Equal(t, 1, idx.Count("docs"))
	assert.Equal(t, 0, idx.Count("missing"))
	assert.Equal(t, "/posts/", idx.Collection("posts").BasePath)
}

func TestBuild_Ordering(t *testing.T) {
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	pages := []*content.Page{
		page("posts/c.md", 5, newer, nil),
		page("posts/b.md", 1, older, nil),
		page("posts/a.md", 1, newer, nil),
		page("posts/d.md", 1, newer, nil),
	}

	idx := Build(pages, nil)
	col := idx.Collection("posts")
	require.Equal(t, 4, col.Len())

	// weight ascending, then date descending, then path ascending
	assert.Equal(t, "posts/a.md", col.Pages[0].SourcePath)
	assert.Equal(t, "posts/d.md", col.Pages[1].SourcePath)
	assert.Equal(t, "posts/b.md", col.Pages[2].SourcePath)
	assert.Equal(t, "posts/c.md", col.Pages[3].SourcePath)
}

func TestBuild_OrderingStableAcrossInputPermutations(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := page("posts/a.md", 0, d, nil)
	b := page("posts/b.md", 0, d, nil)
	c := page("posts/c.md", 0, d, nil)

	first := Build([]*content.Page{a, b, c}, nil).Collection("posts")
	second := Build([]*content.Page{c, a, b}, nil).Collection("posts")

	require.Equal(t, first.Len(), second.Len())
	for i := range first.Pages {
		assert.Equal(t, first.Pages[i].SourcePath, second.Pages[i].SourcePath)
	}
}

func TestBuild_TaxonomyIndex(t *testing.T) {
	pages := []*content.Page{
		page("posts/a.md", 0, time.Time{}, map[string]any{"tags": []any{"go", "web"}}),
		page("posts/b.md", 0, time.Time{}, map[string]any{"tags": "go"}),
		page("docs/c.md", 0, time.Time{}, map[string]any{"category": "ref"}),
	}

	idx := Build(pages, []string{"tags", "category"})
	assert.Equal(t, 2, idx.TermCount("tags", "go"))
	assert.Equal(t, 1, idx.TermCount("tags", "web"))
	assert.Equal(t, 1, idx.TermCount("category", "ref"))
	assert.Equal(t, 0, idx.TermCount("tags", "missing"))
	assert.Equal(t, 0, idx.TermCount("missing", "go"))

	goCol := idx.Taxonomies["tags"]["go"]
	require.NotNil(t, goCol)
	assert.Equal(t, "/tags/go/", goCol.BasePath)
}

func TestBuild_DisabledTaxonomyIgnored(t *testing.T) {
	pages := []*content.Page{
		page("posts/a.md", 0, time.Time{}, map[string]any{"tags": "go"}),
	}
	idx := Build(pages, nil)
	assert.Empty(t, idx.Taxonomies)
}
