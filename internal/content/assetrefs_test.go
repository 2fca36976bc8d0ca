package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAssetRefs_ImagesAndFileLinks(t *testing.T) {
	body := []byte(`# Post

![hero](images/hero.jpg)

Download the [slides](files/slides.pdf) or read the [next post](../other/).

![external](https://cdn.example.com/pic.png)
![rooted](/static/logo.png)
![transform](images/hero.jpg?w=100&h=50&fit=crop)
`)

	refs := extractAssetRefs(body)
	require.Equal(t, []string{
		"files/slides.pdf",
		"images/hero.jpg",
		"images/hero.jpg?w=100&h=50&fit=crop",
	}, refs)
}

func TestExtractAssetRefs_IgnoresDocumentLinks(t *testing.T) {
	body := []byte("[a page](other-page.md) and [a section](../guide/index.html)")
	assert.Empty(t, extractAssetRefs(body))
}

func TestIsRelativeAssetRef(t *testing.T) {
	cases := []struct {
		ref  string
		want bool
	}{
		{"images/a.jpg", true},
		{"a.jpg?w=10", true},
		{"doc.pdf", true},
		{"", false},
		{"#fragment", false},
		{"/rooted/a.jpg", false},
		{"https://example.com/a.jpg", false},
		{"mailto:x@example.com", false},
		{"page.md", false},
		{"directory/", false},
		{"no-extension", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isRelativeAssetRef(tc.ref), "ref %q", tc.ref)
	}
}
