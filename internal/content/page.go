// Package content discovers and normalizes source documents into Page records.
package content

import (
	"path"
	"strings"
	"time"
)

// Page represents one normalized source document. Pages are built once per
// build invocation and treated as immutable afterwards.
type Page struct {
	SourcePath   string // path relative to the content root, slash-separated
	AbsPath      string // absolute filesystem path of the document
	BundleDir    string // absolute directory for bundle pages, "" otherwise
	Slug         string
	Section      string // first path element of SourcePath, "" for root pages
	Type         string // resolved content type, "" when no rule matched
	Draft        bool
	Date         time.Time
	Weight       int
	Template     string         // explicit template override, "" for default
	Metadata     map[string]any // resolved frontmatter (type defaults underneath)
	Body         []byte         // raw markup body, frontmatter stripped
	AssetRefs    []string       // relative asset references found in the body
	Aliases      []string       // alternate URLs that should redirect here
}

// Title returns the page title, falling back to the slug.
func (p *Page) Title() string {
	if t, ok := p.Metadata["title"].(string); ok && t != "" {
		return t
	}
	return p.Slug
}

// Description returns the page description, empty when unset.
func (p *Page) Description() string {
	if d, ok := p.Metadata["description"].(string); ok {
		return d
	}
	return ""
}

// OutputPath returns the destination of the rendered page relative to the
// output root. Index documents map onto their directory; every other
// document gets its own slug directory so URLs stay extension-free.
func (p *Page) OutputPath() string {
	dir := path.Dir(p.SourcePath)
	if dir == "." {
		dir = ""
	}
	if p.IsIndex() {
		return path.Join(dir, "index.html")
	}
	return path.Join(dir, p.Slug, "index.html")
}

// URL returns the site-relative URL of the rendered page, always with a
// trailing slash.
func (p *Page) URL() string {
	out := p.OutputPath()
	dir := strings.TrimSuffix(out, "index.html")
	return "/" + dir
}

// IsIndex reports whether the source document is a directory index
// (index.md, including bundle indexes).
func (p *Page) IsIndex() bool {
	base := path.Base(p.SourcePath)
	return strings.TrimSuffix(base, path.Ext(base)) == "index"
}

// Terms returns the taxonomy term set declared by the page for the named
// taxonomy field. A scalar value is treated as a single-term set.
func (p *Page) Terms(taxonomy string) []string {
	raw, ok := p.Metadata[taxonomy]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		terms := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				terms = append(terms, s)
			}
		}
		return terms
	case []string:
		return v
	}
	return nil
}
