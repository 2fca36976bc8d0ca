// Package render bridges the computed page set to the template engine.
//
// The bridge owns the read-only context object handed to templates and the
// per-page rendering flow (markup body -> HTML fragment -> full page). The
// template engine itself is an external collaborator behind the Engine
// interface.
package render

import (
	"html/template"
	"path"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Context is the read-only object exposed to templates for one page render.
type Context struct {
	Page  *PageView
	Site  *SiteView
	Pager *site.Pager // nil unless rendering a paginated listing page

	idx *site.Index
}

// PageView is the template-facing view of one content page.
type PageView struct {
	Title       string
	Description string
	URL         string
	Section     string
	Type        string
	Slug        string
	Date        time.Time
	Weight      int
	Params      map[string]any
	Content     template.HTML // rendered markup body

	page *content.Page
}

// SiteView is the template-facing view of site-wide configuration.
type SiteView struct {
	Title       string
	Description string
	BaseURL     string
	Params      map[string]any
}

// NewContext assembles the context for rendering page. Description falls
// back from the page to the site-wide description.
func NewContext(page *content.Page, body template.HTML, cfg *config.Config, idx *site.Index, pager *site.Pager) *Context {
	desc := ""
	if page != nil {
		desc = page.Description()
	}
	if desc == "" {
		desc = cfg.Description
	}

	ctx := &Context{
		Site: &SiteView{
			Title:       cfg.Title,
			Description: cfg.Description,
			BaseURL:     cfg.BaseURL,
			Params:      cfg.Params,
		},
		Pager: pager,
		idx:   idx,
	}
	if page != nil {
		ctx.Page = &PageView{
			Title:       page.Title(),
			Description: desc,
			URL:         page.URL(),
			Section:     page.Section,
			Type:        page.Type,
			Slug:        page.Slug,
			Date:        page.Date,
			Weight:      page.Weight,
			Params:      page.Metadata,
			Content:     body,
			page:        page,
		}
	}
	return ctx
}

// Collection returns the named collection's pages for range expressions.
func (c *Context) Collection(name string) []*content.Page {
	if col := c.idx.Collection(name); col != nil {
		return col.Pages
	}
	return nil
}

// CollectionCount returns the page count of the named collection.
func (c *Context) CollectionCount(name string) int { return c.idx.Count(name) }

// Where filters the named collection to pages whose metadata key equals
// value, preserving collection order.
func (c *Context) Where(name, key string, value any) []*content.Page {
	col := c.idx.Collection(name)
	if col == nil {
		return nil
	}
	var out []*content.Page
	for _, p := range col.Pages {
		if v, ok := p.Metadata[key]; ok && v == value {
			out = append(out, p)
		}
	}
	return out
}

// TermCount returns how many pages carry term in the named taxonomy.
func (c *Context) TermCount(taxonomy, term string) int { return c.idx.TermCount(taxonomy, term) }

// Taxonomy returns term -> pages for the named taxonomy.
func (c *Context) Taxonomy(name string) map[string]*site.Collection {
	return c.idx.Taxonomies[name]
}

// AssetURL resolves a content-colocated asset reference to its final
// output-relative URL next to the current page. Absolute references are
// returned unchanged.
func (c *Context) AssetURL(ref string) string {
	if ref == "" || ref[0] == '/' {
		return ref
	}
	if c.Page == nil {
		return "/" + ref
	}
	return c.Page.URL + path.Clean(ref)
}

// StaticURL resolves a static-root asset to its site-relative URL.
func (c *Context) StaticURL(ref string) string {
	if ref == "" || ref[0] == '/' {
		return ref
	}
	return "/" + ref
}
