package render

import (
	"html/template"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/markup"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Bridge renders content pages and listing pages through the configured
// markup renderer and template engine.
type Bridge struct {
	cfg      *config.Config
	engine   Engine
	renderer markup.Renderer
	idx      *site.Index
}

// NewBridge wires the bridge for one build invocation.
func NewBridge(cfg *config.Config, engine Engine, renderer markup.Renderer, idx *site.Index) *Bridge {
	return &Bridge{cfg: cfg, engine: engine, renderer: renderer, idx: idx}
}

// RenderPage produces the final HTML for one content page.
func (b *Bridge) RenderPage(page *content.Page) (string, error) {
	fragment, err := b.renderer.Render(page.Body)
	if err != nil {
		return "", serrors.RenderFailed(page.SourcePath, err)
	}

	name := b.templateFor(page)
	ctx := NewContext(page, template.HTML(fragment), b.cfg, b.idx, nil) // #nosec G203 -- renderer output is trusted
	html, err := b.engine.Render(name, ctx)
	if err != nil {
		return "", serrors.RenderFailed(page.SourcePath, err)
	}
	return html, nil
}

// RenderListing produces the HTML for one pager of a collection listing.
func (b *Bridge) RenderListing(pager *site.Pager) (string, error) {
	ctx := NewContext(nil, "", b.cfg, b.idx, pager)
	ctx.Page = &PageView{
		Title:       pager.Collection.Name,
		Description: b.cfg.Description,
		URL:         pager.URL(),
		Params:      map[string]any{},
	}
	html, err := b.engine.Render(DefaultListTemplate, ctx)
	if err != nil {
		return "", serrors.RenderFailed(pager.Collection.Name, err)
	}
	return html, nil
}

// templateFor resolves the template name for a page: explicit override,
// then the page's content type, then the default single-page template.
func (b *Bridge) templateFor(page *content.Page) string {
	if page.Template != "" {
		return page.Template
	}
	if page.Type != "" {
		if he, ok := b.engine.(*HTMLEngine); ok && he.Has(page.Type) {
			return page.Type
		}
	}
	return DefaultSingleTemplate
}
