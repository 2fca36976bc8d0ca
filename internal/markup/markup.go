// Package markup converts document bodies to HTML fragments.
//
// The pipeline depends only on the Renderer interface; the goldmark-backed
// implementation in this package is the default wiring. Rendering options
// are pass-through site configuration: the pipeline hands them to the
// renderer and never interprets them itself.
package markup

import "git.home.luguber.info/inful/sitegen/internal/config"

// Renderer turns a markup body into an HTML fragment.
type Renderer interface {
	Render(body []byte) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(body []byte) (string, error)

func (f RendererFunc) Render(body []byte) (string, error) { return f(body) }

// Options re-exports the pass-through renderer settings from config so
// callers outside the pipeline do not need to import config directly.
type Options = config.MarkupOptions
