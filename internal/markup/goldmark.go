package markup

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// GoldmarkRenderer is the default Renderer implementation.
type GoldmarkRenderer struct {
	md   goldmark.Markdown
	opts Options
}

// NewGoldmarkRenderer builds a goldmark instance from the pass-through
// rendering options. Highlighting style settings are carried for themes to
// consume as CSS hooks; goldmark itself only tags code blocks.
func NewGoldmarkRenderer(opts Options) *GoldmarkRenderer {
	extensions := []goldmark.Extender{extension.GFM}
	if opts.SmartQuotes {
		extensions = append(extensions, extension.Typographer)
	}
	if opts.Autolink {
		extensions = append(extensions, extension.Linkify)
	}

	parserOpts := []parser.Option{}
	if opts.HeadingAnchors {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}
	if len(opts.DefaultAttributes) > 0 {
		parserOpts = append(parserOpts, parser.WithAttribute())
	}

	rendererOpts := []renderer.Option{}
	if opts.UnsafeHTML {
		rendererOpts = append(rendererOpts, gmhtml.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkRenderer{md: md, opts: opts}
}

var mentionPattern = regexp.MustCompile(`(^|[\s(])@([a-zA-Z0-9][a-zA-Z0-9_-]*)`)

// Render converts a Markdown body to an HTML fragment. Grouped code blocks
// are expanded into a tabbed widget structure; mentions are linkified when
// a mention base URL is configured.
func (r *GoldmarkRenderer) Render(body []byte) (string, error) {
	if r.opts.MentionBaseURL != "" {
		body = mentionPattern.ReplaceAll(body,
			[]byte(fmt.Sprintf("$1[@$2](%s$2)", r.opts.MentionBaseURL)))
	}

	body, groups := extractCodeTabGroups(body)

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", err
	}
	html := buf.String()

	for _, group := range groups {
		rendered, err := group.renderHTML(r.md)
		if err != nil {
			return "", err
		}
		html = group.substitute(html, rendered)
	}
	return html, nil
}
