package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// Engine renders a named template with a page context. Implementations are
// external collaborators; HTMLEngine is the default wiring.
type Engine interface {
	Render(name string, ctx *Context) (string, error)
}

// HTMLEngine renders html/template layouts loaded from the layouts
// directory. Template names are file names without the .html extension.
type HTMLEngine struct {
	templates *template.Template
}

// NewHTMLEngine parses every *.html file under layoutsDir. A missing
// layouts directory yields an engine with a built-in fallback layout so
// minimal sites render without any templates on disk.
func NewHTMLEngine(layoutsDir string) (*HTMLEngine, error) {
	root := template.New("").Funcs(template.FuncMap{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	})

	pattern := filepath.Join(layoutsDir, "*.html")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan layouts %s: %w", layoutsDir, err)
	}
	for _, m := range matches {
		data, err := os.ReadFile(m) // #nosec G304 -- layout path from configured directory
		if err != nil {
			return nil, fmt.Errorf("read layout %s: %w", m, err)
		}
		name := strings.TrimSuffix(filepath.Base(m), ".html")
		if _, err := root.New(name).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", m, err)
		}
	}

	if root.Lookup(DefaultSingleTemplate) == nil {
		if _, err := root.New(DefaultSingleTemplate).Parse(fallbackSingle); err != nil {
			return nil, err
		}
	}
	if root.Lookup(DefaultListTemplate) == nil {
		if _, err := root.New(DefaultListTemplate).Parse(fallbackList); err != nil {
			return nil, err
		}
	}

	return &HTMLEngine{templates: root}, nil
}

// Render executes the named template. An unknown name is an error; the
// bridge decides whether that aborts the page or the build.
func (e *HTMLEngine) Render(name string, ctx *Context) (string, error) {
	tpl := e.templates.Lookup(name)
	if tpl == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

// Has reports whether a template with the given name is loaded.
func (e *HTMLEngine) Has(name string) bool {
	return e.templates.Lookup(name) != nil
}

// Default template names.
const (
	DefaultSingleTemplate = "single"
	DefaultListTemplate   = "list"
)

const fallbackSingle = `<!DOCTYPE html>
<html><head><title>{{ .Page.Title }}{{ with .Site.Title }} - {{ . }}{{ end }}</title>
{{ with .Page.Description }}<meta name="description" content="{{ . }}">{{ end }}</head>
<body><main>{{ .Page.Content }}</main></body></html>
`

const fallbackList = `<!DOCTYPE html>
<html><head><title>{{ .Site.Title }}</title></head>
<body><main><ul>
{{ range .Pager.Items }}<li><a href="{{ .URL }}">{{ .Title }}</a></li>
{{ end }}</ul>
{{ if .Pager.HasPrev }}<a rel="prev" href="{{ .Pager.PrevURL }}">Previous</a>{{ end }}
{{ if .Pager.HasNext }}<a rel="next" href="{{ .Pager.NextURL }}">Next</a>{{ end }}
</main></body></html>
`
