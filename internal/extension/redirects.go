package extension

import (
	"context"
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
)

// RedirectsExtension emits a meta-refresh stub for every alias a page
// declares in its frontmatter, so old URLs keep resolving after a move.
// Runs at after-page-render because the target URL is per page.
type RedirectsExtension struct{}

// NewRedirects is the redirects extension factory. It takes no options.
func NewRedirects(_ map[string]any) (Extension, error) {
	return &RedirectsExtension{}, nil
}

func (e *RedirectsExtension) Name() string    { return "redirects" }
func (e *RedirectsExtension) Stages() []Stage { return []Stage{StageAfterPageRender} }

const redirectTemplate = `<!DOCTYPE html>
<html><head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0; url=%s">
<link rel="canonical" href="%s">
</head><body><a href="%s">Moved here</a></body></html>
`

func (e *RedirectsExtension) Run(_ context.Context, _ Stage, hc *HookContext) ([]artifact.Artifact, error) {
	if hc.Rendered == nil {
		return nil, nil
	}
	page := hc.Rendered.Page
	if len(page.Aliases) == 0 {
		return nil, nil
	}

	target := page.URL()
	var out []artifact.Artifact
	for _, alias := range page.Aliases {
		clean := strings.Trim(path.Clean("/"+alias), "/")
		if clean == "" || clean == "." {
			return nil, fmt.Errorf("page %s declares invalid alias %q", page.SourcePath, alias)
		}
		body := fmt.Sprintf(redirectTemplate, target, target, target)
		out = append(out, artifact.FromBytes(path.Join(clean, "index.html"), []byte(body), e.Name()))
	}
	return out, nil
}
