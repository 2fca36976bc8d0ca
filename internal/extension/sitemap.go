package extension

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
)

// SitemapExtension emits sitemap.xml over the full page set at after-build.
type SitemapExtension struct {
	excludeSections map[string]struct{}
}

// NewSitemap is the sitemap extension factory. Options:
//
//	exclude_sections: list of section names left out of the sitemap.
func NewSitemap(options map[string]any) (Extension, error) {
	ext := &SitemapExtension{excludeSections: map[string]struct{}{}}
	if raw, ok := options["exclude_sections"].([]any); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				ext.excludeSections[s] = struct{}{}
			}
		}
	}
	return ext, nil
}

func (e *SitemapExtension) Name() string    { return "sitemap" }
func (e *SitemapExtension) Stages() []Stage { return []Stage{StageAfterBuild} }

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (e *SitemapExtension) Run(_ context.Context, _ Stage, hc *HookContext) ([]artifact.Artifact, error) {
	base := strings.TrimSuffix(hc.Config.BaseURL, "/")

	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, page := range hc.Pages {
		if _, excluded := e.excludeSections[page.Section]; excluded {
			continue
		}
		u := sitemapURL{Loc: base + page.URL()}
		if !page.Date.IsZero() {
			u.LastMod = page.Date.Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	body := append([]byte(xml.Header), data...)
	body = append(body, '\n')
	return []artifact.Artifact{artifact.FromBytes("sitemap.xml", body, e.Name())}, nil
}
