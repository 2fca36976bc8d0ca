package assets

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rewriter post-processes rendered page HTML: asset references are pointed
// at their final output URLs and configured attributes are injected on
// external links.
type Rewriter struct {
	baseURL            string
	externalLinkRel    string
	externalLinkTarget string
}

// NewRewriter creates a rewriter. rel and target are injected on off-site
// anchors when non-empty; baseURL identifies on-site absolute links.
func NewRewriter(baseURL, rel, target string) *Rewriter {
	return &Rewriter{baseURL: baseURL, externalLinkRel: rel, externalLinkTarget: target}
}

// Rewrite applies reference rewriting (urlMap: original ref -> final URL)
// and external-link attribute injection. When nothing applies the input is
// returned untouched to avoid needless reserialization.
func (r *Rewriter) Rewrite(html string, urlMap map[string]string) (string, error) {
	if len(urlMap) == 0 && r.externalLinkRel == "" && r.externalLinkTarget == "" {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	if len(urlMap) > 0 {
		doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
			if src, ok := sel.Attr("src"); ok {
				if mapped, hit := urlMap[src]; hit {
					sel.SetAttr("src", mapped)
				}
			}
		})
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok {
				if mapped, hit := urlMap[href]; hit {
					sel.SetAttr("href", mapped)
				}
			}
		})
	}

	if r.externalLinkRel != "" || r.externalLinkTarget != "" {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if !r.isExternal(href) {
				return
			}
			if r.externalLinkRel != "" {
				sel.SetAttr("rel", r.externalLinkRel)
			}
			if r.externalLinkTarget != "" {
				sel.SetAttr("target", r.externalLinkTarget)
			}
		})
	}

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return out, nil
}

func (r *Rewriter) isExternal(href string) bool {
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return false
	}
	return r.baseURL == "" || !strings.HasPrefix(href, r.baseURL)
}
