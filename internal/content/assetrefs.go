package content

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractAssetRefs parses a Markdown body and collects relative image and
// link destinations that point at colocated files. Absolute URLs, rooted
// paths, and fragment-only links are not assets.
func extractAssetRefs(body []byte) []string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	seen := map[string]struct{}{}
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		var dest string
		switch node := n.(type) {
		case *gmast.Image:
			dest = string(node.Destination)
		case *gmast.Link:
			dest = string(node.Destination)
		default:
			return gmast.WalkContinue, nil
		}
		if isRelativeAssetRef(dest) {
			seen[dest] = struct{}{}
		}
		return gmast.WalkContinue, nil
	})

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// isRelativeAssetRef reports whether dest looks like a reference to a file
// shipped alongside the page. Query strings (used for image transform
// parameters) are allowed; the file part must carry an extension so plain
// page-to-page links are not mistaken for assets.
func isRelativeAssetRef(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return false
	}
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") || strings.HasPrefix(dest, "//") {
		return false
	}
	file := dest
	if i := strings.IndexAny(file, "?#"); i >= 0 {
		file = file[:i]
	}
	if file == "" {
		return false
	}
	dot := strings.LastIndex(file, ".")
	slash := strings.LastIndex(file, "/")
	if dot <= slash {
		return false // no extension on the final element
	}
	ext := strings.ToLower(file[dot+1:])
	switch ext {
	case "md", "markdown", "html", "htm":
		return false // document links, handled by rendering, not the asset pipeline
	}
	return ext != ""
}
