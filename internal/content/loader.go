package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/sitegen/internal/config"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Loader walks a content tree and produces the normalized page set.
type Loader struct {
	root          string
	includeDrafts bool
	typeRules     []config.ContentTypeRule
}

// NewLoader creates a loader for the given content root.
func NewLoader(root string, includeDrafts bool, typeRules []config.ContentTypeRule) *Loader {
	return &Loader{root: root, includeDrafts: includeDrafts, typeRules: typeRules}
}

// Load walks the content tree and returns all pages, draft-filtered.
// The returned slice is sorted by source path so downstream indexing sees
// a deterministic order regardless of filesystem iteration order.
func (l *Loader) Load() ([]*Page, error) {
	var pages []*Page

	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return serrors.ContentUnreadable(p, err)
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}

		rel, relErr := filepath.Rel(l.root, p)
		if relErr != nil {
			return serrors.ContentUnreadable(p, relErr)
		}
		page, pageErr := l.loadPage(p, filepath.ToSlash(rel))
		if pageErr != nil {
			return pageErr
		}
		if page.Draft && !l.includeDrafts {
			slog.Debug("Skipping draft page", logfields.Page(page.SourcePath))
			return nil
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].SourcePath < pages[j].SourcePath })
	slog.Debug("Content loaded", logfields.Count(len(pages)))
	return pages, nil
}

// loadPage reads and normalizes one document.
func (l *Loader) loadPage(absPath, relPath string) (*Page, error) {
	raw, err := os.ReadFile(absPath) // #nosec G304 -- path discovered under the content root
	if err != nil {
		return nil, serrors.ContentUnreadable(relPath, err)
	}

	fm, body, _, err := frontmatter.Split(raw)
	if err != nil {
		return nil, serrors.ContentInvalid(relPath, err)
	}
	meta, err := frontmatter.ParseYAML(fm)
	if err != nil {
		return nil, serrors.ContentInvalid(relPath, err)
	}

	page := &Page{
		SourcePath: relPath,
		AbsPath:    absPath,
		Metadata:   meta,
		Body:       body,
	}

	if section := strings.SplitN(relPath, "/", 2); len(section) == 2 {
		page.Section = section[0]
	}

	// Explicit type wins over path-matching rules; rule defaults are merged
	// underneath page-level metadata so page values always win.
	page.Type = stringField(meta, "type")
	if page.Type == "" {
		if rule := l.matchTypeRule(relPath); rule != nil {
			page.Type = rule.Type
			page.Metadata = mergeDefaults(rule.Defaults, meta)
		}
	}

	page.Slug = stringField(page.Metadata, "slug")
	if page.Slug == "" {
		stem := strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))
		page.Slug = Slugify(stem)
	}
	if page.Slug == "" {
		return nil, serrors.ContentInvalid(relPath, fmt.Errorf("document normalizes to an empty slug"))
	}

	page.Template = stringField(page.Metadata, "template")
	page.Draft = boolField(page.Metadata, "draft")
	page.Weight = intField(page.Metadata, "weight")
	page.Aliases = stringListField(page.Metadata, "aliases")

	if date, err := dateField(page.Metadata, "date"); err != nil {
		return nil, serrors.ContentInvalid(relPath, err)
	} else {
		page.Date = date
	}

	if page.IsIndex() {
		if bundle, err := hasBundleAssets(filepath.Dir(absPath)); err != nil {
			return nil, serrors.ContentUnreadable(relPath, err)
		} else if bundle {
			page.BundleDir = filepath.Dir(absPath)
		}
	}

	page.AssetRefs = extractAssetRefs(body)
	return page, nil
}

func (l *Loader) matchTypeRule(relPath string) *config.ContentTypeRule {
	for i := range l.typeRules {
		ok, err := doublestar.Match(l.typeRules[i].Pattern, relPath)
		if err == nil && ok {
			return &l.typeRules[i]
		}
	}
	return nil
}

// hasBundleAssets reports whether dir contains non-markdown files colocated
// with an index document.
func hasBundleAssets(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() && !isMarkdown(e.Name()) {
			return true, nil
		}
	}
	return false, nil
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// mergeDefaults layers page metadata over type defaults. Only top-level
// keys are merged; nested maps are taken wholesale from whichever side wins.
func mergeDefaults(defaults, page map[string]any) map[string]any {
	if len(defaults) == 0 {
		return page
	}
	merged := make(map[string]any, len(defaults)+len(page))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range page {
		merged[k] = v
	}
	return merged
}

func stringField(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func boolField(meta map[string]any, key string) bool {
	if v, ok := meta[key].(bool); ok {
		return v
	}
	return false
}

func intField(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func stringListField(meta map[string]any, key string) []string {
	raw, ok := meta[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// dateField accepts native YAML timestamps plus the common date-only and
// RFC3339 string forms. A present-but-unparseable value is a content error,
// not a silent default.
func dateField(meta map[string]any, key string) (time.Time, error) {
	raw, ok := meta[key]
	if !ok {
		return time.Time{}, nil
	}
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", v)
	}
	return time.Time{}, fmt.Errorf("date field has unsupported type %T", raw)
}
