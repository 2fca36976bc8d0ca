// Package site builds the in-memory indexes rendered pages draw from:
// section and site-wide collections, taxonomy term indexes, and pagination.
// Everything here is pure and deterministic given the page set.
package site

import (
	"sort"

	"git.home.luguber.info/inful/sitegen/internal/content"
)

// CollectionAll is the name of the site-wide collection every page joins.
const CollectionAll = "all"

// Collection is a named, deterministically-ordered grouping of pages.
type Collection struct {
	Name     string
	BasePath string // site-relative URL prefix, e.g. "/posts/"
	Pages    []*content.Page
}

// Len returns the number of pages in the collection.
func (c *Collection) Len() int { return len(c.Pages) }

// Index holds all collections and taxonomy indexes for one build.
type Index struct {
	Collections map[string]*Collection
	Taxonomies  TaxonomyIndex
}

// TaxonomyIndex maps taxonomy name -> term -> ordered pages carrying it.
type TaxonomyIndex map[string]map[string]*Collection

// Build groups the filtered page set into collections and taxonomy indexes.
// Pages arrive draft-filtered; this component never re-checks draft flags.
func Build(pages []*content.Page, taxonomies []string) *Index {
	idx := &Index{
		Collections: map[string]*Collection{},
		Taxonomies:  TaxonomyIndex{},
	}

	all := &Collection{Name: CollectionAll, BasePath: "/"}
	idx.Collections[CollectionAll] = all

	for _, page := range pages {
		all.Pages = append(all.Pages, page)

		if page.Section != "" {
			col, ok := idx.Collections[page.Section]
			if !ok {
				col = &Collection{Name: page.Section, BasePath: "/" + page.Section + "/"}
				idx.Collections[page.Section] = col
			}
			col.Pages = append(col.Pages, page)
		}

		for _, tax := range taxonomies {
			for _, term := range page.Terms(tax) {
				terms, ok := idx.Taxonomies[tax]
				if !ok {
					terms = map[string]*Collection{}
					idx.Taxonomies[tax] = terms
				}
				col, ok := terms[term]
				if !ok {
					col = &Collection{
						Name:     tax + "/" + term,
						BasePath: "/" + tax + "/" + content.Slugify(term) + "/",
					}
					terms[term] = col
				}
				col.Pages = append(col.Pages, page)
			}
		}
	}

	for _, col := range idx.Collections {
		sortPages(col.Pages)
	}
	for _, terms := range idx.Taxonomies {
		for _, col := range terms {
			sortPages(col.Pages)
		}
	}
	return idx
}

// Collection returns the named collection, nil when absent.
func (i *Index) Collection(name string) *Collection {
	return i.Collections[name]
}

// Count returns the page count of the named collection, 0 when absent.
func (i *Index) Count(name string) int {
	if col := i.Collections[name]; col != nil {
		return col.Len()
	}
	return 0
}

// TermCount returns how many pages carry term in the named taxonomy.
func (i *Index) TermCount(taxonomy, term string) int {
	if terms, ok := i.Taxonomies[taxonomy]; ok {
		if col, ok := terms[term]; ok {
			return col.Len()
		}
	}
	return 0
}

// sortPages orders by weight ascending, then date descending (newest
// first), then source path. The path tiebreak keeps pagination and
// prev/next links stable across builds with unchanged content.
func sortPages(pages []*content.Page) {
	sort.SliceStable(pages, func(a, b int) bool {
		pa, pb := pages[a], pages[b]
		if pa.Weight != pb.Weight {
			return pa.Weight < pb.Weight
		}
		if !pa.Date.Equal(pb.Date) {
			return pa.Date.After(pb.Date)
		}
		return pa.SourcePath < pb.SourcePath
	})
}
