package site

import (
	"fmt"
	"path"
)

// Pager is one page of a paginated collection listing. Page numbers are
// 1-based; page 1 has no Prev and the last page has no Next. URLs are pure
// functions of (collection base path, page number), so they are
// reproducible across builds.
type Pager struct {
	Number     int
	TotalPages int
	PageSize   int
	Items      []any // *content.Page values; any keeps templates decoupled
	Collection *Collection
}

// URL returns this pager's site-relative URL.
func (p *Pager) URL() string {
	return pagerURL(p.Collection.BasePath, p.Number)
}

// HasPrev reports whether a previous pager exists.
func (p *Pager) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following pager exists.
func (p *Pager) HasNext() bool { return p.Number < p.TotalPages }

// PrevURL returns the previous pager's URL, "" on the first page.
func (p *Pager) PrevURL() string {
	if !p.HasPrev() {
		return ""
	}
	return pagerURL(p.Collection.BasePath, p.Number-1)
}

// NextURL returns the next pager's URL, "" on the last page.
func (p *Pager) NextURL() string {
	if !p.HasNext() {
		return ""
	}
	return pagerURL(p.Collection.BasePath, p.Number+1)
}

// OutputPath returns the destination of this pager's listing page relative
// to the output root.
func (p *Pager) OutputPath() string {
	if p.Number == 1 {
		return path.Join(trimRoot(p.Collection.BasePath), "index.html")
	}
	return path.Join(trimRoot(p.Collection.BasePath), "page", fmt.Sprintf("%d", p.Number), "index.html")
}

// Paginate splits a collection into pagers of at most size items.
// An empty collection still yields one (empty) pager so listing pages
// always exist.
func Paginate(col *Collection, size int) []*Pager {
	if size <= 0 {
		size = 1
	}
	total := (len(col.Pages) + size - 1) / size
	if total == 0 {
		total = 1
	}

	pagers := make([]*Pager, 0, total)
	for n := 1; n <= total; n++ {
		lo := (n - 1) * size
		hi := lo + size
		if hi > len(col.Pages) {
			hi = len(col.Pages)
		}
		items := make([]any, 0, hi-lo)
		for _, pg := range col.Pages[lo:hi] {
			items = append(items, pg)
		}
		pagers = append(pagers, &Pager{
			Number:     n,
			TotalPages: total,
			PageSize:   size,
			Items:      items,
			Collection: col,
		})
	}
	return pagers
}

// pagerURL is the deterministic (base, number) -> URL function. Page 1 is
// the bare base path; later pages live under page/N/.
func pagerURL(base string, number int) string {
	if number <= 1 {
		return base
	}
	return fmt.Sprintf("%spage/%d/", base, number)
}

func trimRoot(base string) string {
	if base == "/" {
		return ""
	}
	return base[1:]
}
