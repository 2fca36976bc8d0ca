package site

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/content"
)

func makeCollection(n int) *Collection {
	col := &Collection{Name: "posts", BasePath: "/posts/"}
	for i := 0; i < n; i++ {
		col.Pages = append(col.Pages, page(fmt.Sprintf("posts/%02d.md", i), 0, time.Time{}, nil))
	}
	return col
}

func TestPaginate_Boundaries(t *testing.T) {
	tests := []struct {
		pages      int
		size       int
		wantPagers int
		lastLen    int
	}{
		{pages: 0, size: 10, wantPagers: 1, lastLen: 0},
		{pages: 1, size: 10, wantPagers: 1, lastLen: 1},
		{pages: 10, size: 10, wantPagers: 1, lastLen: 10},
		{pages: 11, size: 10, wantPagers: 2, lastLen: 1},
		{pages: 25, size: 10, wantPagers: 3, lastLen: 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_pages_size_%d", tt.pages, tt.size), func(t *testing.T) {
			pagers := Paginate(makeCollection(tt.pages), tt.size)
			require.Len(t, pagers, tt.wantPagers)
			assert.Len(t, pagers[len(pagers)-1].Items, tt.lastLen)
			for i, pg := range pagers {
				assert.Equal(t, i+1, pg.Number)
				assert.Equal(t, tt.wantPagers, pg.TotalPages)
			}
		})
	}
}

func TestPaginate_ItemsPreserveOrder(t *testing.T) {
	pagers := Paginate(makeCollection(5), 2)
	require.Len(t, pagers, 3)

	var got []string
	for _, pg := range pagers {
		for _, it := range pg.Items {
			got = append(got, it.(*content.Page).SourcePath)
		}
	}
	assert.Equal(t, []string{
		"posts/00.md", "posts/01.md", "posts/02.md", "posts/03.md", "posts/04.md",
	}, got)
}

func TestPager_URLs(t *testing.T) {
	pagers := Paginate(makeCollection(25), 10)
	require.Len(t, pagers, 3)

	assert.Equal(t, "/posts/", pagers[0].URL())
	assert.Equal(t, "/posts/page/2/", pagers[1].URL())
	assert.Equal(t, "/posts/page/3/", pagers[2].URL())

	assert.False(t, pagers[0].HasPrev())
	assert.Empty(t, pagers[0].PrevURL())
	assert.True(t, pagers[0].HasNext())
	assert.Equal(t, "/posts/page/2/", pagers[0].NextURL())

	assert.Equal(t, "/posts/", pagers[1].PrevURL())
	assert.Equal(t, "/posts/page/3/", pagers[1].NextURL())

	assert.False(t, pagers[2].HasNext())
	assert.Empty(t, pagers[2].NextURL())
}

func TestPager_OutputPath(t *testing.T) {
	pagers := Paginate(makeCollection(15), 10)
	require.Len(t, pagers, 2)
	assert.Equal(t, "posts/index.html", pagers[0].OutputPath())
	assert.Equal(t, "posts/page/2/index.html", pagers[1].OutputPath())
}

func TestPager_OutputPathSiteRoot(t *testing.T) {
	col := &Collection{Name: CollectionAll, BasePath: "/"}
	col.Pages = append(col.Pages, page("a.md", 0, time.Time{}, nil))
	pagers := Paginate(col, 10)
	require.Len(t, pagers, 1)
	assert.Equal(t, "index.html", pagers[0].OutputPath())
	assert.Equal(t, "/", pagers[0].URL())
}

func TestPaginate_InvalidSizeClampedToOne(t *testing.T) {
	pagers := Paginate(makeCollection(3), 0)
	require.Len(t, pagers, 3)
	assert.Len(t, pagers[0].Items, 1)
}
