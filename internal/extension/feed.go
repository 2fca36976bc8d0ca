package extension

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// FeedExtension emits an RSS 2.0 feed over one collection at after-build.
type FeedExtension struct {
	collection string
	limit      int
}

// NewFeed is the feed extension factory. Options:
//
//	collection: source collection name (default "all")
//	limit:      maximum item count (default 20)
func NewFeed(options map[string]any) (Extension, error) {
	ext := &FeedExtension{collection: site.CollectionAll, limit: 20}
	if c, ok := options["collection"].(string); ok && c != "" {
		ext.collection = c
	}
	switch v := options["limit"].(type) {
	case int:
		ext.limit = v
	case float64:
		ext.limit = int(v)
	}
	if ext.limit <= 0 {
		return nil, fmt.Errorf("feed limit must be positive, got %d", ext.limit)
	}
	return ext, nil
}

func (e *FeedExtension) Name() string    { return "feed" }
func (e *FeedExtension) Stages() []Stage { return []Stage{StageAfterBuild} }

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	GUID    string `xml:"guid"`
	PubDate string `xml:"pubDate,omitempty"`
}

func (e *FeedExtension) Run(_ context.Context, _ Stage, hc *HookContext) ([]artifact.Artifact, error) {
	col := hc.Index.Collection(e.collection)
	if col == nil {
		return nil, fmt.Errorf("feed collection %q does not exist", e.collection)
	}

	base := strings.TrimSuffix(hc.Config.BaseURL, "/")
	channel := rssChannel{
		Title:       hc.Config.Title,
		Link:        hc.Config.BaseURL,
		Description: hc.Config.Description,
	}
	for i, page := range col.Pages {
		if i >= e.limit {
			break
		}
		item := rssItem{
			Title: page.Title(),
			Link:  base + page.URL(),
			GUID:  base + page.URL(),
		}
		if !page.Date.IsZero() {
			item.PubDate = page.Date.Format(time.RFC1123Z)
		}
		channel.Items = append(channel.Items, item)
	}

	data, err := xml.MarshalIndent(rssFeed{Version: "2.0", Channel: channel}, "", "  ")
	if err != nil {
		return nil, err
	}
	body := append([]byte(xml.Header), data...)
	body = append(body, '\n')
	return []artifact.Artifact{artifact.FromBytes("feed.xml", body, e.Name())}, nil
}
