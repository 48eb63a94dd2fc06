package discovery

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/uawatch/newsfeed"
)

// SyndicationListing reads the newest entry from an RSS or Atom feed
// instead of scraping the front page. Feed items map onto the same Feed
// record: GUID as id, title as headline, link as detail page.
type SyndicationListing struct {
	fetcher *Fetcher
	url     string
}

// NewSyndicationListing creates a listing source for feedURL.
func NewSyndicationListing(fetcher *Fetcher, feedURL string) *SyndicationListing {
	return &SyndicationListing{
		fetcher: fetcher,
		url:     feedURL,
	}
}

// Latest fetches the feed and converts its first item.
func (l *SyndicationListing) Latest(ctx context.Context) (*newsfeed.Feed, error) {
	feed, err := l.fetcher.FetchFeed(ctx, l.url)
	if err != nil {
		return nil, err
	}

	if len(feed.Items) == 0 {
		return nil, ErrEmptyListing
	}

	return FeedItemToFeed(feed.Items[0])
}

// FeedItemToFeed converts a syndication item. Items without a GUID use
// their link as id.
func FeedItemToFeed(item *gofeed.Item) (*newsfeed.Feed, error) {
	id := strings.TrimSpace(item.GUID)
	if id == "" {
		id = strings.TrimSpace(item.Link)
	}
	if id == "" {
		return nil, ErrMissingID
	}

	feed := &newsfeed.Feed{
		ID:    id,
		Info:  normalizeText(item.Title),
		Extra: newsfeed.StringPtr(strings.TrimSpace(item.Link)),
	}

	if item.Image != nil {
		feed.Image = newsfeed.StringPtr(item.Image.URL)
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		switch {
		case feed.Video == nil && strings.HasPrefix(enc.Type, "video/"):
			feed.Video = newsfeed.StringPtr(enc.URL)
		case feed.Image == nil && strings.HasPrefix(enc.Type, "image/"):
			feed.Image = newsfeed.StringPtr(enc.URL)
		}
	}

	return feed, nil
}

// normalizeText collapses runs of whitespace into single spaces and trims
// the ends.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
