package discovery

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/uawatch/newsfeed"
	"github.com/pevans/uawatch/scraper"
)

var (
	// ErrEmptyListing means the listing container was missing or had no
	// entries. The site does this when its backend is failing, so callers
	// retry quickly.
	ErrEmptyListing = errors.New("listing is empty")

	// ErrMissingID means the newest entry carried no id attribute.
	ErrMissingID = errors.New("listing entry has no id")

	// ErrNoDetailLink means the entry has no link to its detail page.
	ErrNoDetailLink = errors.New("listing entry has no detail link")
)

// ExtractFeed reads the newest entry of a listing page. base resolves
// relative links and may be nil.
func ExtractFeed(doc *goquery.Document, sel scraper.Selectors, base *url.URL) (*newsfeed.Feed, error) {
	container := doc.Find(sel.ListingSelector).First()
	if container.Length() == 0 || container.Children().Length() == 0 {
		return nil, ErrEmptyListing
	}

	entry := container.Children().First()

	id, _ := entry.Attr(sel.IDAttr)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingID
	}

	// Info is kept verbatim; it is compared against stored titles
	feed := &newsfeed.Feed{
		ID:   id,
		Info: entry.Find(sel.TitleSelector).First().Text(),
	}

	// The comment link shares the entry's id
	link := entry.Find(sel.CommentLinkSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(sel.IDAttr)
		return v == id
	}).First()
	if href, ok := link.Attr("href"); ok {
		feed.Extra = resolve(base, href)
	}

	feed.Video = extractVideo(entry, sel, base)

	if src, ok := entry.Find(sel.ImageSelector).First().Attr("src"); ok {
		feed.Image = resolve(base, src)
	}

	return feed, nil
}

// extractVideo prefers the entry's own video attribute and falls back to
// the first link of an embedded video block.
func extractVideo(entry *goquery.Selection, sel scraper.Selectors, base *url.URL) *string {
	if v, ok := entry.Attr(sel.VideoAttr); ok && strings.Contains(v, "video") {
		return resolve(base, v)
	}

	href, ok := entry.Find(sel.EmbeddedVideo).First().Find("a").First().Attr("href")
	if !ok {
		return nil
	}
	return resolve(base, href)
}

// ExtractArticle builds the Article for feed from its detail page. A
// missing source link leaves Source nil.
func ExtractArticle(feed *newsfeed.Feed, doc *goquery.Document, sel scraper.Selectors) *newsfeed.Article {
	var source *string
	if href, ok := doc.Find(sel.SourceLinkSelector).First().Attr("href"); ok {
		source = newsfeed.StringPtr(strings.TrimSpace(href))
	}

	return newsfeed.NewArticle(*feed, source)
}

// resolve turns ref into an absolute URL against base. Empty refs are
// treated as absent.
func resolve(base *url.URL, ref string) *string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if base == nil {
		return &ref
	}

	u, err := base.Parse(ref)
	if err != nil {
		return &ref
	}

	abs := u.String()
	return &abs
}
