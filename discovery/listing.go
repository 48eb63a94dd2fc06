package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/pevans/uawatch/newsfeed"
	"github.com/pevans/uawatch/scraper"
)

// ListingSource yields the newest entry of the news site.
type ListingSource interface {
	Latest(ctx context.Context) (*newsfeed.Feed, error)
}

// HTMLListing scrapes the newest entry from the site's front page.
type HTMLListing struct {
	fetcher   *Fetcher
	url       string
	base      *url.URL
	selectors scraper.Selectors
}

// NewHTMLListing creates a listing source for listingURL.
func NewHTMLListing(fetcher *Fetcher, listingURL string, sel scraper.Selectors) (*HTMLListing, error) {
	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("listing URL must use http or https scheme")
	}

	return &HTMLListing{
		fetcher:   fetcher,
		url:       listingURL,
		base:      base,
		selectors: sel,
	}, nil
}

// Latest fetches the front page and extracts its newest entry. Any error
// status is reported as ErrEmptyListing, since error and interstitial pages
// carry no listing container.
func (l *HTMLListing) Latest(ctx context.Context) (*newsfeed.Feed, error) {
	doc, err := l.fetcher.FetchHTML(ctx, l.url)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			return nil, fmt.Errorf("%w: %w", ErrEmptyListing, err)
		}
		return nil, err
	}

	return ExtractFeed(doc, l.selectors, l.base)
}
