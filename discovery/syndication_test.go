package discovery

import (
	"context"
	"net/http"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Live map</title>
		<link>https://example.com/</link>
		<description>updates</description>
		<item>
			<title>  Shelling near   Odesa </title>
			<link>https://example.com/en/100</link>
			<guid>event-100</guid>
			<description>text</description>
			<enclosure url="https://example.com/100.mp4" type="video/mp4" length="1024"/>
		</item>
		<item>
			<title>Older</title>
			<link>https://example.com/en/99</link>
			<guid>event-99</guid>
		</item>
	</channel>
</rss>`

// TestSyndicationListing_Latest verifies the first item becomes the feed
func TestSyndicationListing_Latest(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/rss+xml", rssFixture)

	listing := NewSyndicationListing(NewFetcher(FetcherConfig{}), srv.URL)
	feed, err := listing.Latest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "event-100", feed.ID)
	assert.Equal(t, "Shelling near Odesa", feed.Info)
	require.NotNil(t, feed.Extra)
	assert.Equal(t, "https://example.com/en/100", *feed.Extra)
	require.NotNil(t, feed.Video)
	assert.Equal(t, "https://example.com/100.mp4", *feed.Video)
}

// TestSyndicationListing_NoItems verifies an empty feed is an empty listing
func TestSyndicationListing_NoItems(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/rss+xml", `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title><link>https://example.com/</link><description>d</description></channel></rss>`)

	listing := NewSyndicationListing(NewFetcher(FetcherConfig{}), srv.URL)
	_, err := listing.Latest(context.Background())
	assert.ErrorIs(t, err, ErrEmptyListing)
}

// TestSyndicationListing_InvalidFeed verifies parse failures are reported
func TestSyndicationListing_InvalidFeed(t *testing.T) {
	srv := serve(t, http.StatusOK, "text/plain", "not a feed")

	listing := NewSyndicationListing(NewFetcher(FetcherConfig{}), srv.URL)
	_, err := listing.Latest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse feed")
}

// TestFeedItemToFeed_LinkAsID verifies the link stands in for a missing GUID
func TestFeedItemToFeed_LinkAsID(t *testing.T) {
	feed, err := FeedItemToFeed(&gofeed.Item{Title: "x", Link: "https://example.com/1"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/1", feed.ID)
}

// TestFeedItemToFeed_NoIdentity verifies an item without GUID or link is rejected
func TestFeedItemToFeed_NoIdentity(t *testing.T) {
	_, err := FeedItemToFeed(&gofeed.Item{Title: "x"})
	assert.ErrorIs(t, err, ErrMissingID)
}

// TestFeedItemToFeed_ImageEnclosure verifies image enclosures fill the image
func TestFeedItemToFeed_ImageEnclosure(t *testing.T) {
	item := &gofeed.Item{
		GUID:  "1",
		Title: "x",
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://example.com/a.png", Type: "image/png"},
			{URL: "https://example.com/b.png", Type: "image/png"},
		},
	}

	feed, err := FeedItemToFeed(item)
	require.NoError(t, err)

	require.NotNil(t, feed.Image)
	assert.Equal(t, "https://example.com/a.png", *feed.Image)
	assert.Nil(t, feed.Video)
	assert.Nil(t, feed.Extra)
}
