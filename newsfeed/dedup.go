package newsfeed

import "slices"

// MaxKnownTitles bounds the title history kept in state.
const MaxKnownTitles = 30

// IsNew reports whether feed has not been notified yet. A nil lastID
// matches nothing, and a nil or empty knownTitles never rejects. Both
// checks must pass: the site has been seen to reissue ids for the same
// story, so the headline history backs up the id watermark.
func IsNew(feed *Feed, lastID *string, knownTitles []string) bool {
	if lastID != nil && feed.ID == *lastID {
		return false
	}

	return !slices.Contains(knownTitles, feed.Info)
}

// PushKnownTitle returns a copy of titles with title appended, evicting the
// oldest entries so that at most MaxKnownTitles remain.
func PushKnownTitle(titles []string, title string) []string {
	out := make([]string, 0, min(len(titles)+1, MaxKnownTitles))

	// Oldest entries sit at the front
	if drop := len(titles) + 1 - MaxKnownTitles; drop > 0 {
		titles = titles[drop:]
	}
	out = append(out, titles...)
	out = append(out, title)

	return out
}
