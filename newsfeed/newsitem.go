package newsfeed

// Feed is the lightweight record extracted from the newest entry of the
// listing page. Optional fields are nil when the markup does not carry
// them.
type Feed struct {
	ID    string  `json:"id"`
	Info  string  `json:"info"`
	Extra *string `json:"extra,omitempty"`
	Video *string `json:"video,omitempty"`
	Image *string `json:"image,omitempty"`
}

// Article is a Feed plus the source link resolved from the entry's detail
// page. Its identity is the identity of the Feed it was built from.
type Article struct {
	Feed
	Source *string `json:"source,omitempty"`
}

// NewArticle copies feed and attaches source.
func NewArticle(feed Feed, source *string) *Article {
	return &Article{
		Feed:   feed,
		Source: source,
	}
}

// StringPtr returns a pointer to s, or nil if s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
