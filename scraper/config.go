package scraper

// Selectors defines how to pull the newest entry out of the listing page
// and the source link out of its detail page. Class selectors use exact
// attribute matches because the site puts extra classes on near-identical
// elements.
type Selectors struct {
	ListingSelector     string `json:"listing_selector" yaml:"listing"`
	TitleSelector       string `json:"title_selector" yaml:"title"`
	IDAttr              string `json:"id_attr" yaml:"id_attr"`
	CommentLinkSelector string `json:"comment_link_selector" yaml:"comment_link"`
	VideoAttr           string `json:"video_attr" yaml:"video_attr"`
	EmbeddedVideo       string `json:"embedded_video_selector" yaml:"embedded_video"`
	ImageSelector       string `json:"image_selector" yaml:"image"`
	SourceLinkSelector  string `json:"source_link_selector" yaml:"source_link"`
}

// DefaultSelectors returns the selectors for liveuamap.com.
func DefaultSelectors() Selectors {
	return Selectors{
		ListingSelector:     `div[id="feedler"]`,
		TitleSelector:       `div[class="title"]`,
		IDAttr:              "data-id",
		CommentLinkSelector: `a[class="comment-link"]`,
		VideoAttr:           "data-twitpic",
		EmbeddedVideo:       `blockquote[class="twitter-video"]`,
		ImageSelector:       `div[class="img"] img`,
		SourceLinkSelector:  `a[class="source-link"]`,
	}
}

// Merge returns s with every empty field filled from defaults.
func (s Selectors) Merge(defaults Selectors) Selectors {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}

	fill(&s.ListingSelector, defaults.ListingSelector)
	fill(&s.TitleSelector, defaults.TitleSelector)
	fill(&s.IDAttr, defaults.IDAttr)
	fill(&s.CommentLinkSelector, defaults.CommentLinkSelector)
	fill(&s.VideoAttr, defaults.VideoAttr)
	fill(&s.EmbeddedVideo, defaults.EmbeddedVideo)
	fill(&s.ImageSelector, defaults.ImageSelector)
	fill(&s.SourceLinkSelector, defaults.SourceLinkSelector)

	return s
}
