// Package notify turns articles into Discord webhook messages and delivers
// them.
package notify

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/discordgo"
	"github.com/pevans/uawatch/newsfeed"
)

// Fixed branding of every message.
const (
	AuthorName   = "New update about Ukraine"
	AuthorURL    = "https://github.com/pevans/uawatch"
	ThumbnailURL = "https://cdn.discordapp.com/emojis/691373958087442486.png"
	EmbedColor   = 0xf1c40f

	SourceLabel    = "ℹ️ Source of the news"
	SourceFallback = "ℹ️ Unable to find source..."
	VideoWarning   = "Warning: Can be graphical, view at your own risk"
	VideoLabel     = "Twitter video"
	TimezonesField = "Timezones"
)

// localeLayout mimics the en-US locale string, e.g. "3/7/2024, 1:05:09 PM".
const localeLayout = "1/2/2006, 3:04:05 PM"

// ukraineOffset is applied as a plain shift from UTC, not a zone lookup.
const ukraineOffset = 2 * time.Hour

var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// Options tune the message.
type Options struct {
	// HideImage leaves the article image out of the embed.
	HideImage bool
}

// Format builds the webhook message for article as of now.
func Format(article *newsfeed.Article, opts Options, now time.Time) *discordgo.WebhookParams {
	var desc strings.Builder
	if article.Source != nil {
		desc.WriteString(hyperlink(SourceLabel, *article.Source))
	} else {
		desc.WriteString(SourceFallback)
	}
	desc.WriteString("\n")
	desc.WriteString(article.Info)

	if article.Video != nil {
		desc.WriteString("\n\n")
		desc.WriteString(quote(VideoWarning))
		desc.WriteString("\n")
		desc.WriteString(hyperlink(VideoLabel, *article.Video))
	}

	embed := &discordgo.MessageEmbed{
		Color:       EmbedColor,
		Description: desc.String(),
		Author: &discordgo.MessageEmbedAuthor{
			Name: AuthorName,
			URL:  AuthorURL,
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: ThumbnailURL,
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  TimezonesField,
				Value: timezones(now),
			},
		},
	}

	if article.Image != nil && !opts.HideImage {
		embed.Image = &discordgo.MessageEmbedImage{URL: *article.Image}
	}

	return &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
}

// timezones renders now for US Eastern, Ukraine and Discord's own
// client-local timestamp tokens.
func timezones(now time.Time) string {
	return fmt.Sprintf("🇺🇸 %s\n🇺🇦 %s\n🌍 %s %s",
		now.In(eastern).Format(localeLayout),
		now.UTC().Add(ukraineOffset).Format(localeLayout),
		timestamp(now, "d"),
		timestamp(now, "t"),
	)
}

func hyperlink(label, url string) string {
	return fmt.Sprintf("[%s](%s)", label, url)
}

func quote(s string) string {
	return "> " + s
}

// timestamp renders a Discord timestamp token in the given style.
func timestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
