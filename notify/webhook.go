package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// discordWebhookPath matches /api[/vN]/webhooks/{id}/{token}.
var discordWebhookPath = regexp.MustCompile(`^/api(?:/v\d+)?/webhooks/\d+/[\w-]+/?$`)

// DeliveryError is returned when the webhook answers with a non-2xx
// status.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// maxErrorBody bounds the response text kept in a DeliveryError.
const maxErrorBody = 512

// WebhookSender executes a webhook through a tokenless discordgo session.
// Requests go to the configured URL, so Discord-compatible relays on other
// hosts work too.
type WebhookSender struct {
	target  *url.URL
	id      string
	token   string
	session *discordgo.Session
}

// NewWebhookSender validates rawURL and returns a sender for it. A nil
// client keeps discordgo's default client.
func NewWebhookSender(rawURL string, client *http.Client) (*WebhookSender, error) {
	if err := ValidateWebhookURL(rawURL); err != nil {
		return nil, err
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if client != nil {
		session.Client = client
	}
	session.MaxRestRetries = 0
	session.ShouldRetryOnRateLimit = false

	id, token := webhookCredentials(target.Path)

	return &WebhookSender{
		target:  target,
		id:      id,
		token:   token,
		session: session,
	}, nil
}

// webhookCredentials takes the id and token from the last two segments of
// a webhook path.
func webhookCredentials(p string) (id, token string) {
	p = strings.Trim(p, "/")
	token = path.Base(p)
	id = path.Base(path.Dir(p))
	return id, token
}

// ValidateWebhookURL checks that rawURL is an absolute http(s) URL and,
// for Discord hosts, that it has the id/token path.
func ValidateWebhookURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid webhook URL: must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("invalid webhook URL: missing host")
	}

	host := strings.ToLower(u.Hostname())
	if isDiscordHost(host) && !discordWebhookPath.MatchString(u.Path) {
		return fmt.Errorf("invalid webhook URL: expected /api/webhooks/<id>/<token>")
	}

	return nil
}

func isDiscordHost(host string) bool {
	for _, domain := range []string{"discord.com", "discordapp.com"} {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// Send delivers params in a single attempt: no retry on 5xx or rate
// limits.
func (s *WebhookSender) Send(ctx context.Context, params *discordgo.WebhookParams) error {
	_, err := s.session.WebhookExecute(s.id, s.token, false, params,
		discordgo.WithContext(ctx),
		discordgo.WithRestRetries(0),
		discordgo.WithRetryOnRatelimit(false),
		s.toTarget,
	)
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return &DeliveryError{
			StatusCode: restErr.Response.StatusCode,
			Body:       truncate(strings.TrimSpace(string(restErr.ResponseBody)), maxErrorBody),
		}
	}

	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) && rateErr.RateLimit != nil && rateErr.TooManyRequests != nil {
		return &DeliveryError{
			StatusCode: http.StatusTooManyRequests,
			Body:       fmt.Sprintf("%s (retry after %s)", rateErr.Message, rateErr.RetryAfter),
		}
	}

	return fmt.Errorf("failed to deliver webhook: %w", err)
}

// toTarget points the request built by discordgo at the configured URL.
func (s *WebhookSender) toTarget(cfg *discordgo.RequestConfig) {
	target := *s.target
	cfg.Request.URL = &target
	cfg.Request.Host = target.Host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
