package uawatch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/pevans/uawatch/config"
	"github.com/pevans/uawatch/discovery"
	"github.com/pevans/uawatch/logging"
	"github.com/pevans/uawatch/newsfeed"
	"github.com/pevans/uawatch/notify"
	"github.com/pevans/uawatch/scraper"
)

// PageFetcher fetches and parses an article's detail page.
type PageFetcher interface {
	FetchHTML(ctx context.Context, url string) (*goquery.Document, error)
}

// Notifier delivers a formatted message.
type Notifier interface {
	Send(ctx context.Context, params *discordgo.WebhookParams) error
}

// CycleError records the phase a cycle failed in.
type CycleError struct {
	Phase Phase
	Err   error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// CycleResult describes one pass through the relay cycle.
type CycleResult struct {
	Outcome Outcome
	// Phase is the last phase the cycle entered.
	Phase Phase
	// Err is a *CycleError for OutcomeFailed and OutcomeEmptyListing.
	Err     error
	Feed    *newsfeed.Feed
	Article *newsfeed.Article
}

// RelayConfig holds the tunables of the relay.
type RelayConfig struct {
	Selectors scraper.Selectors
	Policy    RetryPolicy
	Logger    *logging.Logger
}

// RelayService polls the news site and relays each new top article to the
// webhook. It runs a single sequential loop.
type RelayService struct {
	listing   discovery.ListingSource
	fetcher   PageFetcher
	notifier  Notifier
	store     config.StateStore
	selectors scraper.Selectors
	policy    RetryPolicy
	log       *logging.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	intN  func(n int) int
}

// NewRelayService creates a relay. A nil config uses the default selectors,
// policy and a discarding logger.
func NewRelayService(
	listing discovery.ListingSource,
	fetcher PageFetcher,
	notifier Notifier,
	store config.StateStore,
	cfg *RelayConfig,
) *RelayService {
	if cfg == nil {
		cfg = &RelayConfig{}
	}

	selectors := cfg.Selectors.Merge(scraper.DefaultSelectors())

	policy := cfg.Policy
	if policy == nil {
		policy = DefaultRetryPolicy()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &RelayService{
		listing:   listing,
		fetcher:   fetcher,
		notifier:  notifier,
		store:     store,
		selectors: selectors,
		policy:    policy,
		log:       logger,
		now:       time.Now,
		sleep:     sleepContext,
		intN:      rand.IntN,
	}
}

// Run loops until ctx is cancelled, which is also its only return.
func (s *RelayService) Run(ctx context.Context) error {
	s.log.Debug("Relay starting")

	for {
		log := s.cycleLogger()
		result := s.runCycle(ctx, log)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := s.report(log, result)
		if err := s.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// RunOnce runs and reports a single cycle without sleeping afterwards.
func (s *RelayService) RunOnce(ctx context.Context) CycleResult {
	log := s.cycleLogger()
	result := s.runCycle(ctx, log)
	s.report(log, result)
	return result
}

// RunCycle runs a single cycle and returns how it ended. Errors never
// escape the cycle; they are carried in the result.
func (s *RelayService) RunCycle(ctx context.Context) CycleResult {
	return s.runCycle(ctx, s.cycleLogger())
}

func (s *RelayService) cycleLogger() *logging.Logger {
	return s.log.With("cycle", uuid.NewString()[:8])
}

func (s *RelayService) runCycle(ctx context.Context, log *logging.Logger) CycleResult {
	phase := PhaseFetchListing
	enter := func(p Phase) {
		phase = p
		log.Debug("Cycle phase", "phase", p.String())
	}
	fail := func(p Phase, err error) CycleResult {
		return CycleResult{Outcome: OutcomeFailed, Phase: p, Err: &CycleError{Phase: p, Err: err}}
	}

	log.Log(logging.Check, fmt.Sprintf("%s - Checking for new articles...", s.now().Format(time.DateTime)))
	log.Log(logging.Progress, "Fetching all articles and parsing HTML...")

	enter(PhaseFetchListing)
	feed, err := s.listing.Latest(ctx)
	if err != nil {
		p := PhaseExtractFeed
		var fe *discovery.FetchError
		if errors.As(err, &fe) {
			p = PhaseFetchListing
		}
		if errors.Is(err, discovery.ErrEmptyListing) {
			return CycleResult{Outcome: OutcomeEmptyListing, Phase: p, Err: &CycleError{Phase: p, Err: err}}
		}
		return fail(p, err)
	}
	enter(PhaseExtractFeed)

	// State is read fresh every cycle so edits made while running count
	enter(PhaseDedupCheck)
	state, err := s.store.Read(ctx)
	if err != nil {
		return fail(PhaseDedupCheck, err)
	}
	if !newsfeed.IsNew(feed, state.LastID, state.KnownTitles) {
		enter(PhaseSkip)
		return CycleResult{Outcome: OutcomeNoNews, Phase: phase, Feed: feed}
	}

	log.Log(logging.Progress, "New article found, checking article...", "id", feed.ID)

	enter(PhaseFetchDetail)
	if feed.Extra == nil {
		return fail(PhaseFetchDetail, discovery.ErrNoDetailLink)
	}
	doc, err := s.fetcher.FetchHTML(ctx, *feed.Extra)

	var article *newsfeed.Article
	var fe *discovery.FetchError
	switch {
	case err == nil:
		enter(PhaseExtractArticle)
		article = discovery.ExtractArticle(feed, doc, s.selectors)
	case errors.As(err, &fe) && fe.StatusCode != 0:
		// The page answered, just not with the article: relay without a source
		log.Log(logging.Progress, "Article page unavailable, sending without source...", "status", fe.StatusCode)
		enter(PhaseExtractArticle)
		article = newsfeed.NewArticle(*feed, nil)
	default:
		return fail(PhaseFetchDetail, err)
	}

	enter(PhaseFormat)
	params := notify.Format(article, notify.Options{HideImage: !state.ShouldEmbedImage()}, s.now())

	enter(PhaseSend)
	if err := s.notifier.Send(ctx, params); err != nil {
		return fail(PhaseSend, err)
	}

	enter(PhasePersist)
	err = s.store.Write(ctx, map[string]any{
		config.KeyLastID:      feed.ID,
		config.KeyKnownTitles: newsfeed.PushKnownTitle(state.KnownTitles, feed.Info),
	})
	if err != nil {
		result := fail(PhasePersist, err)
		result.Feed, result.Article = feed, article
		return result
	}

	return CycleResult{Outcome: OutcomeNotified, Phase: phase, Feed: feed, Article: article}
}

// report logs how a cycle ended and returns the delay before the next.
func (s *RelayService) report(log *logging.Logger, result CycleResult) time.Duration {
	delay := s.policy.Delay(result.Outcome, s.intN)

	switch result.Outcome {
	case OutcomeNotified:
		log.Log(logging.Alert, result.Feed.Info)
	case OutcomeNoNews:
		log.Log(logging.Skip, fmt.Sprintf("No news found, waiting %d seconds...", int(delay/time.Second)))
	case OutcomeEmptyListing:
		log.Log(logging.Alert, "Failed to get the listing, probably a 5XX error, trying again...", "err", result.Err)
	default:
		log.Error("Cycle failed", "err", result.Err, "retry_in", delay)
	}

	log.Debug("Cycle phase", "phase", result.Outcome.WaitPhase().String(), "delay", delay)

	return delay
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
