package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/uawatch"
	"github.com/pevans/uawatch/config"
	"github.com/pevans/uawatch/discovery"
	"github.com/pevans/uawatch/logging"
	"github.com/pevans/uawatch/notify"
)

func handleRun(args []string) {
	settings, err := loadSettings()
	if err != nil {
		fatalf("failed to load settings: %v", err)
	}

	// Flags beat environment variables, which beat the settings file
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	stateType := fs.String("state-type", getEnv("UAWATCH_STATE_TYPE", settings.StateType), "State backend: file, sqlite or postgres (UAWATCH_STATE_TYPE)")
	stateDSN := fs.String("state-dsn", getEnv("UAWATCH_STATE_DSN", settings.StateDSN), "State file path or database DSN (UAWATCH_STATE_DSN)")
	siteURL := fs.String("site", getEnv("UAWATCH_SITE_URL", settings.SiteURL), "Listing page to poll (UAWATCH_SITE_URL)")
	listing := fs.String("listing", getEnv("UAWATCH_LISTING", settings.Listing), "Listing mode: html or syndication (UAWATCH_LISTING)")
	syndicationURL := fs.String("syndication-url", getEnv("UAWATCH_SYNDICATION_URL", settings.SyndicationURL), "RSS/Atom feed for syndication mode (UAWATCH_SYNDICATION_URL)")
	minDelay := fs.Duration("min-delay", getEnvDuration("UAWATCH_MIN_DELAY", settings.MinDelay), "Shortest wait between cycles (UAWATCH_MIN_DELAY)")
	maxDelay := fs.Duration("max-delay", getEnvDuration("UAWATCH_MAX_DELAY", settings.MaxDelay), "Longest wait between cycles (UAWATCH_MAX_DELAY)")
	emptyRetry := fs.Duration("empty-retry", getEnvDuration("UAWATCH_EMPTY_RETRY", settings.EmptyRetry), "Wait after an empty listing (UAWATCH_EMPTY_RETRY)")
	timeout := fs.Duration("timeout", getEnvDuration("UAWATCH_TIMEOUT", settings.Timeout), "Timeout per HTTP request (UAWATCH_TIMEOUT)")
	logLevel := fs.String("log-level", getEnv("UAWATCH_LOG_LEVEL", settings.LogLevel), "debug, info, warn or error (UAWATCH_LOG_LEVEL)")
	once := fs.Bool("once", false, "Run a single cycle and exit; exit status 1 if it failed")
	fs.Parse(args)

	settings.StateType = *stateType
	settings.StateDSN = *stateDSN
	settings.SiteURL = *siteURL
	settings.Listing = *listing
	settings.SyndicationURL = *syndicationURL
	settings.MinDelay = *minDelay
	settings.MaxDelay = *maxDelay
	settings.EmptyRetry = *emptyRetry
	settings.Timeout = *timeout
	settings.LogLevel = *logLevel

	if err := settings.Validate(); err != nil {
		fatalf("%v", err)
	}

	logger, err := logging.New(os.Stderr, settings.LogLevel)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := config.OpenStateStore(settings.StateType, settings.StateDSN)
	if err != nil {
		fatalf("failed to open state store: %v", err)
	}
	defer store.Close()

	// The webhook is fixed for the life of the process
	state, err := store.Read(ctx)
	if err != nil {
		fatalf("failed to read state: %v", err)
	}
	if err := state.Validate(); err != nil {
		fatalf("%v", err)
	}

	sender, err := notify.NewWebhookSender(state.URL, &http.Client{Timeout: settings.Timeout})
	if err != nil {
		fatalf("%v", err)
	}

	fetcher := discovery.NewFetcher(discovery.FetcherConfig{
		Timeout:         settings.Timeout,
		RequestInterval: settings.RequestInterval,
		UserAgent:       settings.UserAgent,
	})

	var source discovery.ListingSource
	switch settings.Listing {
	case config.ListingSyndication:
		source = discovery.NewSyndicationListing(fetcher, settings.SyndicationURL)
	default:
		source, err = discovery.NewHTMLListing(fetcher, settings.SiteURL, settings.Selectors)
		if err != nil {
			fatalf("%v", err)
		}
	}

	service := uawatch.NewRelayService(source, fetcher, sender, store, &uawatch.RelayConfig{
		Selectors: settings.Selectors,
		Policy:    uawatch.NewRetryPolicy(settings.MinDelay, settings.MaxDelay, settings.EmptyRetry),
		Logger:    logger,
	})

	if *once {
		result := service.RunOnce(ctx)
		if result.Outcome == uawatch.OutcomeFailed || result.Outcome == uawatch.OutcomeEmptyListing {
			os.Exit(1)
		}
		return
	}

	logger.Debug("Relay configured", "listing", settings.Listing, "state", settings.StateType)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fatalf("relay stopped: %v", err)
	}
	logger.Debug("Shutting down")
}
