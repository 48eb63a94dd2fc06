package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pevans/uawatch/config"
	"github.com/pevans/uawatch/notify"
)

func handleStateCommand(action string, args []string) {
	if action == "help" || action == "--help" || action == "-h" {
		printStateUsage()
		return
	}

	settings, err := loadSettings()
	if err != nil {
		fatalf("failed to load settings: %v", err)
	}

	fs := flag.NewFlagSet("state "+action, flag.ExitOnError)
	stateType := fs.String("state-type", getEnv("UAWATCH_STATE_TYPE", settings.StateType), "State backend: file, sqlite or postgres (UAWATCH_STATE_TYPE)")
	stateDSN := fs.String("state-dsn", getEnv("UAWATCH_STATE_DSN", settings.StateDSN), "State file path or database DSN (UAWATCH_STATE_DSN)")
	fs.Parse(args)

	store, err := config.OpenStateStore(*stateType, *stateDSN)
	if err != nil {
		fatalf("failed to open state store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	switch action {
	case "show":
		showState(ctx, store)
	case "get":
		if fs.NArg() < 1 {
			fatalf("key is required\nUsage: uawatch state get <key>")
		}
		getStateKey(ctx, store, fs.Arg(0))
	case "set-webhook":
		if fs.NArg() < 1 {
			fatalf("webhook URL is required\nUsage: uawatch state set-webhook <url>")
		}
		setWebhook(ctx, store, fs.Arg(0))
	case "set-embed-image":
		if fs.NArg() < 1 {
			fatalf("value is required\nUsage: uawatch state set-embed-image <true|false>")
		}
		setEmbedImage(ctx, store, fs.Arg(0))
	case "reset":
		resetState(ctx, store)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown state action: %s\n\n", action)
		printStateUsage()
		os.Exit(1)
	}
}

func showState(ctx context.Context, store config.StateStore) {
	state, err := store.Read(ctx)
	if err != nil {
		fatalf("failed to read state: %v", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		fatalf("failed to encode state: %v", err)
	}
	fmt.Println(string(data))
}

func getStateKey(ctx context.Context, store config.StateStore, key string) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, config.ErrKeyNotFound) {
		fatalf("key %q is not set", key)
	}
	if err != nil {
		fatalf("failed to read state: %v", err)
	}
	fmt.Println(string(raw))
}

func setWebhook(ctx context.Context, store config.StateStore, webhookURL string) {
	if err := notify.ValidateWebhookURL(webhookURL); err != nil {
		fatalf("%v", err)
	}
	if err := store.Write(ctx, map[string]any{config.KeyURL: webhookURL}); err != nil {
		fatalf("failed to write state: %v", err)
	}
	fmt.Println("Webhook URL updated")
}

func setEmbedImage(ctx context.Context, store config.StateStore, value string) {
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		fatalf("invalid value %q: must be true or false", value)
	}
	if err := store.Write(ctx, map[string]any{config.KeyEmbedImage: enabled}); err != nil {
		fatalf("failed to write state: %v", err)
	}
	fmt.Printf("Image embeds %s\n", map[bool]string{true: "enabled", false: "disabled"}[enabled])
}

// resetState clears the dedup watermark; the next top article is relayed.
func resetState(ctx context.Context, store config.StateStore) {
	partial := map[string]any{
		config.KeyLastID:      nil,
		config.KeyKnownTitles: []string{},
	}
	if err := store.Write(ctx, partial); err != nil {
		fatalf("failed to write state: %v", err)
	}
	fmt.Println("State reset")
}
