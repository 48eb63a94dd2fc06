package main

import (
	"fmt"
	"os"
)

func main() {
	// No arguments runs the relay, so the binary can be started bare
	if len(os.Args) < 2 {
		handleRun(nil)
		return
	}

	subcommand := os.Args[1]

	switch subcommand {
	case "run":
		handleRun(os.Args[2:])
	case "state":
		if len(os.Args) < 3 {
			printStateUsage()
			os.Exit(1)
		}
		handleStateCommand(os.Args[2], os.Args[3:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("uawatch - Relay new liveuamap.com articles to a Discord webhook")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  uawatch [run] [flags]")
	fmt.Println("  uawatch <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run        Poll the site and relay new articles (default)")
	fmt.Println("  state      Inspect or edit the persisted state")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  UAWATCH_CONFIG       Settings file (default: ~/.uawatch/config.yaml)")
	fmt.Println("  UAWATCH_STATE_TYPE   State backend: file, sqlite or postgres (default: file)")
	fmt.Println("  UAWATCH_STATE_DSN    State location (default: config.json, or uawatch.db for sqlite)")
	fmt.Println("  UAWATCH_SITE_URL     Listing page to poll")
	fmt.Println("  UAWATCH_LOG_LEVEL    debug, info, warn or error (default: info)")
}

func printStateUsage() {
	fmt.Println("uawatch state - Inspect or edit the persisted state")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  uawatch state <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  show                      Print the state document")
	fmt.Println("  get <key>                 Print one field")
	fmt.Println("  set-webhook <url>         Set the webhook URL")
	fmt.Println("  set-embed-image <bool>    Enable or disable image embeds")
	fmt.Println("  reset                     Forget the last seen article and titles")
	fmt.Println("  help                      Show this help message")
}
