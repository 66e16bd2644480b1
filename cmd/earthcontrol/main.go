package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/odvcencio/earthcontrol/pkg/config"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// stdout and stderr are swapped out by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"serve"}
	}
	os.Exit(dispatchSubcommand(args))
}

func dispatchSubcommand(args []string) int {
	switch args[0] {
	case "--version", "-v", "version":
		printVersion()
		return 0
	case "--help", "-h", "help":
		printHelp()
		return 0
	case "serve":
		return runCommand(runServeCommand, args[1:])
	case "render":
		return runCommand(runRenderCommand, args[1:])
	case "scene":
		return runCommand(runSceneCommand, args[1:])
	case "widgets":
		return runCommand(runWidgetsCommand, args[1:])
	case "manifesto":
		return runCommand(runManifestoCommand, args[1:])
	case "events":
		return runCommand(runEventsCommand, args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(stderr, "Error: unknown flag: %s\n", args[0])
		} else {
			fmt.Fprintf(stderr, "Error: unknown command: %s\n", args[0])
		}
		fmt.Fprintln(stderr, "Run 'earthcontrol --help' for usage.")
		return 1
	}
}

func runCommand(handler func([]string) error, args []string) int {
	if err := handler(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCodeForError(err)
	}
	return 0
}

// loadConfig reads path when set, otherwise the default config hierarchy.
func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func printHelp() {
	fmt.Fprintln(stdout, "Earth Control Interface - planetary monitoring dashboard")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "USAGE:")
	fmt.Fprintln(stdout, "  earthcontrol [COMMAND] [FLAGS]")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "COMMANDS:")
	fmt.Fprintln(stdout, "  serve [--bind host:port]         Start the dashboard HTTP/WebSocket server (default)")
	fmt.Fprintln(stdout, "  render [--out file] [--view v]   Write a fully mounted dashboard page")
	fmt.Fprintln(stdout, "  scene [--count n] [--seed s]     Print the globe scene as JSON")
	fmt.Fprintln(stdout, "  widgets [--json]                 List registered widgets")
	fmt.Fprintln(stdout, "  manifesto [--html]               Render the full project manifesto")
	fmt.Fprintln(stdout, "  events [--count n] [--errors]    Show recent events from the JSONL log")
	fmt.Fprintln(stdout, "  version                          Show version information")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "ENVIRONMENT:")
	fmt.Fprintln(stdout, "  EARTHCONTROL_CONFIG              Extra config file merged after the defaults")
	fmt.Fprintln(stdout, "  EARTHCONTROL_BIND                Override server.bind")
	fmt.Fprintln(stdout, "  EARTHCONTROL_ASSETS_DIR          Serve /static from this directory")
	fmt.Fprintln(stdout, "  EARTHCONTROL_WATCH_ASSETS        Push reload events when assets change")
	fmt.Fprintln(stdout, "  EARTHCONTROL_ALLOWED_ORIGINS     Comma-separated allowed origins")
	fmt.Fprintln(stdout, "  EARTHCONTROL_NATS_URL            Mirror refresh signals over NATS")
	fmt.Fprintln(stdout, "  EARTHCONTROL_LOG_LEVEL           debug, info, warn or error")
	fmt.Fprintln(stdout, "  EARTHCONTROL_LOG_DIR             Write JSONL logs here instead of stdout")
	fmt.Fprintln(stdout, "  EARTHCONTROL_TRACING             Export OpenTelemetry spans to stderr")
	fmt.Fprintln(stdout, "  EARTHCONTROL_SCENE_SEED          Fixed seed for the globe's accent particles")
	fmt.Fprintln(stdout, "  NO_COLOR                         Disable colored output")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "CONFIGURATION:")
	fmt.Fprintln(stdout, "  User config:    ~/.earthcontrol/config.yaml")
	fmt.Fprintln(stdout, "  Project config: ./.earthcontrol/config.yaml")
}

func printVersion() {
	fmt.Fprintf(stdout, "earthcontrol %s\n", version)
	if commit != "unknown" {
		fmt.Fprintf(stdout, "  Commit:     %s\n", commit)
	}
	if buildDate != "unknown" {
		fmt.Fprintf(stdout, "  Built:      %s\n", buildDate)
	}
	fmt.Fprintf(stdout, "  Go version: %s\n", runtime.Version())
}
