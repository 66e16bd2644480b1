package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	"github.com/odvcencio/earthcontrol/pkg/config"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/filewatch"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
	"github.com/odvcencio/earthcontrol/pkg/server"
	"github.com/odvcencio/earthcontrol/pkg/telemetry"
	"github.com/odvcencio/earthcontrol/pkg/widget"
)

// remoteBus mirrors refresh signals between replicas.
type remoteBus interface {
	server.Announcer
	Listen(sig bus.Signal, fn func(bus.Signal)) error
	Close() error
}

type dashboardServer interface {
	Start(ctx context.Context) error
}

var serveDialRemoteFn = func(cfg bus.RemoteConfig) (remoteBus, error) {
	return bus.NewNATSBridge(cfg)
}

var serveStartFn = func(ctx context.Context, s dashboardServer) error {
	return s.Start(ctx)
}

type serveFlags struct {
	configPath     string
	bind           string
	assets         string
	watch          bool
	allowedOrigins []string
	publicMetrics  bool
	natsURL        string
	trace          bool
	logLevel       string
	set            map[string]bool
}

func parseServeFlags(args []string) (*serveFlags, error) {
	opts := &serveFlags{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file (default: ~/.earthcontrol and ./.earthcontrol hierarchy)")
	fs.StringVar(&opts.bind, "bind", "", "address to bind the dashboard server (default "+config.DefaultBind+")")
	fs.StringVar(&opts.assets, "assets", "", "serve /static from this directory instead of the embedded assets")
	fs.BoolVar(&opts.watch, "watch", false, "push reload events to open pages when --assets changes")
	fs.Var(&stringListValue{target: &opts.allowedOrigins}, "allow-origin", "additional allowed Origin (repeatable, accepts comma-separated list)")
	fs.BoolVar(&opts.publicMetrics, "public-metrics", true, "expose /metrics to non-loopback callers")
	fs.StringVar(&opts.natsURL, "nats", "", "NATS URL used to mirror refresh signals across replicas")
	fs.BoolVar(&opts.trace, "trace", false, "export OpenTelemetry spans to stderr")
	fs.StringVar(&opts.logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, withExitCode(fmt.Errorf("serve takes no arguments, got %q", fs.Args()), exitUsage)
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply layers explicitly set flags over cfg and revalidates.
func (o *serveFlags) apply(cfg *config.Config) error {
	if o.set["bind"] {
		cfg.Server.Bind = strings.TrimSpace(o.bind)
	}
	if o.set["assets"] {
		cfg.Server.AssetsDir = strings.TrimSpace(o.assets)
	}
	if o.set["watch"] {
		cfg.Server.WatchAssets = o.watch
	}
	if len(o.allowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o.allowedOrigins...)
	}
	if o.set["public-metrics"] {
		cfg.Server.PublicMetrics = o.publicMetrics
	}
	if o.set["nats"] {
		cfg.Bus.NATSURL = strings.TrimSpace(o.natsURL)
	}
	if o.set["trace"] {
		cfg.Tracing.Enabled = o.trace
	}
	if o.set["log-level"] {
		cfg.Logging.Level = o.logLevel
	}
	return cfg.Validate()
}

func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		BindAddress:      cfg.Server.Bind,
		AssetsDir:        cfg.ResolveAssetsDir(),
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		MaxPages:         cfg.Server.MaxPages,
		PublicMetrics:    cfg.Server.PublicMetrics,
		Version:          version,
		RefreshIndicator: cfg.Dashboard.RefreshIndicator,
		ResizeThrottle:   cfg.Dashboard.ResizeThrottle,
		DefaultView:      page.ViewMode(strings.ToLower(strings.TrimSpace(cfg.Dashboard.DefaultView))),
		ParticleCount:    cfg.Scene.ParticleCount,
		MaxParticleCount: config.MaxParticleCount,
		SceneSeed:        cfg.Scene.Seed,
	}
}

// newEventLogger writes JSONL events to cfg.Logging.Dir, or stdout when no
// directory is configured.
func newEventLogger(cfg *config.Config) (*logging.Logger, error) {
	var logger *logging.Logger
	if dir := strings.TrimSpace(cfg.Logging.Dir); dir != "" {
		fileLogger, err := logging.NewFileLogger(dir)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "open log directory").
				WithContext("dir", dir)
		}
		logger = fileLogger
	} else {
		logger = logging.NewLogger(stdout)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger.SetMinLevel(level)
	return logger, nil
}

func runServeCommand(args []string) error {
	opts, err := parseServeFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	logger, err := newEventLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.NewTracerProvider("earthcontrol", version, stderr)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	events := telemetry.NewHub()
	defer events.Close()
	metrics := telemetry.NewMetrics()
	srv := server.New(serverConfig(cfg), widget.DefaultRegistry(), events, metrics, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if url := strings.TrimSpace(cfg.Bus.NATSURL); url != "" {
		remote, err := serveDialRemoteFn(bus.RemoteConfig{
			URL:           url,
			Name:          "earthcontrol",
			SubjectPrefix: cfg.Bus.SubjectPrefix,
		})
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeBusConnect, "connect to NATS").
				WithContext("url", url).
				WithRemediation("check bus.nats_url or unset EARTHCONTROL_NATS_URL to run standalone")
		}
		if err := remote.Listen(bus.Refresh, func(bus.Signal) { srv.RefreshAll() }); err != nil {
			_ = remote.Close()
			return apperrors.Wrap(err, apperrors.ErrCodeBusConnect, "subscribe to remote refresh")
		}
		srv.SetAnnouncer(remote)
		logger.Info(logging.CategoryBus, "bus.remote_connected", "mirroring refresh signals", map[string]any{"url": url})
		g.Go(func() error {
			<-ctx.Done()
			return remote.Close()
		})
	}

	if cfg.Server.WatchAssets {
		feed := filewatch.NewFeed(filewatch.DefaultRecent)
		srv.SetAssetFeed(feed)
		dw, err := filewatch.NewDirWatcher(cfg.ResolveAssetsDir(), feed, filewatch.DefaultDebounce, logger)
		if err != nil {
			return fmt.Errorf("watch assets: %w", err)
		}
		if err := dw.Start(ctx); err != nil {
			dw.Stop()
			return fmt.Errorf("watch assets: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			dw.Stop()
			return nil
		})
	}

	g.Go(func() error {
		err := serveStartFn(ctx, srv)
		cancel()
		return err
	})
	return g.Wait()
}

type stringListValue struct {
	target *[]string
}

func (s *stringListValue) String() string {
	if s == nil || s.target == nil {
		return ""
	}
	return strings.Join(*s.target, ",")
}

func (s *stringListValue) Set(value string) error {
	if s.target == nil {
		return fmt.Errorf("no target slice configured")
	}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			*s.target = append(*s.target, trimmed)
		}
	}
	return nil
}
