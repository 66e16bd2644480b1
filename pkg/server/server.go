// Package server exposes dashboard pages over HTTP and streams page events
// over WebSocket.
package server

import (
	"context"
	stdliberrors "errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	"github.com/odvcencio/earthcontrol/pkg/dashboard"
	"github.com/odvcencio/earthcontrol/pkg/filewatch"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
	"github.com/odvcencio/earthcontrol/pkg/scene"
	"github.com/odvcencio/earthcontrol/pkg/telemetry"
	"github.com/odvcencio/earthcontrol/pkg/widget"
)

// DefaultMaxParticleCount caps the count query parameter of /api/scene.
const DefaultMaxParticleCount = 20000

// Config configures the HTTP surface.
type Config struct {
	BindAddress    string
	AssetsDir      string
	AllowedOrigins []string
	MaxPages       int
	PublicMetrics  bool
	Version        string

	// MaxEventClients caps open /ws/pages streams; negative disables the cap.
	MaxEventClients int

	Title            string
	RefreshIndicator time.Duration
	ResizeThrottle   time.Duration
	DefaultView      page.ViewMode

	ParticleCount    int
	MaxParticleCount int
	SceneSeed        uint64
}

// Announcer forwards a locally published signal to other replicas.
//
//go:generate mockgen -package=server -destination=mock_announcer_test.go github.com/odvcencio/earthcontrol/pkg/server Announcer
type Announcer interface {
	Announce(sig bus.Signal) error
}

// Server hosts the dashboard pages, page API and event stream.
type Server struct {
	cfg        Config
	registry   *widget.Registry
	pages      *PageStore
	hub        *Hub
	telemetry  *telemetry.Hub
	metrics    *telemetry.Metrics
	remote     Announcer
	assets     *filewatch.Feed
	eventSlots *connLimiter
	logger     *log.Logger
	eventLog   *logging.Logger
	httpServer *http.Server
	router     http.Handler
}

// New builds a server. registry, events and metrics may be nil; nil
// registry means the default widget set.
func New(cfg Config, registry *widget.Registry, events *telemetry.Hub, metrics *telemetry.Metrics, logger *logging.Logger) *Server {
	if registry == nil {
		registry = widget.DefaultRegistry()
	}
	if cfg.MaxParticleCount <= 0 {
		cfg.MaxParticleCount = DefaultMaxParticleCount
	}
	if cfg.ParticleCount <= 0 {
		cfg.ParticleCount = scene.DefaultParticleCount
	}
	if cfg.DefaultView == "" {
		cfg.DefaultView = page.ViewGrid
	}
	if cfg.MaxEventClients == 0 {
		cfg.MaxEventClients = DefaultMaxEventClients
	}

	s := &Server{
		cfg:        cfg,
		registry:   registry,
		hub:        NewHub(),
		telemetry:  events,
		metrics:    metrics,
		logger:     log.New(os.Stdout, "[http] ", log.LstdFlags),
		eventLog:   logger,
		eventSlots: newConnLimiter(cfg.MaxEventClients),
	}
	if metrics != nil {
		s.hub.onCount = func(n int) { metrics.WSClients.Set(float64(n)) }
	}
	s.pages = NewPageStore(cfg.MaxPages, s.newDashboard, metrics, events)
	s.router = s.routes()
	return s
}

// SetLogOutput redirects lifecycle lines.
func (s *Server) SetLogOutput(w io.Writer) {
	s.logger.SetOutput(w)
}

// SetAnnouncer mirrors every refresh issued through this server to other
// replicas.
func (s *Server) SetAnnouncer(a Announcer) {
	s.remote = a
}

// SetAssetFeed forwards every asset change in feed to open pages and
// reports the feed's recent history on /healthz.
func (s *Server) SetAssetFeed(feed *filewatch.Feed) {
	s.assets = feed
	feed.OnChange(s.AssetChanged)
}

// Pages returns the page store.
func (s *Server) Pages() *PageStore {
	return s.pages
}

// Handler returns the router, without the h2c wrapper.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newDashboard(id string) *dashboard.Dashboard {
	return dashboard.New(dashboard.Options{
		PageID:           id,
		Title:            s.cfg.Title,
		RefreshIndicator: s.cfg.RefreshIndicator,
		ResizeThrottle:   s.cfg.ResizeThrottle,
		DefaultView:      s.cfg.DefaultView,
		Registry:         s.registry,
		Logger:           s.eventLog,
		Metrics:          s.metrics,
		Events:           s.telemetry,
	})
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.requestIDMiddleware)
	router.Use(s.observeMiddleware)
	router.Use(s.corsMiddleware)
	router.Use(s.securityHeadersMiddleware)

	router.Get("/", s.handleNewPage)
	router.Get("/pages/{pageID}", s.handlePage)
	router.Get("/pages/{pageID}/grid", s.handleGrid)
	router.Get("/manifesto", s.handleManifesto)

	router.Route("/api", func(r chi.Router) {
		r.Get("/widgets", s.handleWidgets)
		r.Get("/scene", s.handleScene)
		r.Route("/pages/{pageID}", func(r chi.Router) {
			r.Get("/", s.handlePageState)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/view/{mode}", s.handleSetView)
			r.Post("/resize", s.handleResize)
		})
	})

	router.Get("/ws/pages/{pageID}", s.handlePageEvents)
	router.Get("/metrics", s.handleMetrics)
	router.Get("/healthz", s.handleHealthz)
	s.mountStatic(router)
	return router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	// h2c lets the event stream work behind proxies that speak HTTP/2
	// cleartext and strip HTTP/1.1 upgrade headers.
	h2s := &http2.Server{}
	s.httpServer = &http.Server{
		Addr:              s.cfg.BindAddress,
		Handler:           h2c.NewHandler(s.router, h2s),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}

	forwardCtx, stopForward := context.WithCancel(ctx)
	defer stopForward()
	go s.forwardEvents(forwardCtx)

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Printf("serving dashboard on %s", s.cfg.BindAddress)
		if !isLoopbackBindAddress(s.cfg.BindAddress) {
			s.logger.Printf("warning: %s is reachable from other hosts", s.cfg.BindAddress)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && !stdliberrors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.httpServer.Shutdown(shutdownCtx)
		s.pages.Close()
		s.logger.Printf("dashboard server stopped")
		return err
	case err := <-serverErr:
		s.pages.Close()
		return err
	}
}

// forwardEvents relays telemetry events to WebSocket clients until ctx ends
// or the telemetry hub closes.
func (s *Server) forwardEvents(ctx context.Context) {
	if s.telemetry == nil {
		return
	}
	ch, cancel := s.telemetry.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.hub.Broadcast(event)
		}
	}
}

// RefreshAll publishes Refresh on every live page. It serves refreshes that
// arrive from other replicas, so nothing is announced back.
func (s *Server) RefreshAll() int {
	pages := s.pages.All()
	for _, d := range pages {
		d.PublishRefresh()
	}
	if s.metrics != nil {
		s.metrics.RemoteRefreshes.Inc()
	}
	s.eventLog.Info(logging.CategoryBus, "bus.remote_refresh", "refresh from another replica", map[string]any{
		"pages": len(pages),
	})
	return len(pages)
}

// AssetChanged tells every open page that a static asset changed.
func (s *Server) AssetChanged(change filewatch.FileChange) {
	s.telemetry.Publish(telemetry.Event{
		Type: telemetry.EventAssetsChanged,
		Data: map[string]any{
			"path":    change.Path,
			"change":  string(change.Type),
			"kind":    string(change.Kind),
			"version": change.Version,
		},
	})
}

func isLoopbackBindAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return false
	}
	switch strings.ToLower(host) {
	case "localhost":
		return true
	case "0.0.0.0", "::":
		return false
	default:
		ip := net.ParseIP(host)
		if ip == nil {
			return false
		}
		return ip.IsLoopback()
	}
}
