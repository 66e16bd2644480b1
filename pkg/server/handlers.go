package server

import (
	"bytes"
	"context"
	"encoding/json"
	stdliberrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"nhooyr.io/websocket"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	"github.com/odvcencio/earthcontrol/pkg/dashboard"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
	"github.com/odvcencio/earthcontrol/pkg/scene"
	"github.com/odvcencio/earthcontrol/pkg/telemetry"
	"github.com/odvcencio/earthcontrol/pkg/widget"
)

// ManifestoTitle heads the long-form manifesto page.
const ManifestoTitle = "Project Manifesto"

// healthRecentAssets bounds the asset changes listed on /healthz.
const healthRecentAssets = 5

func eventsURL(pageID string) string {
	return "/ws/pages/" + pageID
}

func (s *Server) lookupPage(w http.ResponseWriter, r *http.Request) (*dashboard.Dashboard, bool) {
	d, err := s.pages.Get(chi.URLParam(r, "pageID"))
	if err != nil {
		s.respondAppError(w, r, err)
		return nil, false
	}
	return d, true
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	var buf bytes.Buffer
	err := d.Render(&buf, page.Meta{
		Title:     s.cfg.Title,
		EventsURL: eventsURL(d.ID()),
	})
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	respondHTML(w, buf.Bytes())
}

// handleNewPage creates and mounts a fresh dashboard.
func (s *Server) handleNewPage(w http.ResponseWriter, r *http.Request) {
	d := s.pages.Create()
	_, span := telemetry.StartSpan(r.Context(), "dashboard.mount")
	span.SetAttributes(telemetry.AttrPageID.String(d.ID()))
	d.Mount()
	for _, id := range d.State().Widgets {
		span.AddEvent("widget.mounted", trace.WithAttributes(telemetry.AttrWidgetID.String(id)))
	}
	span.End()
	s.renderPage(w, r, d)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	s.renderPage(w, r, d)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := d.RenderShell(&buf); err != nil {
		s.respondAppError(w, r, err)
		return
	}
	respondHTML(w, buf.Bytes())
}

func (s *Server) handlePageState(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	respondJSON(w, d.State())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	_, span := telemetry.StartSpan(r.Context(), "dashboard.refresh")
	span.SetAttributes(telemetry.AttrPageID.String(d.ID()), telemetry.AttrSignal.String(bus.Refresh.String()))
	d.Refresh()
	span.End()

	if s.remote != nil {
		if err := s.remote.Announce(bus.Refresh); err != nil {
			s.eventLog.Warn(logging.CategoryBus, "bus.announce_failed", err.Error(), map[string]any{"page_id": d.ID()})
		}
	}
	respondJSON(w, d.State())
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	mode := page.ViewMode(strings.ToLower(chi.URLParam(r, "mode")))
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.AttrView.String(string(mode)))
	if err := d.SetView(mode); err != nil {
		s.respondAppError(w, r, err)
		return
	}
	respondJSON(w, d.State())
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	d.Resize()
	respondJSON(w, d.State())
}

func (s *Server) handleWidgets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{"widgets": s.registry.Describe()})
}

// handleScene builds the globe. ?seed fixes the layout of accent particles;
// ?count overrides the particle count up to the configured cap.
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err := parseCount("count", q.Get("count"), s.cfg.ParticleCount)
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	cfg := scene.Config{ParticleCount: count, Seed: s.cfg.SceneSeed}
	if raw := strings.TrimSpace(q.Get("seed")); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.respondAppError(w, r, apperrors.Newf(apperrors.ErrCodeInvalidInput, "seed %q is not an unsigned integer", raw))
			return
		}
		cfg.Seed = seed
	}
	if cfg.ParticleCount > s.cfg.MaxParticleCount {
		s.respondAppError(w, r, apperrors.Newf(apperrors.ErrCodeInvalidInput,
			"count %d exceeds the limit of %d", cfg.ParticleCount, s.cfg.MaxParticleCount))
		return
	}

	started := time.Now()
	sc := scene.New(cfg)
	s.metrics.ObserveRender("scene", started)
	respondJSON(w, sc)
}

func (s *Server) handleManifesto(w http.ResponseWriter, r *http.Request) {
	body, err := widget.FullHTML()
	if err != nil {
		s.respondAppError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := page.RenderArticle(&buf, ManifestoTitle, body); err != nil {
		s.respondAppError(w, r, apperrors.Wrap(err, apperrors.ErrCodePageRender, "render manifesto"))
		return
	}
	respondHTML(w, buf.Bytes())
}

// handleMetrics serves prometheus metrics. Unless metrics are public, only
// loopback callers may scrape.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		respondError(w, http.StatusNotFound, stdliberrors.New("metrics disabled"))
		return
	}
	if !s.cfg.PublicMetrics && !isLoopbackRequest(r) {
		respondError(w, http.StatusForbidden, stdliberrors.New("forbidden"))
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": s.cfg.Version,
		"pages":   s.pages.Len(),
	}
	if s.assets != nil {
		body["assets"] = map[string]any{
			"version": s.assets.Version(),
			"recent":  s.assets.Recent(healthRecentAssets),
		}
	}
	respondJSON(w, body)
}

// handlePageEvents streams events for one page, plus page-less broadcasts
// such as asset changes.
func (s *Server) handlePageEvents(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	if !s.isWebSocketOriginAllowed(r) {
		respondError(w, http.StatusForbidden, stdliberrors.New("origin not allowed"))
		return
	}
	if !s.eventSlots.Acquire() {
		respondError(w, http.StatusServiceUnavailable, stdliberrors.New("too many event streams"))
		return
	}
	defer s.eventSlots.Release()
	// Origin is checked above against the configured allow-list.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Printf("page events websocket accept failed: %v", err)
		return
	}
	conn.SetReadLimit(maxWSReadBytes)

	c := s.hub.register(conn, pageFilter(d.ID()))
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	startWSPing(ctx, conn)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer cancel()
		s.readClient(ctx, c)
	}()

	if err := c.writeLoop(ctx); err != nil && !stdliberrors.Is(err, context.Canceled) {
		s.logger.Printf("page events websocket write error: %v", err)
	}
	cancel()
	<-readDone
	s.hub.removeClient(c)
	c.close(websocket.StatusNormalClosure, "")
}

func (s *Server) readClient(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "ping":
			s.hub.sendTo(c, telemetry.Event{Type: eventPong, Timestamp: time.Now()})
		}
	}
}
