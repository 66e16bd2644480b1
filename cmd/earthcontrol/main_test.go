package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/filewatch"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/server"
)

// captureOutput redirects the command writers and isolates the config
// hierarchy from the developer's machine.
func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"EARTHCONTROL_CONFIG", "EARTHCONTROL_BIND", "EARTHCONTROL_ASSETS_DIR",
		"EARTHCONTROL_NATS_URL", "EARTHCONTROL_LOG_LEVEL", "EARTHCONTROL_LOG_DIR",
		"EARTHCONTROL_TRACING", "EARTHCONTROL_WATCH_ASSETS", "EARTHCONTROL_SCENE_SEED",
		"EARTHCONTROL_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	var out, errOut bytes.Buffer
	prevOut, prevErr := stdout, stderr
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { stdout, stderr = prevOut, prevErr })
	return &out, &errOut
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDispatchSubcommandUnknownCommandHandled(t *testing.T) {
	_, errOut := captureOutput(t)

	code := dispatchSubcommand([]string{"launch"})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unknown command: launch")

	errOut.Reset()
	code = dispatchSubcommand([]string{"--launch"})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unknown flag: --launch")
}

func TestDispatchSubcommandHelpAndVersion(t *testing.T) {
	out, _ := captureOutput(t)

	require.Equal(t, 0, dispatchSubcommand([]string{"--help"}))
	assert.Contains(t, out.String(), "EARTHCONTROL_NATS_URL")
	assert.Contains(t, out.String(), "manifesto")

	out.Reset()
	require.Equal(t, 0, dispatchSubcommand([]string{"version"}))
	assert.True(t, strings.HasPrefix(out.String(), "earthcontrol "+version))
	assert.Contains(t, out.String(), "Go version:")
}

func TestRunCommandUsesExitCodes(t *testing.T) {
	_, errOut := captureOutput(t)

	assert.Equal(t, 0, runCommand(func([]string) error { return flag.ErrHelp }, nil))
	assert.Empty(t, errOut.String())

	assert.Equal(t, 3, runCommand(func([]string) error {
		return withExitCode(errors.New("boom"), 3)
	}, nil))
	assert.Contains(t, errOut.String(), "Error: boom")

	assert.Equal(t, exitUsage, runCommand(func([]string) error {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "bad view")
	}, nil))
	assert.Equal(t, exitFailure, runCommand(func([]string) error {
		return apperrors.New(apperrors.ErrCodeBusConnect, "nats down")
	}, nil))
}

func TestInvalidConfigIsUsageError(t *testing.T) {
	captureOutput(t)
	path := writeConfig(t, "dashboard:\n  default_view: mosaic\n")

	code := dispatchSubcommand([]string{"scene", "--config", path})
	assert.Equal(t, exitUsage, code)
}

func TestWidgetsCommandTable(t *testing.T) {
	out, _ := captureOutput(t)

	require.Equal(t, 0, dispatchSubcommand([]string{"widgets"}))
	got := out.String()
	assert.NotContains(t, got, "\x1b[", "buffer output must be plain")
	for _, want := range []string{
		"project-manifesto", "carbon-market", "energy-mix",
		"prepend", "append", "11 widgets",
	} {
		assert.Contains(t, got, want)
	}
	assert.Less(t, strings.Index(got, "project-manifesto"), strings.Index(got, "carbon-market"))
}

func TestWidgetsCommandJSON(t *testing.T) {
	out, _ := captureOutput(t)

	require.Equal(t, 0, dispatchSubcommand([]string{"widgets", "--json"}))
	var payload struct {
		Widgets []struct {
			ID       string `json:"id"`
			Position string `json:"position"`
		} `json:"widgets"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	require.Len(t, payload.Widgets, 11)
	assert.Equal(t, "project-manifesto", payload.Widgets[0].ID)
	assert.Equal(t, "prepend", payload.Widgets[0].Position)
}

func TestManifestoCommandModes(t *testing.T) {
	out, _ := captureOutput(t)

	require.Equal(t, 0, dispatchSubcommand([]string{"manifesto"}))
	assert.Contains(t, out.String(), "ONE PLANET")
	assert.NotContains(t, out.String(), "\x1b[")

	out.Reset()
	require.Equal(t, 0, dispatchSubcommand([]string{"manifesto", "--raw"}))
	assert.Contains(t, out.String(), "## ONE PLANET, ONE SPECIES, ONE FUTURE")

	out.Reset()
	require.Equal(t, 0, dispatchSubcommand([]string{"manifesto", "--html"}))
	assert.Contains(t, out.String(), "<h2")
	assert.Contains(t, out.String(), "BEYOND BORDERS")
}

func TestSceneCommandDeterministicSeed(t *testing.T) {
	out, _ := captureOutput(t)

	require.Equal(t, 0, dispatchSubcommand([]string{"scene", "--seed", "42", "--count", "100", "--compact"}))
	first := out.String()
	out.Reset()
	require.Equal(t, 0, dispatchSubcommand([]string{"scene", "--seed", "42", "--count", "100", "--compact"}))
	assert.Equal(t, first, out.String())

	var sc struct {
		Seed      uint64 `json:"seed"`
		Particles struct {
			Count     int       `json:"count"`
			Positions []float32 `json:"positions"`
		} `json:"particles"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &sc))
	assert.EqualValues(t, 42, sc.Seed)
	assert.Equal(t, 100, sc.Particles.Count)
	assert.Len(t, sc.Particles.Positions, 300)

	out.Reset()
	require.Equal(t, 0, dispatchSubcommand([]string{"scene", "--seed", "43", "--count", "100", "--compact"}))
	assert.NotEqual(t, first, out.String())
}

func TestSceneCommandRejectsOversizedCount(t *testing.T) {
	_, errOut := captureOutput(t)

	assert.Equal(t, exitUsage, dispatchSubcommand([]string{"scene", "--count", "50000"}))
	assert.Contains(t, errOut.String(), "count 50000")
}

func TestRenderCommandWritesMountedPage(t *testing.T) {
	captureOutput(t)
	path := filepath.Join(t.TempDir(), "index.html")

	require.Equal(t, 0, dispatchSubcommand([]string{"render", "--out", path, "--view", "list", "--title", "Earth Control"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("#project-manifesto").Length())
	assert.Equal(t, 1, doc.Find(".dashboard-grid.list-view").Length())
	assert.Equal(t, 11, doc.Find(".dashboard-grid > .widget").Length())
	assert.Equal(t, "project-manifesto", doc.Find(".dashboard-grid > .widget").First().AttrOr("id", ""))
	assert.Len(t, doc.Find("body").AttrOr("data-page-id", ""), 26)
}

func TestRenderCommandToStdout(t *testing.T) {
	out, _ := captureOutput(t)

	require.Equal(t, 0, dispatchSubcommand([]string{"render", "--static-prefix", "/assets"}))
	doc, err := goquery.NewDocumentFromReader(out)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find(".dashboard-grid.list-view").Length())
	assert.Equal(t, 1, doc.Find(`link[href^="/assets/"]`).Length())
}

func TestRenderCommandRejectsUnknownView(t *testing.T) {
	_, errOut := captureOutput(t)

	assert.Equal(t, exitUsage, dispatchSubcommand([]string{"render", "--view", "mosaic"}))
	assert.Contains(t, errOut.String(), "mosaic")
}

func TestServeFlagsLayerOverConfig(t *testing.T) {
	captureOutput(t)
	cfg, err := loadConfig(writeConfig(t, "server:\n  bind: 127.0.0.1:5000\n"))
	require.NoError(t, err)

	opts, err := parseServeFlags([]string{
		"--bind", "127.0.0.1:6000",
		"--allow-origin", "https://ops.example, https://noc.example",
		"--public-metrics=false",
	})
	require.NoError(t, err)
	require.NoError(t, opts.apply(cfg))

	assert.Equal(t, "127.0.0.1:6000", cfg.Server.Bind)
	assert.False(t, cfg.Server.PublicMetrics)
	assert.Contains(t, cfg.Server.AllowedOrigins, "https://ops.example")
	assert.Contains(t, cfg.Server.AllowedOrigins, "https://noc.example")

	sc := serverConfig(cfg)
	assert.Equal(t, "127.0.0.1:6000", sc.BindAddress)
	assert.Equal(t, version, sc.Version)
}

func TestServeFlagsUnsetKeepConfig(t *testing.T) {
	captureOutput(t)
	cfg, err := loadConfig(writeConfig(t, "server:\n  public_metrics: false\n"))
	require.NoError(t, err)

	opts, err := parseServeFlags(nil)
	require.NoError(t, err)
	require.NoError(t, opts.apply(cfg))
	assert.False(t, cfg.Server.PublicMetrics)
}

func TestServeFlagsWatchRequiresAssets(t *testing.T) {
	captureOutput(t)
	cfg, err := loadConfig("")
	require.NoError(t, err)

	opts, err := parseServeFlags([]string{"--watch"})
	require.NoError(t, err)
	err = opts.apply(cfg)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid))
}

func TestServeRejectsPositionalArgs(t *testing.T) {
	captureOutput(t)
	_, err := parseServeFlags([]string{"now"})
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCodeForError(err))
}

type fakeRemote struct {
	mu        sync.Mutex
	listening []bus.Signal
	announced []bus.Signal
	callbacks []func(bus.Signal)
	closed    bool
}

func (f *fakeRemote) Announce(sig bus.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announced = append(f.announced, sig)
	return nil
}

func (f *fakeRemote) Listen(sig bus.Signal, fn func(bus.Signal)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listening = append(f.listening, sig)
	f.callbacks = append(f.callbacks, fn)
	return nil
}

func (f *fakeRemote) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func stubServe(t *testing.T, dial func(bus.RemoteConfig) (remoteBus, error), start func(context.Context, dashboardServer) error) {
	t.Helper()
	prevDial, prevStart := serveDialRemoteFn, serveStartFn
	serveDialRemoteFn, serveStartFn = dial, start
	t.Cleanup(func() { serveDialRemoteFn, serveStartFn = prevDial, prevStart })
}

func TestServeWiresRemoteRefresh(t *testing.T) {
	out, _ := captureOutput(t)
	remote := &fakeRemote{}
	var dialed bus.RemoteConfig
	started := false
	stubServe(t,
		func(cfg bus.RemoteConfig) (remoteBus, error) {
			dialed = cfg
			return remote, nil
		},
		func(ctx context.Context, s dashboardServer) error {
			started = true
			if assert.NotEmpty(t, remote.callbacks) {
				remote.callbacks[0](bus.Refresh)
			}
			return nil
		},
	)

	path := writeConfig(t, "bus:\n  nats_url: nats://127.0.0.1:4222\n  subject_prefix: ops.dash\n")
	require.Equal(t, 0, dispatchSubcommand([]string{"serve", "--config", path}))

	assert.True(t, started)
	assert.Equal(t, "nats://127.0.0.1:4222", dialed.URL)
	assert.Equal(t, "ops.dash", dialed.SubjectPrefix)
	assert.Equal(t, []bus.Signal{bus.Refresh}, remote.listening)
	assert.True(t, remote.closed, "remote must be closed once the server stops")
	assert.Contains(t, out.String(), "bus.remote_connected")
}

func TestServeRemoteDialFailure(t *testing.T) {
	_, errOut := captureOutput(t)
	stubServe(t,
		func(bus.RemoteConfig) (remoteBus, error) { return nil, errors.New("no servers available") },
		func(context.Context, dashboardServer) error {
			t.Error("server must not start without the remote bus")
			return nil
		},
	)

	code := dispatchSubcommand([]string{"serve", "--nats", "nats://127.0.0.1:1"})
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut.String(), "connect to NATS")
}

func TestServeWatchesAssets(t *testing.T) {
	captureOutput(t)
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, "base.css"), []byte("body{}"), 0o644))
	stubServe(t,
		func(bus.RemoteConfig) (remoteBus, error) {
			t.Error("no NATS URL configured")
			return nil, nil
		},
		func(_ context.Context, s dashboardServer) error {
			srv, ok := s.(*server.Server)
			if !assert.True(t, ok) {
				return nil
			}
			if err := os.WriteFile(filepath.Join(assets, "base.css"), []byte("body{color:red}"), 0o644); err != nil {
				t.Error(err)
				return nil
			}
			assert.Eventually(t, func() bool {
				rec := httptest.NewRecorder()
				srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
				var health struct {
					Assets struct {
						Version uint64                 `json:"version"`
						Recent  []filewatch.FileChange `json:"recent"`
					} `json:"assets"`
				}
				if json.Unmarshal(rec.Body.Bytes(), &health) != nil || health.Assets.Version == 0 {
					return false
				}
				latest := health.Assets.Recent[0]
				return latest.Path == "base.css" && latest.Kind == filewatch.KindStylesheet
			}, 3*time.Second, 20*time.Millisecond)
			return nil
		},
	)

	code := dispatchSubcommand([]string{"serve", "--assets", assets, "--watch", "--log-level", "warn"})
	assert.Equal(t, 0, code)
}

func TestServePropagatesStartError(t *testing.T) {
	_, errOut := captureOutput(t)
	stubServe(t, nil, func(context.Context, dashboardServer) error {
		return errors.New("address already in use")
	})

	assert.Equal(t, exitFailure, dispatchSubcommand([]string{"serve", "--bind", "127.0.0.1:4590"}))
	assert.Contains(t, errOut.String(), "address already in use")
}

func TestStringListValue(t *testing.T) {
	var target []string
	v := &stringListValue{target: &target}
	require.NoError(t, v.Set("a, b,,c"))
	require.NoError(t, v.Set("d"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, target)
	assert.Equal(t, "a,b,c,d", v.String())
	assert.Error(t, (&stringListValue{}).Set("x"))
}

func writeEventLog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	logger, err := logging.NewFileLogger(dir)
	require.NoError(t, err)
	logger.Info(logging.CategoryShell, "shell.mounted", "grid created", nil)
	logger.WithPage("page-a").Info(logging.CategoryWidget, "widget.mounted", "project-manifesto", nil)
	logger.WithPage("page-b").Info(logging.CategoryLayout, "layout.applied", "full width", nil)
	logger.WithPage("page-a").Error(logging.CategoryWidget, "widget.render_failed", "boom", nil)
	require.NoError(t, logger.Close())
	return dir
}

func TestEventsCommandJSON(t *testing.T) {
	out, _ := captureOutput(t)
	dir := writeEventLog(t)

	require.Equal(t, 0, dispatchSubcommand([]string{"events", "--dir", dir, "--count", "2", "--json"}))
	var types []string
	dec := json.NewDecoder(strings.NewReader(out.String()))
	for dec.More() {
		var ev logging.Event
		require.NoError(t, dec.Decode(&ev))
		types = append(types, ev.EventType)
	}
	assert.Equal(t, []string{"layout.applied", "widget.render_failed"}, types)
}

func TestEventsCommandFilters(t *testing.T) {
	out, _ := captureOutput(t)
	dir := writeEventLog(t)

	require.Equal(t, 0, dispatchSubcommand([]string{"events", "--dir", dir, "--page", "page-a"}))
	got := out.String()
	assert.Contains(t, got, "widget.mounted")
	assert.Contains(t, got, "widget.render_failed")
	assert.NotContains(t, got, "layout.applied")
	assert.Contains(t, got, "2 events")

	out.Reset()
	require.Equal(t, 0, dispatchSubcommand([]string{"events", "--dir", dir, "--errors"}))
	assert.Contains(t, out.String(), "widget.render_failed")
	assert.NotContains(t, out.String(), "widget.mounted")
}

func TestEventsCommandNeedsLogDir(t *testing.T) {
	_, errOut := captureOutput(t)
	assert.Equal(t, exitUsage, dispatchSubcommand([]string{"events"}))
	assert.Contains(t, errOut.String(), "no log directory")

	assert.Equal(t, exitUsage, dispatchSubcommand([]string{"events", "--dir", t.TempDir()}))
	assert.Contains(t, errOut.String(), "read event log")
}
