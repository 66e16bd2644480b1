package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/logging"
)

// Default configuration values exported for documentation and validation
const (
	DefaultBind             = "127.0.0.1:4590"
	DefaultMaxPages         = 512
	DefaultRefreshIndicator = 2 * time.Second
	DefaultResizeThrottle   = 100 * time.Millisecond
	DefaultView             = "grid"
	DefaultParticleCount    = 2000
	DefaultSubjectPrefix    = "earthcontrol.dashboard"
	DefaultLogLevel         = "info"

	// MaxParticleCount bounds /api/scene responses.
	MaxParticleCount = 20000
)

// Config represents the complete earthcontrol configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Scene     SceneConfig     `yaml:"scene"`
	Bus       BusConfig       `yaml:"bus"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Bind           string   `yaml:"bind"`
	AssetsDir      string   `yaml:"assets_dir"`   // Serve /static from disk instead of the embedded FS
	WatchAssets    bool     `yaml:"watch_assets"` // Push reload events when AssetsDir changes
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxPages       int      `yaml:"max_pages"`
	PublicMetrics  bool     `yaml:"public_metrics"`
}

// DashboardConfig controls shell and layout behaviour.
type DashboardConfig struct {
	RefreshIndicator time.Duration `yaml:"refresh_indicator"`
	ResizeThrottle   time.Duration `yaml:"resize_throttle"`
	DefaultView      string        `yaml:"default_view"`
}

// SceneConfig controls the particle globe.
type SceneConfig struct {
	ParticleCount int    `yaml:"particle_count"`
	Seed          uint64 `yaml:"seed"` // 0 picks a fresh seed per request
}

// BusConfig controls the optional NATS bridge.
type BusConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // Empty logs to stdout
}

// TracingConfig controls OpenTelemetry span export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Bind:           DefaultBind,
			AllowedOrigins: []string{"http://localhost", "http://127.0.0.1"},
			MaxPages:       DefaultMaxPages,
			PublicMetrics:  true,
		},
		Dashboard: DashboardConfig{
			RefreshIndicator: DefaultRefreshIndicator,
			ResizeThrottle:   DefaultResizeThrottle,
			DefaultView:      DefaultView,
		},
		Scene: SceneConfig{
			ParticleCount: DefaultParticleCount,
		},
		Bus: BusConfig{
			SubjectPrefix: DefaultSubjectPrefix,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load loads configuration from default locations with proper precedence:
// defaults, ~/.earthcontrol/config.yaml, ./.earthcontrol/config.yaml, then
// the file named by EARTHCONTROL_CONFIG, then environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".earthcontrol", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigLoad, "loading user config").
				WithContext("path", userConfigPath)
		}
	}

	projectConfigPath := filepath.Join(".", ".earthcontrol", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigLoad, "loading project config").
			WithContext("path", projectConfigPath)
	}

	if explicit := strings.TrimSpace(os.Getenv("EARTHCONTROL_CONFIG")); explicit != "" {
		explicit = expandHomeDir(explicit)
		if err := loadAndMerge(cfg, explicit); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigLoad, "loading EARTHCONTROL_CONFIG").
				WithContext("path", explicit)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadAndMerge(cfg, path); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigLoad, "loading config").
			WithContext("path", path)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("EARTHCONTROL_BIND")); v != "" {
		cfg.Server.Bind = v
	}
	if v := strings.TrimSpace(os.Getenv("EARTHCONTROL_ASSETS_DIR")); v != "" {
		cfg.Server.AssetsDir = v
	}
	if v := strings.TrimSpace(os.Getenv("EARTHCONTROL_ALLOWED_ORIGINS")); v != "" {
		cfg.Server.AllowedOrigins = splitCommaList(v)
	}
	if v := strings.TrimSpace(os.Getenv("EARTHCONTROL_NATS_URL")); v != "" {
		cfg.Bus.NATSURL = v
	}
	if v := strings.TrimSpace(os.Getenv("EARTHCONTROL_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("EARTHCONTROL_LOG_DIR")); v != "" {
		cfg.Logging.Dir = v
	}
	if val, ok := envBool("EARTHCONTROL_TRACING"); ok {
		cfg.Tracing.Enabled = val
	}
	if val, ok := envBool("EARTHCONTROL_WATCH_ASSETS"); ok {
		cfg.Server.WatchAssets = val
	}
	if v := strings.TrimSpace(os.Getenv("EARTHCONTROL_SCENE_SEED")); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Scene.Seed = seed
		}
	}
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envBool(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return val, true
}

// IsLoopbackBind reports whether the server bind address is loopback-only.
func (c *Config) IsLoopbackBind() bool {
	host, _, err := net.SplitHostPort(strings.TrimSpace(c.Server.Bind))
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	invalid := func(msg string, args ...any) *apperrors.Error {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid, msg, args...)
	}

	if _, _, err := net.SplitHostPort(strings.TrimSpace(c.Server.Bind)); err != nil {
		return invalid("server.bind %q is not host:port", c.Server.Bind).
			WithRemediation("set server.bind to an address such as 127.0.0.1:4590")
	}
	if c.Server.MaxPages <= 0 {
		return invalid("server.max_pages must be positive, got %d", c.Server.MaxPages)
	}
	if c.Server.WatchAssets && strings.TrimSpace(c.Server.AssetsDir) == "" {
		return invalid("server.watch_assets requires server.assets_dir")
	}
	if c.Dashboard.RefreshIndicator <= 0 {
		return invalid("dashboard.refresh_indicator must be positive")
	}
	if c.Dashboard.ResizeThrottle < 0 {
		return invalid("dashboard.resize_throttle must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Dashboard.DefaultView)) {
	case "grid", "list":
	default:
		return invalid("dashboard.default_view must be grid or list, got %q", c.Dashboard.DefaultView)
	}
	if c.Scene.ParticleCount <= 0 || c.Scene.ParticleCount > MaxParticleCount {
		return invalid("scene.particle_count must be in 1..%d, got %d", MaxParticleCount, c.Scene.ParticleCount)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "logging.level")
	}
	return nil
}

// ResolveAssetsDir returns the absolute assets directory, or "" when the
// embedded assets should be served.
func (c *Config) ResolveAssetsDir() string {
	dir := expandHomeDir(c.Server.AssetsDir)
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
