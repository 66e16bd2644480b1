package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadAndMerge loads a YAML file and merges it into the config.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

// mergeConfigs merges override into base. Zero values in override are
// treated as unset except for booleans, which count only when the key is
// present in raw.
func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	if override.Server.Bind != "" {
		base.Server.Bind = override.Server.Bind
	}
	if override.Server.AssetsDir != "" {
		base.Server.AssetsDir = override.Server.AssetsDir
	}
	if boolFieldSet(raw, "server", "watch_assets") {
		base.Server.WatchAssets = override.Server.WatchAssets
	}
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = append([]string{}, override.Server.AllowedOrigins...)
	}
	if override.Server.MaxPages != 0 {
		base.Server.MaxPages = override.Server.MaxPages
	}
	if boolFieldSet(raw, "server", "public_metrics") {
		base.Server.PublicMetrics = override.Server.PublicMetrics
	}

	if override.Dashboard.RefreshIndicator != 0 {
		base.Dashboard.RefreshIndicator = override.Dashboard.RefreshIndicator
	}
	if fieldSet(raw, "dashboard", "resize_throttle") {
		base.Dashboard.ResizeThrottle = override.Dashboard.ResizeThrottle
	}
	if override.Dashboard.DefaultView != "" {
		base.Dashboard.DefaultView = override.Dashboard.DefaultView
	}

	if override.Scene.ParticleCount != 0 {
		base.Scene.ParticleCount = override.Scene.ParticleCount
	}
	if override.Scene.Seed != 0 {
		base.Scene.Seed = override.Scene.Seed
	}

	if override.Bus.NATSURL != "" {
		base.Bus.NATSURL = override.Bus.NATSURL
	}
	if override.Bus.SubjectPrefix != "" {
		base.Bus.SubjectPrefix = override.Bus.SubjectPrefix
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Dir != "" {
		base.Logging.Dir = override.Logging.Dir
	}

	if boolFieldSet(raw, "tracing", "enabled") {
		base.Tracing.Enabled = override.Tracing.Enabled
	}
}

func fieldSet(raw map[string]any, path ...string) bool {
	if raw == nil || len(path) == 0 {
		return false
	}
	current := raw
	for i, key := range path {
		val, ok := current[key]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		next, ok := val.(map[string]any)
		if !ok {
			return false
		}
		current = next
	}
	return false
}

func boolFieldSet(raw map[string]any, path ...string) bool {
	if !fieldSet(raw, path...) {
		return false
	}
	current := raw
	for _, key := range path[:len(path)-1] {
		current = current[key].(map[string]any)
	}
	_, ok := current[path[len(path)-1]].(bool)
	return ok
}

func expandHomeDir(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
