package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/earthcontrol/pkg/dashboard"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
	"github.com/odvcencio/earthcontrol/pkg/widget"
)

// runRenderCommand writes a freshly mounted dashboard page, as served by
// GET /, to stdout or --out.
func runRenderCommand(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file")
	out := fs.String("out", "", "write the page to this file instead of stdout")
	view := fs.String("view", "", "initial view: grid or list (default from config)")
	title := fs.String("title", "", "page title")
	staticPrefix := fs.String("static-prefix", page.DefaultStaticPrefix, "URL prefix for stylesheets and scripts")
	sceneURL := fs.String("scene-url", "", "URL the globe fetches its scene from")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	mode := page.ViewMode(strings.ToLower(strings.TrimSpace(cfg.Dashboard.DefaultView)))
	if strings.TrimSpace(*view) != "" {
		mode = page.ViewMode(strings.ToLower(strings.TrimSpace(*view)))
		if !mode.Valid() {
			return apperrors.Newf(apperrors.ErrCodeInvalidInput, "view %q must be grid or list", *view)
		}
	}

	logger := logging.NewLogger(stderr)
	logger.SetMinLevel(logging.LevelWarn)
	d := dashboard.New(dashboard.Options{
		PageID:           ulid.Make().String(),
		Title:            *title,
		RefreshIndicator: cfg.Dashboard.RefreshIndicator,
		ResizeThrottle:   cfg.Dashboard.ResizeThrottle,
		DefaultView:      mode,
		Registry:         widget.DefaultRegistry(),
		Logger:           logger,
	})
	defer d.Close()
	d.Mount()

	meta := page.Meta{
		Title:        *title,
		SceneURL:     *sceneURL,
		StaticPrefix: *staticPrefix,
	}
	path := strings.TrimSpace(*out)
	if path == "" {
		return d.Render(stdout, meta)
	}
	var buf bytes.Buffer
	if err := d.Render(&buf, meta); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
