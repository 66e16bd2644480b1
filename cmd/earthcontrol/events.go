package main

import (
	"encoding/json"
	"flag"
	"path/filepath"
	"strings"

	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/terminal"
)

const messageWidth = 48

func runEventsCommand(args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file")
	dir := fs.String("dir", "", "log directory (default logging.dir)")
	count := fs.Int("count", 20, "number of events to show")
	errorsOnly := fs.Bool("errors", false, "read the error log")
	pageID := fs.String("page", "", "only events for this page")
	asJSON := fs.Bool("json", false, "emit events as JSON lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 0 {
		return apperrors.Newf(apperrors.ErrCodeInvalidInput, "count %d must not be negative", *count)
	}

	logDir := strings.TrimSpace(*dir)
	if logDir == "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		logDir = strings.TrimSpace(cfg.Logging.Dir)
	}
	if logDir == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "no log directory").
			WithRemediation("set logging.dir, EARTHCONTROL_LOG_DIR or --dir")
	}

	name := logging.EventsFile
	if *errorsOnly {
		name = logging.ErrorsFile
	}
	path := filepath.Join(logDir, name)
	events, err := logging.ReadRecentEvents(path, 0)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "read event log").WithContext("path", path)
	}
	if *pageID != "" {
		kept := events[:0]
		for _, ev := range events {
			if ev.PageID == *pageID {
				kept = append(kept, ev)
			}
		}
		events = kept
	}
	if *count > 0 && len(events) > *count {
		events = events[len(events)-*count:]
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		for _, ev := range events {
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
		return nil
	}

	out := terminal.NewWithOutput(stdout)
	out.Header("Recent events: " + path)
	if len(events) == 0 {
		out.Dim("no events")
		return nil
	}
	rows := make([][]string, len(events))
	for i, ev := range events {
		page := ev.PageID
		if page == "" {
			page = "-"
		}
		rows[i] = []string{
			ev.Timestamp.Local().Format("15:04:05"),
			string(ev.Level),
			string(ev.Category),
			ev.EventType,
			page,
			terminal.Truncate(ev.Message, messageWidth),
		}
	}
	out.Table([]string{"TIME", "LEVEL", "CATEGORY", "TYPE", "PAGE", "MESSAGE"}, rows)
	out.Dim("%d events", len(events))
	return nil
}
