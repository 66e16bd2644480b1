// Package shell owns the dashboard container: the single grid, the refresh
// control and the grid/list view toggle.
package shell

import (
	_ "embed"
	"sync"
	"time"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
)

//go:embed shell.css
var shellCSS string

const (
	// StyleKey identifies the shell's style block in the document head.
	StyleKey = "dashboard-shell"

	// DefaultTitle is the grid header text.
	DefaultTitle = "EARTH SYSTEM MONITORING"

	// DefaultRefreshIndicator is how long the refresh control stays lit.
	DefaultRefreshIndicator = 2 * time.Second
)

// Options configures a Shell.
type Options struct {
	Title            string
	RefreshIndicator time.Duration
	DefaultView      page.ViewMode
	Logger           *logging.Logger

	// Locker guards the document from the refresh timer goroutine. It must be
	// the lock the caller holds when invoking Shell methods.
	Locker sync.Locker

	// OnRefreshCleared runs, with Locker held, when the indicator turns off.
	OnRefreshCleared func()
}

// Shell is the dashboard container controller. Methods other than the timer
// callback expect the caller to hold Options.Locker.
type Shell struct {
	doc  *page.Document
	bus  *bus.Bus
	opts Options
	view page.ViewMode

	timer      *time.Timer
	generation uint64
	stopped    bool
}

// New creates a shell for doc that publishes on b.
func New(doc *page.Document, b *bus.Bus, opts Options) *Shell {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.RefreshIndicator <= 0 {
		opts.RefreshIndicator = DefaultRefreshIndicator
	}
	if !opts.DefaultView.Valid() {
		opts.DefaultView = page.ViewGrid
	}
	if opts.Locker == nil {
		opts.Locker = &sync.Mutex{}
	}
	return &Shell{doc: doc, bus: b, opts: opts, view: opts.DefaultView}
}

// Mount creates the grid container and publishes Initialized. When the
// container already exists it does nothing and returns false.
func (s *Shell) Mount() bool {
	if !s.doc.CreateGrid(s.opts.Title) {
		return false
	}
	s.doc.InjectStyle(StyleKey, shellCSS)
	s.doc.Grid().SetView(s.view)
	s.opts.Logger.Info(logging.CategoryShell, "shell.mounted", "dashboard container created", map[string]any{
		"view": string(s.view),
	})
	s.bus.Publish(bus.Initialized)
	return true
}

// Mounted reports whether the grid container exists.
func (s *Shell) Mounted() bool {
	return s.doc.HasGrid()
}

// Refresh lights the refresh indicator and publishes Refresh. Each call
// restarts the indicator timer, so the indicator clears one
// RefreshIndicator after the most recent call. After Stop it only publishes.
func (s *Shell) Refresh() {
	if grid := s.doc.Grid(); grid != nil && !s.stopped {
		grid.SetRefreshing(true)
		s.armIndicator()
	}
	s.bus.Publish(bus.Refresh)
}

func (s *Shell) armIndicator() {
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.timer = time.AfterFunc(s.opts.RefreshIndicator, func() {
		s.opts.Locker.Lock()
		defer s.opts.Locker.Unlock()
		// A timer that fired while a newer Refresh held the lock is stale.
		if gen != s.generation {
			return
		}
		s.timer = nil
		if grid := s.doc.Grid(); grid != nil {
			grid.SetRefreshing(false)
		}
		if s.opts.OnRefreshCleared != nil {
			s.opts.OnRefreshCleared()
		}
	})
}

// Refreshing reports whether the refresh indicator is lit.
func (s *Shell) Refreshing() bool {
	grid := s.doc.Grid()
	return grid != nil && grid.Refreshing()
}

// SetView switches between grid and list view. Before Mount the choice is
// remembered and applied when the container is created.
func (s *Shell) SetView(mode page.ViewMode) error {
	if !mode.Valid() {
		return apperrors.Newf(apperrors.ErrCodeInvalidInput, "unknown view mode %q", string(mode)).
			WithUserMessage("View must be grid or list")
	}
	s.view = mode
	if grid := s.doc.Grid(); grid != nil {
		grid.SetView(mode)
	}
	return nil
}

// View returns the active view mode.
func (s *Shell) View() page.ViewMode {
	return s.view
}

// Stop cancels a pending indicator timer. Later refreshes no longer light
// the indicator.
func (s *Shell) Stop() {
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}
