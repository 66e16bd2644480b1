package filewatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/odvcencio/earthcontrol/pkg/logging"
)

func TestFeed_StampsVersionAndKind(t *testing.T) {
	feed := NewFeed(10)
	var got []FileChange
	feed.OnChange(func(change FileChange) { got = append(got, change) })

	first := feed.Notify(FileChange{Path: "themes/base.css", Type: ChangeModified})
	second := feed.Notify(FileChange{Path: "earth.js", Type: ChangeModified})

	if first.Version != 1 || second.Version != 2 || feed.Version() != 2 {
		t.Fatalf("versions = %d, %d (feed %d)", first.Version, second.Version, feed.Version())
	}
	if first.Kind != KindStylesheet || second.Kind != KindScript {
		t.Fatalf("kinds = %q, %q", first.Kind, second.Kind)
	}
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Fatalf("handler saw %+v", got)
	}
}

func TestFeed_HandlersRunInOrder(t *testing.T) {
	feed := NewFeed(0)
	var order []string
	feed.OnChange(func(FileChange) { order = append(order, "a") })
	feed.OnChange(nil)
	feed.OnChange(func(FileChange) { order = append(order, "b") })

	feed.Notify(FileChange{Path: "index.html"})
	if strings.Join(order, "") != "ab" {
		t.Fatalf("order = %v", order)
	}
}

func TestFeed_RecentIsBoundedNewestFirst(t *testing.T) {
	feed := NewFeed(2)
	if feed.Version() != 0 || len(feed.Recent(0)) != 0 {
		t.Fatal("new feed should be empty")
	}
	feed.Notify(FileChange{Path: "a.css", Type: ChangeModified})
	feed.Notify(FileChange{Path: "b.css", Type: ChangeModified})
	feed.Notify(FileChange{Path: "c.css", Type: ChangeModified})

	recent := feed.Recent(5)
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent changes, got %d", len(recent))
	}
	if recent[0].Path != "c.css" || recent[1].Path != "b.css" || recent[0].Version != 3 {
		t.Fatalf("unexpected recent order: %+v", recent)
	}
	if one := feed.Recent(1); len(one) != 1 || one[0].Path != "c.css" {
		t.Fatalf("Recent(1) = %+v", one)
	}
}

func TestKindOf(t *testing.T) {
	cases := map[string]AssetKind{
		"base.css":        KindStylesheet,
		"themes/DARK.CSS": KindStylesheet,
		"earth.js":        KindScript,
		"lib/mod.mjs":     KindScript,
		"logo.svg":        KindOther,
		"README":          KindOther,
	}
	for p, want := range cases {
		if got := KindOf(p); got != want {
			t.Errorf("KindOf(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestDirWatcher_ReportsDebouncedWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "base.css")
	if err := os.WriteFile(file, []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	target := NewFeed(10)
	changes := make(chan FileChange, 8)
	target.OnChange(func(change FileChange) { changes <- change })

	dw, err := NewDirWatcher(dir, target, 30*time.Millisecond, logging.Nop())
	if err != nil {
		t.Fatalf("NewDirWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := dw.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer dw.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(file, []byte("body{color:red}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case change := <-changes:
		if change.Path != "base.css" || change.Kind != KindStylesheet || change.Version != 1 {
			t.Fatalf("change = %+v, want base.css stylesheet v1", change)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case extra := <-changes:
		t.Fatalf("burst should coalesce, got extra %+v", extra)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDirWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	target := NewFeed(10)
	dw, err := NewDirWatcher(dir, target, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewDirWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := dw.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer dw.Stop()

	if err := os.WriteFile(filepath.Join(dir, ".swp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if got := target.Recent(0); len(got) != 0 {
		t.Fatalf("hidden file reported: %+v", got)
	}
}
