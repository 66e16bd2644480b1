package layout

import (
	"testing"
	"time"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
)

func countKey(keys []string, key string) int {
	n := 0
	for _, k := range keys {
		if k == key {
			n++
		}
	}
	return n
}

func TestBindBeforeGridWaitsForInitialized(t *testing.T) {
	doc := page.NewDocument()
	b := bus.New()
	a := New(doc, 0, logging.Nop())
	a.Bind(b)

	if a.Applies() != 0 {
		t.Fatal("should not apply before the grid exists")
	}
	doc.CreateGrid("x")
	b.Publish(bus.Initialized)
	if a.Applies() != 1 {
		t.Fatalf("applies after Initialized = %d", a.Applies())
	}
}

func TestBindAfterGridAppliesImmediately(t *testing.T) {
	doc := page.NewDocument()
	doc.CreateGrid("x")
	b := bus.New()
	a := New(doc, 0, logging.Nop())
	a.Bind(b)

	if a.Applies() != 1 {
		t.Fatalf("applies = %d", a.Applies())
	}
	if b.Subscribers(bus.Initialized) != 0 {
		t.Fatal("should not wait for Initialized when the grid exists")
	}
}

func TestRepeatedRefreshKeepsOneBlock(t *testing.T) {
	doc := page.NewDocument()
	doc.CreateGrid("x")
	doc.InjectStyle("dashboard-shell", ".x{}")
	b := bus.New()
	a := New(doc, 0, logging.Nop())
	var last int
	a.OnApplied = func(n int) { last = n }
	a.Bind(b)

	for i := 0; i < 10; i++ {
		b.Publish(bus.Refresh)
	}

	if n := countKey(doc.StyleKeys(), StyleKey); n != 1 {
		t.Fatalf("override blocks = %d", n)
	}
	if a.Applies() != 11 || last != 11 {
		t.Fatalf("applies = %d, hook saw %d", a.Applies(), last)
	}
}

func TestResizeForcesSingleColumn(t *testing.T) {
	doc := page.NewDocument()
	b := bus.New()
	a := New(doc, time.Hour, logging.Nop())
	a.Bind(b)

	b.Publish(bus.Resize)
	if a.Resizes() != 0 {
		t.Fatal("resize without a grid should do nothing")
	}

	doc.CreateGrid("x")
	doc.Grid().SetInlineStyle("grid-template-columns", "repeat(3, 1fr)")
	b.Publish(bus.Resize)
	if got := doc.Grid().InlineStyle("grid-template-columns"); got != "1fr" {
		t.Fatalf("grid-template-columns = %q", got)
	}
}

func TestResizeIsThrottled(t *testing.T) {
	doc := page.NewDocument()
	doc.CreateGrid("x")
	a := New(doc, time.Hour, logging.Nop())

	if !a.Resize() {
		t.Fatal("first resize should reach the grid")
	}
	for i := 0; i < 50; i++ {
		if a.Resize() {
			t.Fatal("resize inside the interval should be dropped")
		}
	}
	if a.Resizes() != 1 {
		t.Fatalf("resizes = %d", a.Resizes())
	}
	if doc.Grid().InlineStyle("grid-template-columns") != "1fr" {
		t.Fatal("throttled resizes must not lose the single-column value")
	}
}

func TestResizeAfterIntervalRuns(t *testing.T) {
	doc := page.NewDocument()
	doc.CreateGrid("x")
	a := New(doc, 10*time.Millisecond, logging.Nop())

	a.Resize()
	time.Sleep(30 * time.Millisecond)
	if !a.Resize() {
		t.Fatal("resize after the interval should run")
	}
}
