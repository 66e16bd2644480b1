package page

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestCreateGridIsIdempotent(t *testing.T) {
	d := NewDocument()
	if d.HasGrid() {
		t.Fatal("new document should not have a grid")
	}
	if !d.CreateGrid("EARTH SYSTEM MONITORING") {
		t.Fatal("first CreateGrid should create")
	}
	first := d.Grid()
	if d.CreateGrid("OTHER") {
		t.Fatal("second CreateGrid should be a no-op")
	}
	if d.Grid() != first || first.Title != "EARTH SYSTEM MONITORING" {
		t.Fatal("grid should be unchanged by the second call")
	}
	if first.View() != ViewGrid {
		t.Fatalf("new grid view = %s, want grid", first.View())
	}
}

func TestInsertHonoursPositionAndRejectsDuplicates(t *testing.T) {
	d := NewDocument()
	d.CreateGrid("x")
	g := d.Grid()

	g.Insert(Fragment{ID: "b"}, Append)
	g.Insert(Fragment{ID: "c"}, Append)
	g.Insert(Fragment{ID: "a"}, Prepend)
	if g.Insert(Fragment{ID: "b"}, Prepend) {
		t.Fatal("duplicate insert should be rejected")
	}

	if got := g.IDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("IDs = %v", got)
	}
	if g.Count("b") != 1 {
		t.Fatalf("Count(b) = %d", g.Count("b"))
	}
}

func TestInjectStyleOncePerKey(t *testing.T) {
	d := NewDocument()
	if !d.InjectStyle("manifesto", ".a{}") {
		t.Fatal("first inject should add")
	}
	if d.InjectStyle("manifesto", ".b{}") {
		t.Fatal("second inject should be ignored")
	}
	if got := d.Styles(); len(got) != 1 || got[0].CSS != ".a{}" {
		t.Fatalf("styles = %+v", got)
	}
}

func TestReplaceStyleKeepsSingleBlock(t *testing.T) {
	d := NewDocument()
	d.InjectStyle("shell", ".shell{}")
	if !d.ReplaceStyle("layout", ".one{}") {
		t.Fatal("first replace should add")
	}
	d.InjectStyle("widget", ".w{}")
	for i := 0; i < 5; i++ {
		if d.ReplaceStyle("layout", ".two{}") {
			t.Fatal("later replaces should update in place")
		}
	}

	if got := d.StyleKeys(); !reflect.DeepEqual(got, []string{"shell", "layout", "widget"}) {
		t.Fatalf("StyleKeys = %v", got)
	}
	if d.Styles()[1].CSS != ".two{}" {
		t.Fatalf("layout css = %q", d.Styles()[1].CSS)
	}
}

func TestRenderWithoutGrid(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, NewDocument(), Meta{PageID: "p1"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := parse(t, buf.String())
	if doc.Find(".dashboard-grid").Length() != 0 {
		t.Fatal("no grid should render before mount")
	}
	if id, _ := doc.Find("body").Attr("data-page-id"); id != "p1" {
		t.Fatalf("page id attr = %q", id)
	}
	if title := doc.Find("title").Text(); title != "Earth Control Interface" {
		t.Fatalf("title = %q", title)
	}
}

func TestRenderShellState(t *testing.T) {
	d := NewDocument()
	d.CreateGrid("EARTH SYSTEM MONITORING")
	g := d.Grid()
	g.Insert(Fragment{ID: "project-manifesto", Title: "PROJECT MANIFESTO", Size: "large", Body: "<p>hi</p>"}, Prepend)
	g.SetView(ViewList)
	g.SetRefreshing(true)
	g.SetInlineStyle("grid-template-columns", "1fr")
	d.InjectStyle("shell", ".dashboard-container{width:100%}")

	var buf bytes.Buffer
	if err := Render(&buf, d, Meta{PageID: "p2"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := parse(t, buf.String())

	if doc.Find("#enhanced-dashboard").Length() != 1 {
		t.Fatal("expected one dashboard container")
	}
	grid := doc.Find(".dashboard-grid")
	if !grid.HasClass("list-view") {
		t.Fatal("grid should carry list-view class")
	}
	if style, _ := grid.Attr("style"); !strings.Contains(style, "grid-template-columns: 1fr") {
		t.Fatalf("grid inline style = %q", style)
	}
	if !doc.Find("#refresh-data-btn").HasClass("refreshing") {
		t.Fatal("refresh button should show refreshing state")
	}
	if doc.Find("#grid-view-btn").HasClass("active") || !doc.Find("#list-view-btn").HasClass("active") {
		t.Fatal("exactly the list toggle should be active")
	}
	widget := doc.Find("#project-manifesto")
	if widget.Length() != 1 || !widget.HasClass("large") {
		t.Fatal("manifesto fragment missing or wrong size")
	}
	if widget.Find(".widget-header h4").Text() != "PROJECT MANIFESTO" {
		t.Fatal("widget header title missing")
	}
	if doc.Find(`style[data-style-key="shell"]`).Length() != 1 {
		t.Fatal("shell style block missing")
	}
}

func TestRenderShellFragmentOnly(t *testing.T) {
	var buf bytes.Buffer
	d := NewDocument()
	if err := RenderShell(&buf, d); err != nil || buf.Len() != 0 {
		t.Fatalf("RenderShell before mount wrote %q, err %v", buf.String(), err)
	}
	d.CreateGrid("EARTH SYSTEM MONITORING")
	if err := RenderShell(&buf, d); err != nil {
		t.Fatalf("RenderShell: %v", err)
	}
	if strings.Contains(buf.String(), "<html") {
		t.Fatal("shell fragment should not contain the page wrapper")
	}
	if parse(t, buf.String()).Find(".dashboard-grid").Length() != 1 {
		t.Fatal("shell fragment should contain the grid")
	}
}

func TestRenderArticle(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderArticle(&buf, "MANIFESTO", "<h2>BEYOND BORDERS</h2>"); err != nil {
		t.Fatalf("RenderArticle: %v", err)
	}
	doc := parse(t, buf.String())
	if doc.Find("main h2").Text() != "BEYOND BORDERS" {
		t.Fatal("article body should be rendered as HTML")
	}
}
