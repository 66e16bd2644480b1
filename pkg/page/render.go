package page

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// DefaultStaticPrefix is where the server mounts embedded assets.
const DefaultStaticPrefix = "/static"

// Meta carries per-request values that are not part of the document.
type Meta struct {
	PageID       string
	Title        string
	SceneURL     string
	EventsURL    string
	StaticPrefix string
}

type gridView struct {
	Title      string
	Fragments  []Fragment
	ListView   bool
	Refreshing bool
	Style      template.CSS
}

type pageView struct {
	Meta
	Styles []StyleBlock
	Grid   *gridView
}

type articleView struct {
	Title        string
	Body         template.HTML
	StaticPrefix string
}

func newGridView(g *Grid) *gridView {
	if g == nil {
		return nil
	}
	return &gridView{
		Title:      g.Title,
		Fragments:  g.Fragments(),
		ListView:   g.view == ViewList,
		Refreshing: g.refreshing,
		Style:      g.inlineCSS(),
	}
}

func (m Meta) withDefaults() Meta {
	if m.StaticPrefix == "" {
		m.StaticPrefix = DefaultStaticPrefix
	}
	if m.Title == "" {
		m.Title = "Earth Control Interface"
	}
	if m.SceneURL == "" {
		m.SceneURL = "/api/scene"
	}
	return m
}

// Render writes the full HTML page for d.
func Render(w io.Writer, d *Document, meta Meta) error {
	return templates.ExecuteTemplate(w, "page", pageView{
		Meta:   meta.withDefaults(),
		Styles: d.Styles(),
		Grid:   newGridView(d.grid),
	})
}

// RenderShell writes the dashboard container (header, controls and grid).
// Nothing is written when the grid does not exist.
func RenderShell(w io.Writer, d *Document) error {
	if d.grid == nil {
		return nil
	}
	return templates.ExecuteTemplate(w, "shell", newGridView(d.grid))
}

// RenderArticle writes a standalone long-form page.
func RenderArticle(w io.Writer, title string, body template.HTML) error {
	return templates.ExecuteTemplate(w, "article", articleView{
		Title:        title,
		Body:         body,
		StaticPrefix: DefaultStaticPrefix,
	})
}
