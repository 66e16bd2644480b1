package widget

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/page"
)

//go:embed content/manifesto.md content/full_manifesto.md content/manifesto.css
var manifestoFS embed.FS

const (
	ManifestoID       = "project-manifesto"
	ManifestoStyleKey = "manifesto"
)

// ManifestoSection is one headed block of the manifesto.
type ManifestoSection struct {
	Heading string
	Body    template.HTML
}

// ManifestoContent is the parsed short-form manifesto.
type ManifestoContent struct {
	Title    string
	Sections []ManifestoSection
	Footer   template.HTML
}

var manifestoTemplate = template.Must(template.New("manifesto").Parse(
	`<div class="manifesto-container">
  <div class="manifesto-title">{{.Title}}</div>
{{range .Sections}}  <div class="manifesto-section">
    <h3>{{.Heading}}</h3>
    {{.Body}}
  </div>
{{end}}  <div class="manifesto-footer">
    <div class="pulse-circle"></div>
    {{.Footer}}
    <p><a href="/manifesto">READ FULL MANIFESTO</a></p>
  </div>
</div>`))

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Manifesto is the project manifesto panel. It is prepended so it leads the
// grid.
type Manifesto struct {
	once    sync.Once
	content ManifestoContent
	html    template.HTML
	err     error
}

// NewManifesto returns the manifesto widget.
func NewManifesto() *Manifesto {
	return &Manifesto{}
}

func (m *Manifesto) ID() string              { return ManifestoID }
func (m *Manifesto) Title() string           { return "PROJECT MANIFESTO" }
func (m *Manifesto) Size() Size              { return SizeLarge }
func (m *Manifesto) Position() page.Position { return page.Prepend }

func (m *Manifesto) Styles() (string, string) {
	css, _ := manifestoFS.ReadFile("content/manifesto.css")
	return ManifestoStyleKey, string(css)
}

// Content returns the parsed manifesto.
func (m *Manifesto) Content() (ManifestoContent, error) {
	m.load()
	return m.content, m.err
}

func (m *Manifesto) Render() (template.HTML, error) {
	m.load()
	return m.html, m.err
}

func (m *Manifesto) load() {
	m.once.Do(func() {
		source, err := manifestoFS.ReadFile("content/manifesto.md")
		if err != nil {
			m.err = apperrors.Wrap(err, apperrors.ErrCodeWidgetRender, "read manifesto")
			return
		}
		m.content, m.err = parseManifesto(source)
		if m.err != nil {
			return
		}
		var buf bytes.Buffer
		if err := manifestoTemplate.Execute(&buf, m.content); err != nil {
			m.err = apperrors.Wrap(err, apperrors.ErrCodeWidgetRender, "render manifesto")
			return
		}
		m.html = template.HTML(buf.String())
	})
}

// parseManifesto splits the document into title (level-1 heading), sections
// (each level-3 heading and the blocks after it) and footer (blocks after a
// thematic break).
func parseManifesto(source []byte) (ManifestoContent, error) {
	var out ManifestoContent
	doc := markdown.Parser().Parse(text.NewReader(source))

	var current *ManifestoSection
	var body, footer bytes.Buffer
	inFooter := false

	flush := func() {
		if current != nil {
			current.Body = template.HTML(strings.TrimSpace(body.String()))
			out.Sections = append(out.Sections, *current)
			current = nil
		}
		body.Reset()
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			switch n.Level {
			case 1:
				out.Title = nodeText(n, source)
			default:
				flush()
				current = &ManifestoSection{Heading: nodeText(n, source)}
			}
		case *ast.ThematicBreak:
			flush()
			inFooter = true
		default:
			target := &body
			if inFooter {
				target = &footer
			} else if current == nil {
				continue
			}
			if err := markdown.Renderer().Render(target, source, node); err != nil {
				return out, apperrors.Wrap(err, apperrors.ErrCodeWidgetRender, "render manifesto block")
			}
		}
	}
	flush()
	out.Footer = template.HTML(strings.TrimSpace(footer.String()))

	if out.Title == "" || len(out.Sections) == 0 {
		return out, apperrors.New(apperrors.ErrCodeWidgetRender, "manifesto has no title or sections")
	}
	return out, nil
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// FullText returns the long-form manifesto as markdown.
func FullText() string {
	source, _ := manifestoFS.ReadFile("content/full_manifesto.md")
	return string(source)
}

// FullHTML renders the long-form manifesto.
func FullHTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(FullText()), &buf); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeWidgetRender, "render full manifesto")
	}
	return template.HTML(buf.String()), nil
}
