package widget

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/page"
)

//go:embed content/panels.css
var panelFS embed.FS

// PanelStyleKey is shared by every data panel, so the block is injected once.
const PanelStyleKey = "data-panels"

// Stat is a headline figure.
type Stat struct {
	Label string
	Value string
	Unit  string
	Trend float64 // sign selects the trend colour; zero means none
}

// Table is a captioned grid of cells. Numeric columns are right-aligned.
type Table struct {
	Class   string
	Caption string
	Columns []string
	Numeric []bool
	Rows    [][]string
}

// Panel is the body of a data widget. Container adds a class to the
// wrapper so layout rules can target one panel.
type Panel struct {
	Container string
	Stats     []Stat
	Tables    []Table
	Note      string
}

var panelTemplate = template.Must(template.New("panel").Funcs(template.FuncMap{
	"numeric": func(t Table, col int) bool { return col < len(t.Numeric) && t.Numeric[col] },
}).Parse(`<div class="panel{{with .Container}} {{.}}{{end}}">
{{with .Stats}}  <div class="panel-stats">
{{range .}}    <div class="panel-stat">
      <div class="stat-label">{{.Label}}</div>
      <div class="stat-value{{if gt .Trend 0.0}} trend-up{{else if lt .Trend 0.0}} trend-down{{end}}">{{.Value}}</div>
{{with .Unit}}      <div class="stat-unit">{{.}}</div>
{{end}}    </div>
{{end}}  </div>
{{end}}{{range $t := .Tables}}  <table class="panel-table{{with $t.Class}} {{.}}{{end}}">
    <caption>{{$t.Caption}}</caption>
    <thead><tr>{{range $t.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
{{range $t.Rows}}      <tr>{{range $i, $c := .}}<td{{if numeric $t $i}} class="num"{{end}}>{{$c}}</td>{{end}}</tr>
{{end}}    </tbody>
  </table>
{{end}}{{with .Note}}  <p class="panel-note">{{.}}</p>
{{end}}</div>`))

// dataPanel is a widget whose body is a static Panel.
type dataPanel struct {
	id    string
	title string
	size  Size
	build func() Panel
}

func (d *dataPanel) ID() string              { return d.id }
func (d *dataPanel) Title() string           { return d.title }
func (d *dataPanel) Size() Size              { return d.size }
func (d *dataPanel) Position() page.Position { return page.Append }

func (d *dataPanel) Styles() (string, string) {
	css, _ := panelFS.ReadFile("content/panels.css")
	return PanelStyleKey, string(css)
}

// Panel returns the panel data.
func (d *dataPanel) Panel() Panel {
	return d.build()
}

func (d *dataPanel) Render() (template.HTML, error) {
	var buf bytes.Buffer
	if err := panelTemplate.Execute(&buf, d.build()); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeWidgetRender, "render panel").
			WithContext("widget_id", d.id)
	}
	return template.HTML(buf.String()), nil
}

// numbers groups digits the way the panels' English copy expects.
var numbers = message.NewPrinter(language.English)

// formatInt groups thousands with commas.
func formatInt(n int64) string {
	return numbers.Sprintf("%d", n)
}

// formatGrouped is formatFloat with thousands grouping.
func formatGrouped(f float64, prec int) string {
	return numbers.Sprintf("%."+strconv.Itoa(prec)+"f", f)
}

func formatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}

func formatSigned(f float64, prec int) string {
	s := formatFloat(f, prec)
	if f >= 0 {
		s = "+" + s
	}
	return s
}

// formatCompact renders large counts as 32.5M or 1.2B.
func formatCompact(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return strings.TrimSuffix(formatFloat(float64(n)/1e9, 1), ".0") + "B"
	case n >= 1_000_000:
		return strings.TrimSuffix(formatFloat(float64(n)/1e6, 1), ".0") + "M"
	case n >= 1_000:
		return strings.TrimSuffix(formatFloat(float64(n)/1e3, 1), ".0") + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// formatClock renders a doomsday clock setting: seconds below two minutes,
// minutes otherwise.
func formatClock(seconds int) string {
	if seconds < 120 {
		return strconv.Itoa(seconds) + " sec"
	}
	return strings.TrimSuffix(formatFloat(float64(seconds)/60, 1), ".0") + " min"
}

func trendArrow(trend string) string {
	switch trend {
	case "increasing":
		return "↑"
	case "decreasing":
		return "↓"
	default:
		return "→"
	}
}
