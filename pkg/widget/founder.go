package widget

import (
	"bytes"
	"html/template"

	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/page"
)

const (
	FounderID       = "founder-biography"
	FounderStyleKey = "founder"
)

type founderLink struct {
	Label string
	URL   string
}

type bioSection struct {
	Heading   string
	Body      string
	Expertise []string
}

// FounderProfile is the biography shown on the founder card.
type FounderProfile struct {
	Name     string
	Headline string
	Summary  string
	Sections []bioSection
	Links    []founderLink
}

var founderProfile = FounderProfile{
	Name:     "IVAN TAMAYO RAMOS",
	Headline: "International Architecture & Urban Design Consultant | Sustainable & Regenerative Design Expert | AI-Powered Solutions for Ecological Development",
	Summary:  "Results-driven urban development specialist with a proven track record of providing expert consultation on sustainable strategies, urban planning, and design for international projects. Expertise in integrating cultural heritage, creative economy, and social development components.",
	Sections: []bioSection{
		{
			Heading: "VISION FOR ECOSYSTEMSERVICES.WORLD",
			Body:    "Ivan brings his expertise in sustainable cities design and urban ecology to a platform that visualizes our planet's vital systems, combining AI technology with ecological principles to foster a new understanding of humanity's relationship with Earth's ecosystems.",
		},
		{
			Heading:   "EXPERTISE",
			Expertise: []string{"Sustainable Design", "Urban Planning", "AI Solutions", "Cultural Heritage"},
		},
		{
			Heading: "CURRENT WORK",
			Body:    "Fellow at the Norman Foster Institute in Madrid, Spain, focusing on architecture and urban design practices dedicated to sustainable, resilient, and regenerative environments.",
		},
	},
	Links: []founderLink{
		{"LinkedIn", "https://www.linkedin.com/in/ivan-tamayo-ramos-099a3255/"},
		{"Website", "https://www.tamayoramos.com/"},
	},
}

var founderTemplate = template.Must(template.New("founder").Parse(`<div class="founder-container">
  <div class="founder-header">
    <div class="founder-avatar"></div>
    <div class="founder-title">
      <h3>{{.Name}}</h3>
      <div class="founder-headline">{{.Headline}}</div>
    </div>
  </div>
  <div class="founder-bio">
    <p>{{.Summary}}</p>
{{range .Sections}}    <div class="bio-section">
      <h5>{{.Heading}}</h5>
{{with .Body}}      <p>{{.}}</p>
{{end}}{{with .Expertise}}      <ul class="expertise-grid">{{range .}}<li class="expertise-item">{{.}}</li>{{end}}</ul>
{{end}}    </div>
{{end}}  </div>
  <div class="founder-connect">{{range .Links}}<a class="social-link" href="{{.URL}}" target="_blank" rel="noopener">{{.Label}}</a>{{end}}</div>
</div>`))

const founderCSS = `.founder-header{display:flex;gap:16px;align-items:center;margin-bottom:16px}
.founder-avatar{width:64px;height:64px;border-radius:50%;border:2px solid var(--primary-color);background:radial-gradient(circle,rgba(0,255,157,.35),rgba(0,0,0,.6))}
.founder-title h3{margin:0;font-family:var(--header-font);letter-spacing:2px;color:var(--primary-color)}
.founder-headline{font-size:.8rem;color:rgba(255,255,255,.7)}
.bio-section h5{font-family:var(--header-font);color:var(--primary-color);letter-spacing:1px;margin:12px 0 6px}
.expertise-grid{display:grid;grid-template-columns:repeat(auto-fit,minmax(140px,1fr));gap:8px;list-style:none;padding:0}
.expertise-item{border:1px solid rgba(0,255,157,.2);border-radius:4px;padding:6px;text-align:center}
.founder-connect{display:flex;gap:12px;margin-top:12px}
.social-link{color:var(--primary-color);text-decoration:none;border-bottom:1px dotted var(--primary-color)}`

// Founder is the project founder card. It is appended last.
type Founder struct{}

// NewFounder returns the founder widget.
func NewFounder() *Founder {
	return &Founder{}
}

func (f *Founder) ID() string              { return FounderID }
func (f *Founder) Title() string           { return "PROJECT FOUNDER" }
func (f *Founder) Size() Size              { return SizeLarge }
func (f *Founder) Position() page.Position { return page.Append }

func (f *Founder) Styles() (string, string) {
	return FounderStyleKey, founderCSS
}

// Profile returns the biography the card renders.
func (f *Founder) Profile() FounderProfile {
	return founderProfile
}

func (f *Founder) Render() (template.HTML, error) {
	var buf bytes.Buffer
	if err := founderTemplate.Execute(&buf, founderProfile); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeWidgetRender, "render founder").
			WithContext("widget_id", FounderID)
	}
	return template.HTML(buf.String()), nil
}
