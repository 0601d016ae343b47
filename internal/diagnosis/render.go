package diagnosis

import (
	"github.com/roivaz/appliance-diag/internal/prompt"
	"github.com/roivaz/appliance-diag/internal/report"
)

// HTML renders a successful result as an HTML fragment: coloured sections,
// or the whole report as markdown for unsectioned profiles.
func (r Result) HTML() (string, error) {
	if r.Render == string(prompt.RenderMarkdown) {
		return report.RenderMarkdown(r.Raw), nil
	}
	return report.RenderHTML(r.Sections, r.Palette)
}

// Text renders a successful result for a terminal.
func (r Result) Text() string {
	if r.Render == string(prompt.RenderMarkdown) {
		return r.Raw + "\n"
	}
	return report.RenderText(r.Sections)
}
