package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// DefaultPalette is cycled across rendered sections.
var DefaultPalette = []string{"#2E86C1", "#28B463", "#D68910", "#8E44AD", "#C0392B"}

var sectionsTemplate = template.Must(template.New("sections").Parse(
	`<div class="diagnosis-report">
{{- range .}}
<section class="report-section" style="border-left: 4px solid {{.Color}}; padding-left: 12px; margin-bottom: 16px;">
{{- if .Heading}}
<h3 style="color: {{.Color}};">{{.Heading}}</h3>
{{- end}}
<p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
</section>
{{- end}}
</div>
`))

type renderedSection struct {
	Heading string
	Lines   []string
	Color   template.CSS
}

// ColorFor picks the palette entry for the section at index i, wrapping with
// modulo. An empty palette falls back to DefaultPalette.
func ColorFor(palette []string, i int) string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// RenderHTML renders sections as an escaped HTML fragment.
func RenderHTML(sections []Section, palette []string) (string, error) {
	view := make([]renderedSection, 0, len(sections))
	for i, s := range sections {
		view = append(view, renderedSection{
			Heading: s.Heading,
			Lines:   s.BodyLines,
			Color:   template.CSS(ColorFor(palette, i)),
		})
	}
	var buf bytes.Buffer
	if err := sectionsTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render sections: %w", err)
	}
	return buf.String(), nil
}

// RenderMarkdown converts an unsectioned report to HTML. Raw HTML in the
// generated text is dropped.
func RenderMarkdown(raw string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(raw))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank})
	return string(markdown.Render(doc, renderer))
}

// RenderText lays sections out for a terminal.
func RenderText(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Heading != "" {
			b.WriteString(s.Heading)
			b.WriteString("\n")
			b.WriteString(strings.Repeat("-", len([]rune(s.Heading))))
			b.WriteString("\n")
		}
		for _, line := range s.BodyLines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
