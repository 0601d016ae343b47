package report

import (
	"regexp"
	"strings"

	stripmd "github.com/adityathebe/go-strip-markdown/v2"
)

const Bullet = "•"

var (
	numericMarker = regexp.MustCompile(`^\d+\.(?:\s+|$)`)
	bulletMarker  = regexp.MustCompile(`^[-*]\s+`)
	headingNoise  = regexp.MustCompile(`^(?:#+\s*|\*\*\s*)+`)
)

// Section is one labelled block of a generated report.
type Section struct {
	Heading   string   `json:"heading"`
	BodyLines []string `json:"body_lines"`
}

// NumericMarker matches headings such as "1. Probable Causes".
func NumericMarker() *regexp.Regexp { return numericMarker }

// GlyphMarker matches headings that start with glyph.
func GlyphMarker(glyph string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(strings.TrimSpace(glyph)) + `\s*`)
}

// Sectioner splits free text into sections at lines matching a heading
// marker. It holds no state between calls.
type Sectioner struct {
	marker   *regexp.Regexp
	headings []string
	override bool
}

type Option func(*Sectioner)

// WithHeadings supplies the expected heading names in requested order. With
// override set they replace the literal heading text positionally; otherwise
// they only fill in headings that came out empty.
func WithHeadings(headings []string, override bool) Option {
	return func(s *Sectioner) {
		s.headings = append([]string(nil), headings...)
		s.override = override
	}
}

// NewSectioner returns a Sectioner for marker. A nil marker never splits.
func NewSectioner(marker *regexp.Regexp, opts ...Option) Sectioner {
	s := Sectioner{marker: marker}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Split partitions text into sections. A boundary sits before every heading
// line; non-blank text before the first heading becomes a leading section
// with an empty heading. Text without any heading yields a single section.
func (s Sectioner) Split(text string) []Section {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		sections    []Section
		current     *Section
		hasPreamble bool
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if heading, ok := s.matchHeading(trimmed); ok {
			sections = append(sections, Section{Heading: heading})
			current = &sections[len(sections)-1]
			continue
		}
		if trimmed == "" {
			continue
		}
		if current == nil {
			sections = append(sections, Section{})
			current = &sections[0]
			hasPreamble = true
		}
		current.BodyLines = append(current.BodyLines, rewriteBullet(trimmed))
	}

	if len(sections) == 0 {
		return []Section{{}}
	}
	if hasPreamble {
		s.Label(sections[1:])
	} else {
		s.Label(sections)
	}
	return sections
}

// Label applies the expected heading list to sections in place, wrapping
// around when there are more sections than headings.
func (s Sectioner) Label(sections []Section) []Section {
	if len(s.headings) == 0 {
		return sections
	}
	for i := range sections {
		if s.override || sections[i].Heading == "" {
			sections[i].Heading = s.headings[i%len(s.headings)]
		}
	}
	return sections
}

func (s Sectioner) matchHeading(line string) (string, bool) {
	if s.marker == nil || line == "" {
		return "", false
	}
	candidate := headingNoise.ReplaceAllString(line, "")
	loc := s.marker.FindStringIndex(candidate)
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	return cleanHeading(candidate[loc[1]:]), true
}

func cleanHeading(text string) string {
	text = strings.Trim(text, "*_# \t")
	if text == "" {
		return ""
	}
	return strings.Trim(stripmd.Strip(text), "*_ \t")
}

func rewriteBullet(line string) string {
	loc := bulletMarker.FindStringIndex(line)
	if loc == nil {
		return line
	}
	return Bullet + " " + strings.TrimSpace(line[loc[1]:])
}
