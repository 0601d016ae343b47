package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"
)

//go:embed profiles.yaml
var defaultProfiles []byte

type Marker string

const (
	MarkerNumeric Marker = "numeric"
	MarkerGlyph   Marker = "glyph"
	MarkerNone    Marker = "none"
)

type RenderStyle string

const (
	RenderSections RenderStyle = "sections"
	RenderMarkdown RenderStyle = "markdown"
)

// Profile is one prompt variant together with the conventions the generated
// text is expected to follow.
type Profile struct {
	Name             string      `json:"name"`
	Description      string      `json:"description,omitempty"`
	Template         string      `json:"template"`
	Marker           Marker      `json:"marker"`
	Glyph            string      `json:"glyph,omitempty"`
	Headings         []string    `json:"headings,omitempty"`
	OverrideHeadings bool        `json:"override_headings,omitempty"`
	Palette          []string    `json:"palette,omitempty"`
	Render           RenderStyle `json:"render,omitempty"`
}

// Catalog keeps profiles in declaration order.
type Catalog struct {
	profiles []Profile
	byName   map[string]int
}

type catalogFile struct {
	Profiles []Profile `json:"profiles"`
}

// DefaultCatalog returns the embedded profile catalogue.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultProfiles)
}

// LoadCatalog reads profiles from path, or the embedded catalogue when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	if len(file.Profiles) == 0 {
		return nil, fmt.Errorf("no prompt profiles defined")
	}
	cat := &Catalog{byName: make(map[string]int, len(file.Profiles))}
	for _, p := range file.Profiles {
		p = p.withDefaults()
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := cat.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate prompt profile %q", p.Name)
		}
		cat.byName[p.Name] = len(cat.profiles)
		cat.profiles = append(cat.profiles, p)
	}
	return cat, nil
}

// Get looks a profile up by name; an empty name selects the first profile.
func (c *Catalog) Get(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.profiles[0], nil
	}
	idx, ok := c.byName[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown prompt profile %q", name)
	}
	return c.profiles[idx], nil
}

func (c *Catalog) Profiles() []Profile {
	out := make([]Profile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

func (p Profile) withDefaults() Profile {
	p.Name = strings.TrimSpace(p.Name)
	if p.Marker == "" {
		p.Marker = MarkerNumeric
	}
	if p.Render == "" {
		p.Render = RenderSections
	}
	return p
}

func (p Profile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("prompt profile without name")
	}
	switch p.Marker {
	case MarkerNumeric, MarkerNone:
	case MarkerGlyph:
		if strings.TrimSpace(p.Glyph) == "" {
			return fmt.Errorf("profile %s: glyph marker needs a glyph", p.Name)
		}
	default:
		return fmt.Errorf("profile %s: unknown marker %q", p.Name, p.Marker)
	}
	switch p.Render {
	case RenderSections, RenderMarkdown:
	default:
		return fmt.Errorf("profile %s: unknown render style %q", p.Name, p.Render)
	}
	if p.OverrideHeadings && len(p.Headings) == 0 {
		return fmt.Errorf("profile %s: override_headings needs headings", p.Name)
	}
	// every field must land in the prompt exactly once
	for _, ph := range placeholders {
		if n := strings.Count(p.Template, ph); n != 1 {
			return fmt.Errorf("profile %s: placeholder %s appears %d times, want 1", p.Name, ph, n)
		}
	}
	return nil
}
