package diagnosis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/roivaz/appliance-diag/internal/appliance"
	"github.com/roivaz/appliance-diag/internal/logging"
	"github.com/roivaz/appliance-diag/internal/prompt"
	"github.com/roivaz/appliance-diag/internal/report"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Generator is the external text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Structured() bool
}

// Result is what one submission produces for display.
type Result struct {
	Status       Status           `json:"status"`
	Profile      string           `json:"profile"`
	Sections     []report.Section `json:"sections,omitempty"`
	Raw          string           `json:"raw,omitempty"`
	Render       string           `json:"render"`
	Palette      []string         `json:"palette"`
	Structured   bool             `json:"structured"`
	PromptTokens int              `json:"prompt_tokens"`
}

type Config struct {
	Mode            appliance.RequestMode
	Profile         string
	MaxPromptTokens int
	Logger          logr.Logger
}

// Service runs the validate, prompt, generate, section pipeline. It holds
// no per-request state and is safe for concurrent use.
type Service struct {
	cfg         Config
	catalog     *prompt.Catalog
	generator   Generator
	log         logging.Logger
	countTokens func(string) int
}

func NewService(cfg Config, catalog *prompt.Catalog, generator Generator) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("prompt catalog is required")
	}
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = appliance.ModeApplianceRequired
	}
	if _, err := catalog.Get(cfg.Profile); err != nil {
		return nil, err
	}
	return &Service{
		cfg:         cfg,
		catalog:     catalog,
		generator:   generator,
		log:         logging.New(cfg.Logger).WithName("diagnosis"),
		countTokens: prompt.EstimateTokens,
	}, nil
}

func (s *Service) Mode() appliance.RequestMode { return s.cfg.Mode }

func (s *Service) Profiles() []prompt.Profile { return s.catalog.Profiles() }

// Diagnose runs one submission with the default profile.
func (s *Service) Diagnose(ctx context.Context, req appliance.Request) (Result, error) {
	return s.DiagnoseWithProfile(ctx, req, "")
}

// DiagnoseWithProfile runs one submission with the named profile; an empty
// name selects the configured default. Validation failures return a
// *appliance.ValidationError before the generator is called; generator
// failures wrap generation.ErrGeneration and yield a failure Result.
func (s *Service) DiagnoseWithProfile(ctx context.Context, req appliance.Request, profileName string) (Result, error) {
	if profileName == "" {
		profileName = s.cfg.Profile
	}
	profile, err := s.catalog.Get(profileName)
	if err != nil {
		return Result{Status: StatusFailure, Profile: profileName}, &appliance.ValidationError{Reason: err.Error()}
	}
	result := Result{
		Status:  StatusFailure,
		Profile: profile.Name,
		Render:  string(profile.Render),
		Palette: paletteFor(profile),
	}

	req = req.Normalize()
	if err := req.Validate(s.cfg.Mode); err != nil {
		s.log.Info("rejected submission", "error", err.Error())
		return result, err
	}

	structured := s.generator.Structured() && profile.Render == prompt.RenderSections
	text := prompt.Build(req, profile, prompt.Options{Structured: structured})
	result.PromptTokens = s.countTokens(text)
	if s.cfg.MaxPromptTokens > 0 && result.PromptTokens > s.cfg.MaxPromptTokens {
		return result, &appliance.ValidationError{
			Reason: fmt.Sprintf("The issue description is too long (%d tokens, limit %d). Please shorten it.", result.PromptTokens, s.cfg.MaxPromptTokens),
		}
	}

	log := s.log.WithValues("profile", profile.Name, "model_name", req.ModelName)
	log.Debug("sending prompt", "prompt_tokens", result.PromptTokens, "structured", structured)

	raw, err := s.generator.Generate(ctx, text)
	if err != nil {
		log.Error(err, "generation failed")
		return result, err
	}

	result.Status = StatusSuccess
	result.Raw = raw
	result.Sections, result.Structured = sectionReport(raw, profile, structured)
	log.Info("diagnosis generated", "sections", len(result.Sections), "structured", result.Structured)
	return result, nil
}

// sectionReport prefers the structured payload when one was requested and
// falls back to heading-marker parsing of the raw text.
func sectionReport(raw string, profile prompt.Profile, structured bool) ([]report.Section, bool) {
	sectioner := SectionerFor(profile)
	if structured {
		if sections, ok := report.ParseStructured(raw); ok {
			if profile.OverrideHeadings {
				sectioner.Label(sections)
			}
			return sections, true
		}
	}
	return sectioner.Split(raw), false
}

// SectionerFor builds the text sectioner matching a profile's heading
// convention.
func SectionerFor(profile prompt.Profile) report.Sectioner {
	var opts []report.Option
	if len(profile.Headings) > 0 {
		opts = append(opts, report.WithHeadings(profile.Headings, profile.OverrideHeadings))
	}
	switch profile.Marker {
	case prompt.MarkerGlyph:
		return report.NewSectioner(report.GlyphMarker(profile.Glyph), opts...)
	case prompt.MarkerNone:
		return report.NewSectioner(nil, opts...)
	default:
		return report.NewSectioner(report.NumericMarker(), opts...)
	}
}

func paletteFor(profile prompt.Profile) []string {
	if len(profile.Palette) > 0 {
		return profile.Palette
	}
	return report.DefaultPalette
}
