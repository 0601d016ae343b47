package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"

	"github.com/roivaz/appliance-diag/internal/appliance"
	"github.com/roivaz/appliance-diag/internal/generation"
	"github.com/roivaz/appliance-diag/internal/prompt"
)

const lgReport = `1. Probable Causes
- Faulty T-Con board (INR 2,000-4,000)
- Backlight LED strip failure (INR 3,000-6,000)
2. Customer Care
- LG: 1800-180-9999
3. Turnaround Time
- 2-4 days
4. Spare Parts Information
- Original T-Con board: INR 3,500, 5 years
- Local T-Con board: INR 1,800, 2 years`

type stubGenerator struct {
	reply      string
	err        error
	structured bool
	calls      int
	prompts    []string
}

func (s *stubGenerator) Generate(_ context.Context, text string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, text)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubGenerator) Structured() bool { return s.structured }

func newTestService(t *testing.T, cfg Config, gen Generator) *Service {
	t.Helper()
	catalog, err := prompt.DefaultCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	cfg.Logger = logr.Discard()
	svc, err := NewService(cfg, catalog, gen)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.countTokens = func(text string) int { return len(text) / 4 }
	return svc
}

func headings(r Result) []string {
	out := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		out = append(out, s.Heading)
	}
	return out
}

func TestDiagnose_EndToEnd(t *testing.T) {
	gen := &stubGenerator{reply: lgReport}
	svc := newTestService(t, Config{Mode: appliance.ModeApplianceInferred, Profile: "classic"}, gen)

	res, err := svc.Diagnose(context.Background(), appliance.Request{ModelName: "LG T70SPSF2Z", IssueDescription: "No display", ErrorCode: ""})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if res.Status != StatusSuccess || res.Structured {
		t.Fatalf("unexpected result status %+v", res)
	}
	want := []string{"Probable Causes", "Customer Care", "Turnaround Time", "Spare Parts Information"}
	if diff := cmp.Diff(want, headings(res)); diff != "" {
		t.Fatalf("headings mismatch (-want +got):\n%s", diff)
	}
	if res.Sections[0].BodyLines[0] != "• Faulty T-Con board (INR 2,000-4,000)" {
		t.Fatalf("unexpected first line %q", res.Sections[0].BodyLines[0])
	}

	html, err := res.HTML()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := strings.Count(html, "<section"); n != 4 {
		t.Fatalf("expected 4 rendered sections, got %d", n)
	}
	last := -1
	for _, h := range want {
		idx := strings.Index(html, h)
		if idx <= last {
			t.Fatalf("heading %q out of order in %s", h, html)
		}
		last = idx
	}

	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
	sent := gen.prompts[0]
	if strings.Count(sent, "LG T70SPSF2Z") != 1 || strings.Count(sent, "No display") != 1 {
		t.Fatalf("expected fields verbatim once in prompt: %s", sent)
	}
	if !strings.Contains(sent, "No specific error provided") {
		t.Fatalf("expected error code default in prompt: %s", sent)
	}
	if res.PromptTokens != len(sent)/4 {
		t.Fatalf("unexpected prompt token count %d", res.PromptTokens)
	}
}

func TestDiagnose_RejectsBeforeGeneration(t *testing.T) {
	cases := map[string]struct {
		mode appliance.RequestMode
		req  appliance.Request
	}{
		"empty model":       {appliance.ModeApplianceInferred, appliance.Request{IssueDescription: "No display"}},
		"empty issue":       {appliance.ModeApplianceInferred, appliance.Request{ModelName: "LG T70SPSF2Z", IssueDescription: "  "}},
		"missing appliance": {appliance.ModeApplianceRequired, appliance.Request{ModelName: "LG T70SPSF2Z", IssueDescription: "No display"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gen := &stubGenerator{reply: lgReport}
			svc := newTestService(t, Config{Mode: tc.mode}, gen)
			res, err := svc.Diagnose(context.Background(), tc.req)
			var verr *appliance.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if gen.calls != 0 {
				t.Fatalf("generator called %d times", gen.calls)
			}
			if res.Status != StatusFailure {
				t.Fatalf("expected failure status, got %s", res.Status)
			}
		})
	}
}

func TestDiagnose_GenerationError(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("%w: quota exceeded", generation.ErrGeneration)}
	svc := newTestService(t, Config{}, gen)
	res, err := svc.Diagnose(context.Background(), appliance.Request{ApplianceType: "TV", ModelName: "X", IssueDescription: "Y"})
	if !errors.Is(err, generation.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if res.Status != StatusFailure || len(res.Sections) != 0 {
		t.Fatalf("expected failure without sections, got %+v", res)
	}
}

func TestDiagnose_PromptTokenLimit(t *testing.T) {
	gen := &stubGenerator{reply: lgReport}
	svc := newTestService(t, Config{MaxPromptTokens: 10}, gen)
	_, err := svc.Diagnose(context.Background(), appliance.Request{ApplianceType: "TV", ModelName: "X", IssueDescription: strings.Repeat("noise ", 50)})
	var verr *appliance.ValidationError
	if !errors.As(err, &verr) || len(verr.Missing) != 0 || verr.Reason == "" {
		t.Fatalf("expected token limit validation error, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator should not be called")
	}
}

func TestDiagnose_StructuredOutput(t *testing.T) {
	gen := &stubGenerator{structured: true, reply: `{"sections":[{"heading":"Causes","lines":["fan motor"]},{"heading":"Care","lines":["1800-xxx"]}]}`}
	svc := newTestService(t, Config{Profile: "crisp"}, gen)
	res, err := svc.Diagnose(context.Background(), appliance.Request{ApplianceType: "AC", ModelName: "X", IssueDescription: "Y"})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if !res.Structured {
		t.Fatalf("expected structured sections")
	}
	if !strings.Contains(gen.prompts[0], `{"sections"`) {
		t.Fatalf("expected JSON directive in prompt")
	}
	// crisp overrides headings positionally
	want := []string{"Probable Causes & Estimated Costs", "Brand Customer Care"}
	if diff := cmp.Diff(want, headings(res)); diff != "" {
		t.Fatalf("headings mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnose_StructuredFallback(t *testing.T) {
	gen := &stubGenerator{structured: true, reply: lgReport}
	svc := newTestService(t, Config{Profile: "classic"}, gen)
	res, err := svc.Diagnose(context.Background(), appliance.Request{ApplianceType: "TV", ModelName: "X", IssueDescription: "Y"})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if res.Structured || len(res.Sections) != 4 {
		t.Fatalf("expected text sectioning fallback, got %+v", res)
	}
}

func TestDiagnose_GlyphOverflowWraps(t *testing.T) {
	reply := "🔹 a\n- 1\n🔹 b\n- 2\n🔹 c\n- 3\n🔹 d\n- 4\n🔹 e\n- 5\n🔹 f\n- 6"
	svc := newTestService(t, Config{Profile: "brief"}, &stubGenerator{reply: reply})
	res, err := svc.Diagnose(context.Background(), appliance.Request{ApplianceType: "TV", ModelName: "X", IssueDescription: "Y"})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	want := []string{"Causes & Costs", "Customer Care", "Turnaround", "Spare Parts", "Causes & Costs", "Customer Care"}
	if diff := cmp.Diff(want, headings(res)); diff != "" {
		t.Fatalf("headings mismatch (-want +got):\n%s", diff)
	}
	html, err := res.HTML()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Count(html, res.Palette[0]) != 4 {
		t.Fatalf("expected palette to wrap onto the sixth section: %s", html)
	}
}

func TestDiagnose_RawProfile(t *testing.T) {
	gen := &stubGenerator{structured: true, reply: "**Probable Causes**\n\n- Faulty board"}
	svc := newTestService(t, Config{}, gen)
	res, err := svc.DiagnoseWithProfile(context.Background(), appliance.Request{ApplianceType: "TV", ModelName: "X", IssueDescription: "Y"}, "raw")
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if strings.Contains(gen.prompts[0], `{"sections"`) {
		t.Fatalf("raw profile must not request JSON")
	}
	if len(res.Sections) != 1 {
		t.Fatalf("expected one catch-all section, got %d", len(res.Sections))
	}
	html, _ := res.HTML()
	if !strings.Contains(html, "<strong>Probable Causes</strong>") {
		t.Fatalf("expected markdown rendering, got %s", html)
	}
}

func TestDiagnose_UnknownProfile(t *testing.T) {
	gen := &stubGenerator{reply: lgReport}
	svc := newTestService(t, Config{}, gen)
	_, err := svc.DiagnoseWithProfile(context.Background(), appliance.Request{ApplianceType: "TV", ModelName: "X", IssueDescription: "Y"}, "nope")
	var verr *appliance.ValidationError
	if !errors.As(err, &verr) || gen.calls != 0 {
		t.Fatalf("expected validation error without generation, got %v (calls %d)", err, gen.calls)
	}
}

func TestNewService_UnknownDefaultProfile(t *testing.T) {
	catalog, _ := prompt.DefaultCatalog()
	if _, err := NewService(Config{Profile: "nope"}, catalog, &stubGenerator{}); err == nil {
		t.Fatalf("expected error for unknown default profile")
	}
}
