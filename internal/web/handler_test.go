package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"

	"github.com/roivaz/appliance-diag/internal/appliance"
	"github.com/roivaz/appliance-diag/internal/diagnosis"
	"github.com/roivaz/appliance-diag/internal/generation"
	"github.com/roivaz/appliance-diag/internal/prompt"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubGenerator) Structured() bool { return false }

func newTestHandler(t *testing.T, gen *stubGenerator, opts ...Option) *Handler {
	t.Helper()
	catalog, err := prompt.DefaultCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	svc, err := diagnosis.NewService(diagnosis.Config{Profile: "classic", Logger: logr.Discard()}, catalog, gen)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return NewHandler(svc, logr.Discard(), opts...)
}

const report = "1. Probable Causes\n- Fan motor <failed>\n2. Customer Care\n- 1800-xxx"

func TestDiagnoseJSON(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		gen        *stubGenerator
		wantStatus int
		wantError  string
		wantCalls  int
	}{
		{
			name:       "success",
			body:       `{"appliance_type":"AC","model_name":"Voltas 183V","issue_description":"Not cooling"}`,
			gen:        &stubGenerator{reply: report},
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "missing fields",
			body:       `{"model_name":"Voltas 183V"}`,
			gen:        &stubGenerator{reply: report},
			wantStatus: http.StatusBadRequest,
			wantError:  appliance.MissingFieldsMessage,
		},
		{
			name:       "generation failure",
			body:       `{"appliance_type":"AC","model_name":"Voltas 183V","issue_description":"Not cooling"}`,
			gen:        &stubGenerator{err: fmt.Errorf("%w: api key rejected", generation.ErrGeneration)},
			wantStatus: http.StatusBadGateway,
			wantError:  generationMessage,
			wantCalls:  1,
		},
		{
			name:       "malformed body",
			body:       `{`,
			gen:        &stubGenerator{reply: report},
			wantStatus: http.StatusBadRequest,
			wantError:  "request body must be a JSON object",
		},
		{
			name:       "unknown profile",
			body:       `{"appliance_type":"AC","model_name":"X","issue_description":"Y","profile":"nope"}`,
			gen:        &stubGenerator{reply: report},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, tc.gen)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/diagnose", strings.NewReader(tc.body)))

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.gen.calls != tc.wantCalls {
				t.Fatalf("generator calls = %d, want %d", tc.gen.calls, tc.wantCalls)
			}
			if tc.wantStatus == http.StatusOK {
				var out diagnoseResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if out.Result.Status != diagnosis.StatusSuccess || len(out.Result.Sections) != 2 {
					t.Fatalf("unexpected result %+v", out.Result)
				}
				if !strings.Contains(out.HTML, "&lt;failed&gt;") {
					t.Fatalf("expected escaped html fragment, got %s", out.HTML)
				}
				return
			}
			var out errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tc.wantError != "" && out.Error != tc.wantError {
				t.Fatalf("error = %q, want %q", out.Error, tc.wantError)
			}
			if strings.Contains(out.Error, "api key") {
				t.Fatalf("generation details leaked: %q", out.Error)
			}
		})
	}
}

func TestDiagnoseJSON_MissingFieldList(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{reply: report})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/diagnose", strings.NewReader(`{"issue_description":"  "}`)))

	var out errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{appliance.FieldApplianceType, appliance.FieldModelName, appliance.FieldIssueDescription}
	if diff := cmp.Diff(want, out.Missing); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnoseForm(t *testing.T) {
	form := url.Values{
		"appliance_type":    {"TV"},
		"model_name":        {"LG T70SPSF2Z"},
		"issue_description": {"No display"},
	}
	h := newTestHandler(t, &stubGenerator{reply: report})
	req := httptest.NewRequest(http.MethodPost, "/diagnose", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, successMessage) || strings.Count(body, "<section") != 2 {
		t.Fatalf("unexpected fragment %s", body)
	}
}

func TestDiagnoseForm_Warning(t *testing.T) {
	gen := &stubGenerator{reply: report}
	h := newTestHandler(t, gen)
	req := httptest.NewRequest(http.MethodPost, "/diagnose", strings.NewReader("model_name=X"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest || gen.calls != 0 {
		t.Fatalf("status = %d, calls = %d", rec.Code, gen.calls)
	}
	if !strings.Contains(rec.Body.String(), `class="alert alert-warning"`) || !strings.Contains(rec.Body.String(), appliance.MissingFieldsMessage) {
		t.Fatalf("unexpected fragment %s", rec.Body.String())
	}
}

func TestProfilesAndHealth(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))
	var profiles []profileSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(profiles) == 0 || profiles[0].Name != "classic" {
		t.Fatalf("unexpected profiles %+v", profiles)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagnose", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET /api/diagnose, got %d", rec.Code)
	}
}

func TestWithRoute(t *testing.T) {
	extra := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := newTestHandler(t, &stubGenerator{}, WithRoute("/mcp/jsonrpc", extra))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/jsonrpc", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected mounted handler, got %d", rec.Code)
	}
}
