package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-logr/logr"

	"github.com/roivaz/appliance-diag/internal/appliance"
	"github.com/roivaz/appliance-diag/internal/diagnosis"
	"github.com/roivaz/appliance-diag/internal/logging"
	"github.com/roivaz/appliance-diag/internal/prompt"
)

const (
	maxBodyBytes = 64 << 10

	successMessage    = "Diagnosis Report Generated Successfully!"
	generationMessage = "Could not generate the diagnosis right now. Please try again."
)

// Diagnoser is the part of diagnosis.Service the HTTP layer needs.
type Diagnoser interface {
	DiagnoseWithProfile(ctx context.Context, req appliance.Request, profile string) (diagnosis.Result, error)
	Profiles() []prompt.Profile
}

type diagnoseRequest struct {
	appliance.Request
	Profile string `json:"profile,omitempty"`
}

type diagnoseResponse struct {
	Message string           `json:"message"`
	Result  diagnosis.Result `json:"result"`
	HTML    string           `json:"html"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

type profileSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Marker      string   `json:"marker"`
	Headings    []string `json:"headings,omitempty"`
	Render      string   `json:"render"`
}

var alertTemplate = template.Must(template.New("alert").Parse(
	`<div class="alert alert-{{.Kind}}">{{.Message}}</div>
`))

type Handler struct {
	svc Diagnoser
	log logging.Logger
	mux *http.ServeMux
}

type Option func(*http.ServeMux)

// WithRoute mounts an additional handler, e.g. the MCP endpoint, on the
// same mux.
func WithRoute(pattern string, h http.Handler) Option {
	return func(mux *http.ServeMux) { mux.Handle(pattern, h) }
}

func NewHandler(svc Diagnoser, base logr.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc: svc,
		log: logging.New(base).WithName("web"),
		mux: http.NewServeMux(),
	}
	h.mux.HandleFunc("POST /api/diagnose", h.diagnoseJSON)
	h.mux.HandleFunc("POST /diagnose", h.diagnoseForm)
	h.mux.HandleFunc("GET /api/profiles", h.profiles)
	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	for _, opt := range opts {
		opt(h.mux)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) diagnoseJSON(w http.ResponseWriter, r *http.Request) {
	var in diagnoseRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be a JSON object"})
		return
	}

	res, err := h.svc.DiagnoseWithProfile(r.Context(), in.Request, in.Profile)
	if err != nil {
		status, body := h.classify(err)
		writeJSON(w, status, body)
		return
	}
	fragment, err := res.HTML()
	if err != nil {
		h.log.Error(err, "render failed", "profile", res.Profile)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not render the report"})
		return
	}
	writeJSON(w, http.StatusOK, diagnoseResponse{Message: successMessage, Result: res, HTML: fragment})
}

func (h *Handler) diagnoseForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeAlert(w, http.StatusBadRequest, "warning", "The form could not be read.")
		return
	}
	req := appliance.Request{
		ApplianceType:    r.PostForm.Get(appliance.FieldApplianceType),
		ModelName:        r.PostForm.Get(appliance.FieldModelName),
		IssueDescription: r.PostForm.Get(appliance.FieldIssueDescription),
		ErrorCode:        r.PostForm.Get("error_code"),
	}

	res, err := h.svc.DiagnoseWithProfile(r.Context(), req, r.PostForm.Get("profile"))
	if err != nil {
		status, body := h.classify(err)
		kind := "warning"
		if status >= http.StatusInternalServerError {
			kind = "error"
		}
		writeAlert(w, status, kind, body.Error)
		return
	}
	fragment, err := res.HTML()
	if err != nil {
		h.log.Error(err, "render failed", "profile", res.Profile)
		writeAlert(w, http.StatusInternalServerError, "error", "Could not render the report.")
		return
	}

	var b strings.Builder
	_ = alertTemplate.Execute(&b, map[string]string{"Kind": "success", "Message": successMessage})
	b.WriteString(fragment)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (h *Handler) profiles(w http.ResponseWriter, _ *http.Request) {
	profiles := h.svc.Profiles()
	out := make([]profileSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileSummary{
			Name:        p.Name,
			Description: p.Description,
			Marker:      string(p.Marker),
			Headings:    p.Headings,
			Render:      string(p.Render),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// classify maps pipeline errors onto a status code and a message that is
// safe to show; generation details stay in the log.
func (h *Handler) classify(err error) (int, errorResponse) {
	var verr *appliance.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorResponse{Error: verr.UserMessage(), Missing: verr.Missing}
	}
	h.log.Error(err, "diagnosis failed")
	return http.StatusBadGateway, errorResponse{Error: generationMessage}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAlert(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = alertTemplate.Execute(w, map[string]string{"Kind": kind, "Message": message})
}
