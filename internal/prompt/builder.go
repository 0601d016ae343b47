package prompt

import (
	"strings"

	"github.com/roivaz/appliance-diag/internal/appliance"
)

const (
	placeholderAppliance = "{{.Appliance}}"
	placeholderModel     = "{{.Model}}"
	placeholderIssue     = "{{.Issue}}"
	placeholderErrorCode = "{{.ErrorCode}}"
)

var placeholders = []string{placeholderAppliance, placeholderModel, placeholderIssue, placeholderErrorCode}

const (
	noErrorCodeText    = "No specific error provided"
	inferApplianceText = "Not specified (infer the brand and appliance type from the model name)"
)

const structuredDirective = `Respond only with JSON of the form {"sections":[{"heading":"...","lines":["..."]}]}.
Use one section per topic, in the order listed above, and put each point in its own line entry.`

type Options struct {
	// Structured appends the JSON response directive.
	Structured bool
}

// Build renders the profile template for req. Substitution is single-pass,
// so placeholder syntax inside user text is left untouched.
func Build(req appliance.Request, p Profile, opts Options) string {
	applianceText := req.ApplianceType
	if applianceText == "" {
		applianceText = inferApplianceText
	}
	errorText := req.ErrorCode
	if errorText == "" {
		errorText = noErrorCodeText
	}

	r := strings.NewReplacer(
		placeholderAppliance, applianceText,
		placeholderModel, req.ModelName,
		placeholderIssue, req.IssueDescription,
		placeholderErrorCode, errorText,
	)
	out := strings.TrimSpace(r.Replace(p.Template))
	if opts.Structured {
		out += "\n\n" + structuredDirective
	}
	return out
}
