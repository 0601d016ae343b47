package appliance

import (
	"fmt"
	"strings"
)

// Request carries the troubleshooting details submitted for one diagnosis.
type Request struct {
	ApplianceType    string `json:"appliance_type,omitempty"`
	ModelName        string `json:"model_name"`
	IssueDescription string `json:"issue_description"`
	ErrorCode        string `json:"error_code,omitempty"`
}

// RequestMode decides whether the appliance type must be supplied or may be
// inferred from the model name by the generator.
type RequestMode string

const (
	ModeApplianceRequired RequestMode = "required"
	ModeApplianceInferred RequestMode = "inferred"
)

const (
	FieldApplianceType    = "appliance_type"
	FieldModelName        = "model_name"
	FieldIssueDescription = "issue_description"
)

func ParseRequestMode(value string) (RequestMode, error) {
	switch RequestMode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeApplianceRequired, "":
		return ModeApplianceRequired, nil
	case ModeApplianceInferred:
		return ModeApplianceInferred, nil
	default:
		return "", fmt.Errorf("invalid request mode: %s (must be required or inferred)", value)
	}
}

// Normalize returns a copy with surrounding whitespace removed from every field.
func (r Request) Normalize() Request {
	return Request{
		ApplianceType:    strings.TrimSpace(r.ApplianceType),
		ModelName:        strings.TrimSpace(r.ModelName),
		IssueDescription: strings.TrimSpace(r.IssueDescription),
		ErrorCode:        strings.TrimSpace(r.ErrorCode),
	}
}

// Validate reports every required field that is blank under mode.
func (r Request) Validate(mode RequestMode) error {
	var missing []string
	if mode != ModeApplianceInferred && strings.TrimSpace(r.ApplianceType) == "" {
		missing = append(missing, FieldApplianceType)
	}
	if strings.TrimSpace(r.ModelName) == "" {
		missing = append(missing, FieldModelName)
	}
	if strings.TrimSpace(r.IssueDescription) == "" {
		missing = append(missing, FieldIssueDescription)
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
