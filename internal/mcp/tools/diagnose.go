package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/appliance-diag/internal/appliance"
	"github.com/roivaz/appliance-diag/internal/diagnosis"
	"github.com/roivaz/appliance-diag/internal/report"
)

const generationFailedMessage = "could not generate the diagnosis, try again later"

type DiagnoseService interface {
	DiagnoseWithProfile(ctx context.Context, req appliance.Request, profile string) (diagnosis.Result, error)
}

type DiagnoseHandler struct {
	Service DiagnoseService
}

type diagnoseResponse struct {
	Status     diagnosis.Status `json:"status"`
	Profile    string           `json:"profile"`
	Structured bool             `json:"structured"`
	Sections   []report.Section `json:"sections,omitempty"`
	Report     string           `json:"report"`
}

func (h *DiagnoseHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	request := appliance.Request{
		ApplianceType:    stringArgument(args, appliance.FieldApplianceType),
		ModelName:        stringArgument(args, appliance.FieldModelName),
		IssueDescription: stringArgument(args, appliance.FieldIssueDescription),
		ErrorCode:        stringArgument(args, "error_code"),
	}

	res, err := h.Service.DiagnoseWithProfile(ctx, request, stringArgument(args, "profile"))
	if err != nil {
		var verr *appliance.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(verr.Error()), nil
		}
		return mcp.NewToolResultError(generationFailedMessage), nil
	}

	response := diagnoseResponse{
		Status:     res.Status,
		Profile:    res.Profile,
		Structured: res.Structured,
		Sections:   res.Sections,
		Report:     res.Text(),
	}
	return mcp.NewToolResultText(string(mustMarshal(response))), nil
}
