package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/appliance-diag/internal/prompt"
)

type ProfileLister interface {
	Profiles() []prompt.Profile
}

type ListProfilesHandler struct {
	Service ProfileLister
}

type profileSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings,omitempty"`
	Render      string   `json:"render"`
}

func (h *ListProfilesHandler) ToolAdapter(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profiles := h.Service.Profiles()
	out := make([]profileSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileSummary{
			Name:        p.Name,
			Description: p.Description,
			Headings:    p.Headings,
			Render:      string(p.Render),
		})
	}

	response := struct {
		Profiles []profileSummary `json:"profiles"`
		Total    int              `json:"total_found"`
	}{Profiles: out, Total: len(out)}

	return mcp.NewToolResultText(string(mustMarshal(response))), nil
}
