package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/appliance-diag/internal/diagnosis"
	"github.com/roivaz/appliance-diag/internal/mcp/tools"
)

const EndpointPath = "/mcp/jsonrpc"

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
}

func DefaultConfig(svc *diagnosis.Service) Config {
	return Config{
		ToolAdapters: map[string]ToolAdapter{
			"diagnose_appliance": &tools.DiagnoseHandler{Service: svc},
			"list_profiles":      &tools.ListProfilesHandler{Service: svc},
		},
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath(EndpointPath),
			server.WithStateLess(true),
		},
	}
}
