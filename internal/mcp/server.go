package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
}

// ToolDefinitions describes the schema of every tool the server can expose.
func ToolDefinitions() map[string]mcp.Tool {
	return map[string]mcp.Tool{
		"diagnose_appliance": mcp.NewTool("diagnose_appliance",
			mcp.WithDescription("Diagnose a home appliance fault. Returns probable causes with estimated repair costs, brand customer care contacts, turnaround time and spare parts information as ordered report sections."),
			mcp.WithString("appliance_type",
				mcp.Description("Kind of appliance (e.g., 'TV', 'Washing Machine'). Required unless the server infers it from the model name."),
			),
			mcp.WithString("model_name",
				mcp.Required(),
				mcp.Description("Brand and model identifier (e.g., 'LG T70SPSF2Z')"),
			),
			mcp.WithString("issue_description",
				mcp.Required(),
				mcp.Description("Free-text description of the symptoms"),
			),
			mcp.WithString("error_code",
				mcp.Description("Optional: error code shown by the appliance"),
			),
			mcp.WithString("profile",
				mcp.Description("Optional: prompt profile name (see list_profiles)"),
			),
		),
		"list_profiles": mcp.NewTool("list_profiles",
			mcp.WithDescription("List the prompt profiles available for diagnose_appliance, with their section headings."),
		),
	}
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		"appliance-diag",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	definitions := ToolDefinitions()
	for name, adapter := range cfg.ToolAdapters {
		tool, ok := definitions[name]
		if !ok {
			continue
		}
		mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return adapter.ToolAdapter(ctx, req)
		})
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
	}
}
