package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/kraftgate/internal/application"
)

// Services are the application services behind the MCP tools. All three
// share one store, so a client sees its own feedback on the next check.
type Services struct {
	Check    *application.CheckService
	Feedback *application.FeedbackService
	Audit    *application.AuditService
}

// NewKraftgateMCPServer creates a new MCP server with all kraftgate tools and
// resources registered. The projectPath is the root directory of the project
// being enforced.
func NewKraftgateMCPServer(projectPath, version string, svc Services) *server.MCPServer {
	s := server.NewMCPServer(
		"kraftgate",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, svc)
	registerResources(s, projectPath, svc)

	return s
}
