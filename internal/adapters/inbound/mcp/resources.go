package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/kraftgate/internal/application"
)

const auditLatestURI = "kraftgate://audit/latest"

// registerResources registers all kraftgate MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string, svc Services) {
	s.AddResource(
		mcplib.NewResource(
			auditLatestURI,
			"Latest Audit",
			mcplib.WithResourceDescription("Latest health snapshot with trend, prediction and degradation alerts"),
			mcplib.WithMIMEType("application/json"),
		),
		handleAuditResource(projectPath, svc.Audit),
	)
}

func handleAuditResource(projectPath string, svc *application.AuditService) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		report, err := svc.Audit(ctx, projectPath, application.DefaultAuditLimit)
		if err != nil {
			return nil, fmt.Errorf("audit failed: %w", err)
		}

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling audit: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      auditLatestURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
