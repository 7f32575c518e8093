package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/kraftgate/internal/application"
	"github.com/abdidvp/kraftgate/internal/domain"
)

// registerTools registers all kraftgate MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, svc Services) {
	// 1. kraftgate_check
	s.AddTool(
		mcplib.NewTool("kraftgate_check",
			mcplib.WithDescription("Evaluate the project's evidence through all gates and return the check report as JSON"),
			mcplib.WithString("policy",
				mcplib.Description("Policy preset overriding the configured one (strict, standard, lenient)"),
				mcplib.Enum(domain.PresetStrict, domain.PresetStandard, domain.PresetLenient),
			),
			mcplib.WithBoolean("no_persist",
				mcplib.Description("Evaluate without writing the run to the store"),
			),
		),
		handleCheck(projectPath, svc.Check),
	)

	// 2. kraftgate_feedback
	s.AddTool(
		mcplib.NewTool("kraftgate_feedback",
			mcplib.WithDescription("Record a developer action on a violation and return the updated confidence and false-positive state"),
			mcplib.WithString("violation",
				mcplib.Required(),
				mcplib.Description("Violation id from a check report"),
			),
			mcplib.WithString("pattern",
				mcplib.Description("Pattern id the violation was raised against"),
			),
			mcplib.WithString("detector",
				mcplib.Description("Detector id that produced the finding"),
			),
			mcplib.WithString("action",
				mcplib.Required(),
				mcplib.Description("Action taken on the violation"),
				mcplib.Enum(string(domain.ActionFix), string(domain.ActionDismiss), string(domain.ActionSuppress), string(domain.ActionEscalate)),
			),
			mcplib.WithString("reason",
				mcplib.Description("Dismissal reason, only valid with action=dismiss"),
				mcplib.Enum(string(domain.ReasonFalsePositive), string(domain.ReasonNotApplicable), string(domain.ReasonWontFix), string(domain.ReasonDuplicate)),
			),
			mcplib.WithString("author",
				mcplib.Description("Who took the action"),
			),
		),
		handleFeedback(projectPath, svc.Feedback),
	)

	// 3. kraftgate_audit
	s.AddTool(
		mcplib.NewTool("kraftgate_audit",
			mcplib.WithDescription("Return the health time series with trend prediction, degradation alerts and anomalies"),
			mcplib.WithNumber("limit",
				mcplib.Description(fmt.Sprintf("Number of most recent runs to include (default %d)", application.DefaultAuditLimit)),
			),
		),
		handleAudit(projectPath, svc.Audit),
	)
}

func handleCheck(projectPath string, svc *application.CheckService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		opts := application.CheckOptions{
			Policy:    request.GetString("policy", ""),
			NoPersist: request.GetBool("no_persist", false),
		}

		report, err := svc.Check(ctx, projectPath, opts)
		switch {
		case err != nil && report != nil:
			// Interrupted or not recorded; the report is still complete.
			res, jerr := jsonResult(report)
			if jerr != nil {
				return nil, jerr
			}
			res.Content = append(res.Content, mcplib.NewTextContent(fmt.Sprintf("warning: %v", err)))
			return res, nil
		case err != nil:
			return errorResult(fmt.Sprintf("check failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleFeedback(projectPath string, svc *application.FeedbackService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		violation, err := request.RequireString("violation")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		rawAction, err := request.RequireString("action")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		action, err := domain.ParseFeedbackAction(rawAction)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		reason, err := domain.ParseDismissalReason(request.GetString("reason", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}

		rec := domain.FeedbackRecord{
			ViolationID:     violation,
			PatternID:       request.GetString("pattern", ""),
			DetectorID:      request.GetString("detector", ""),
			Action:          action,
			DismissalReason: reason,
			Author:          request.GetString("author", ""),
		}
		outcome, err := svc.Record(ctx, projectPath, rec)
		if err != nil {
			return errorResult(fmt.Sprintf("feedback failed: %v", err)), nil
		}
		return jsonResult(outcome)
	}
}

func handleAudit(projectPath string, svc *application.AuditService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		limit := int(request.GetFloat("limit", float64(application.DefaultAuditLimit)))
		if limit <= 0 {
			return errorResult(fmt.Sprintf("limit must be positive (got %d)", limit)), nil
		}
		report, err := svc.Audit(ctx, projectPath, limit)
		if err != nil {
			return errorResult(fmt.Sprintf("audit failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

// jsonResult marshals v to indented JSON and wraps it in a tool result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result flagged as an error.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
