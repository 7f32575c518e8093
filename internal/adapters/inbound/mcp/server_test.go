package mcp_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpadapter "github.com/abdidvp/kraftgate/internal/adapters/inbound/mcp"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/config"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/evidence"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/source"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/store"
	"github.com/abdidvp/kraftgate/internal/application"
	"github.com/abdidvp/kraftgate/internal/domain"
)

func newServer(t *testing.T) *server.MCPServer {
	t.Helper()
	dir := t.TempDir()

	var locs []domain.Location
	for i := 1; i <= 10; i++ {
		locs = append(locs, domain.Location{File: "pkg/a.go", Line: i})
	}
	require.NoError(t, evidence.Save(filepath.Join(dir, domain.DefaultEvidencePath), &domain.Evidence{
		Language: "go",
		Patterns: []domain.PatternEvidence{{
			PatternID:   "camelCase",
			DetectorID:  "naming",
			Category:    "naming",
			Confidence:  0.95,
			Status:      domain.PatternApproved,
			InCallGraph: true,
			Locations:   locs,
		}},
		SecurityFindings: []domain.SecurityFinding{{File: "pkg/b.go", Line: 4, Severity: domain.FindingLow}},
		Coverage:         &domain.CoverageEvidence{Covered: 9, Uncovered: 1, Total: 10},
	}))

	st, err := store.Open(store.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.New()
	return mcpadapter.NewKraftgateMCPServer(dir, "test", mcpadapter.Services{
		Check:    application.NewCheckService(cfg, evidence.New(), source.New(), gitinfo.New(), st),
		Feedback: application.NewFeedbackService(cfg, st),
		Audit:    application.NewAuditService(cfg, st),
	})
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %q should be registered", name)

	var req mcplib.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestMCPServerHasTools(t *testing.T) {
	s := newServer(t)

	tools := s.ListTools()
	expectedTools := []string{
		"kraftgate_check",
		"kraftgate_feedback",
		"kraftgate_audit",
	}
	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}
	assert.Len(t, tools, len(expectedTools))
}

func TestCheckTool_ReturnsReport(t *testing.T) {
	s := newServer(t)

	res := callTool(t, s, "kraftgate_check", map[string]any{})
	require.False(t, res.IsError, text(t, res))

	var report domain.CheckReport
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &report))
	assert.NotEmpty(t, report.RunID)
	assert.True(t, report.Persisted)
	assert.NotEmpty(t, report.Gates)
	assert.Equal(t, domain.PresetStandard, report.Policy.Policy)
}

func TestCheckTool_UnknownPolicy(t *testing.T) {
	s := newServer(t)

	res := callTool(t, s, "kraftgate_check", map[string]any{"policy": "paranoid"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "check failed")
}

func TestFeedbackTool_AdjustsConfidence(t *testing.T) {
	s := newServer(t)

	res := callTool(t, s, "kraftgate_feedback", map[string]any{
		"violation": "v-1",
		"pattern":   "camelCase",
		"detector":  "naming",
		"action":    "fix",
		"author":    "dev",
	})
	require.False(t, res.IsError, text(t, res))

	var outcome domain.FeedbackOutcome
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &outcome))
	assert.False(t, outcome.Duplicate)
	assert.Greater(t, outcome.Confidence, 0.5)
}

func TestFeedbackTool_RejectsBadInput(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing violation", map[string]any{"action": "fix", "pattern": "p"}},
		{"unknown action", map[string]any{"violation": "v", "pattern": "p", "action": "ignore"}},
		{"unknown reason", map[string]any{"violation": "v", "pattern": "p", "action": "dismiss", "reason": "bored"}},
		{"reason without dismiss", map[string]any{"violation": "v", "pattern": "p", "action": "fix", "reason": "wont_fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, "kraftgate_feedback", tt.args)
			assert.True(t, res.IsError)
		})
	}
}

func TestAuditTool_AfterCheck(t *testing.T) {
	s := newServer(t)

	callTool(t, s, "kraftgate_check", map[string]any{})
	res := callTool(t, s, "kraftgate_audit", map[string]any{"limit": 5.0})
	require.False(t, res.IsError, text(t, res))

	var report domain.AuditReport
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &report))
	require.NotNil(t, report.Latest)
	assert.Len(t, report.History, 1)
}

func TestAuditTool_RejectsNonPositiveLimit(t *testing.T) {
	s := newServer(t)

	res := callTool(t, s, "kraftgate_audit", map[string]any{"limit": 0.0})
	assert.True(t, res.IsError)
}
