package cli_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdidvp/kraftgate/internal/adapters/inbound/cli"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/evidence"
	"github.com/abdidvp/kraftgate/internal/domain"
)

// newProject writes an evidence snapshot that passes the standard policy
// and returns the project directory.
func newProject(t *testing.T) string {
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
		Constraints:      []domain.ConstraintEvidence{{ID: "no-cycles"}},
		SecurityFindings: []domain.SecurityFinding{{File: "pkg/b.go", Line: 4, Severity: domain.FindingLow}},
		Coverage:         &domain.CoverageEvidence{Covered: 9, Uncovered: 1, Total: 10},
	}))
	return dir
}

// run executes the root command and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
