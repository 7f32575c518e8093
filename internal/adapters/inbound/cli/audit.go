package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/tui"
	"github.com/abdidvp/kraftgate/internal/application"
)

func newAuditCmd(root *rootOptions) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "audit [path]",
		Short: "Show health history, trend and degradation alerts",
		Long: "Read recorded health snapshots and report the latest score, trend direction, " +
			"a linear prediction and any degradation between consecutive runs.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive (got %d)", limit)
			}
			projectPath, err := projectArg(args)
			if err != nil {
				return err
			}
			logger, err := root.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			svc, err := openServices(projectPath, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			report, err := svc.audit.Audit(cmd.Context(), projectPath, limit)
			if err != nil {
				return fmt.Errorf("audit failed: %w", err)
			}
			if jsonOutput {
				return renderJSON(cmd, report)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderAudit(report))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", application.DefaultAuditLimit, "Number of most recent runs to include")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
