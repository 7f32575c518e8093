package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/tui"
	"github.com/abdidvp/kraftgate/internal/application"
	"github.com/abdidvp/kraftgate/internal/domain"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var (
		opts            application.CheckOptions
		jsonOutput      bool
		metricsTextfile string
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Run all gates and evaluate the policy",
		Long: "Evaluate the evidence snapshot through the rules evaluator and all six gates, " +
			"aggregate the results under the configured policy and record the run. " +
			"Exits non-zero when the policy fails.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			report, err := svc.check.Check(cmd.Context(), projectPath, opts)
			// Persist failures and interrupts still come with a report.
			if err != nil && report == nil {
				return fmt.Errorf("check failed: %w", err)
			}

			if jsonOutput {
				if rerr := renderJSON(cmd, report); rerr != nil {
					return rerr
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderCheckReport(report))
			}

			if metricsTextfile != "" {
				if werr := svc.metrics.WriteTextfile(metricsTextfile); werr != nil {
					return werr
				}
			}

			// The run was interrupted or could not be recorded.
			if err != nil {
				return err
			}
			if !report.Passed() {
				return fmt.Errorf("policy %s failed: %s", report.Policy.Policy, report.Policy.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "Policy preset overriding the configured one (strict, standard, lenient)")
	cmd.Flags().StringVar(&opts.EvidencePath, "evidence", "", "Evidence snapshot (default <path>/"+domain.DefaultEvidencePath+")")
	cmd.Flags().BoolVar(&opts.NoPersist, "no-persist", false, "Evaluate without recording the run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file")

	return cmd
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
