package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/tui"
	"github.com/abdidvp/kraftgate/internal/domain"
)

func newFeedbackCmd(root *rootOptions) *cobra.Command {
	var (
		rec        domain.FeedbackRecord
		action     string
		reason     string
		path       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record an action taken on a violation",
		Long: "Append a fix, dismiss, suppress or escalate action to the feedback log. " +
			"The pattern's confidence and the detector's false-positive rate are updated and reported.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := domain.ParseFeedbackAction(action)
			if err != nil {
				return err
			}
			r, err := domain.ParseDismissalReason(reason)
			if err != nil {
				return err
			}
			rec.Action, rec.DismissalReason = a, r

			projectPath, err := projectArg([]string{path})
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

			outcome, err := svc.feedback.Record(cmd.Context(), projectPath, rec)
			if err != nil {
				return fmt.Errorf("feedback failed: %w", err)
			}
			if jsonOutput {
				return renderJSON(cmd, outcome)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderFeedback(outcome))
			return nil
		},
	}

	cmd.Flags().StringVar(&rec.ViolationID, "violation", "", "Violation id from a check report")
	cmd.Flags().StringVar(&rec.PatternID, "pattern", "", "Pattern id the violation was raised against")
	cmd.Flags().StringVar(&rec.DetectorID, "detector", "", "Detector id that produced the finding")
	cmd.Flags().StringVar(&action, "action", "", "Action taken (fix, dismiss, suppress, escalate)")
	cmd.Flags().StringVar(&reason, "reason", "", "Dismissal reason (false_positive, not_applicable, wont_fix, duplicate)")
	cmd.Flags().StringVar(&rec.Author, "author", "", "Who took the action")
	cmd.Flags().StringVar(&path, "path", ".", "Project path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("violation")
	_ = cmd.MarkFlagRequired("action")

	cmd.AddCommand(newFeedbackStatsCmd(root))
	return cmd
}

func newFeedbackStatsCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats [path]",
		Short: "Show per-detector feedback counts and false-positive rates",
		Args:  cobra.MaximumNArgs(1),
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

			detectors, err := svc.feedback.Detectors(cmd.Context(), projectPath)
			if err != nil {
				return fmt.Errorf("feedback stats failed: %w", err)
			}
			if jsonOutput {
				return renderJSON(cmd, detectors)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderDetectors(detectors))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
