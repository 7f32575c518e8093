package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdidvp/kraftgate/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	logLevel  string
	logFormat string
}

// logger builds the process logger. Logs go to stderr so stdout stays
// parseable for --json output.
func (o *rootOptions) logger(w io.Writer) (*slog.Logger, error) {
	return logging.New(w, logging.Config{
		Level:   o.logLevel,
		Format:  o.logFormat,
		Service: "kraftgate",
	})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "kraftgate",
		Short: "Quality gates over pattern evidence",
		Long: "kraftgate turns detector evidence into located violations, runs six quality gates, " +
			"aggregates them under a policy and tracks feedback and health across runs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newFeedbackCmd(opts))
	cmd.AddCommand(newAuditCmd(opts))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the root command and reports a failure on stderr. An
// interrupt or SIGTERM cancels the command's context, so a running check
// stops starting gates and still reports.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
