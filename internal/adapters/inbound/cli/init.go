package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/config"
	"github.com/abdidvp/kraftgate/internal/domain"
)

func newInitCmd() *cobra.Command {
	var (
		preset string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .kraftgate.yaml configuration file",
		Long:  "Create a .kraftgate.yaml with the defaults of the chosen policy preset.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(domain.ValidPresets, preset) || preset == domain.PresetCustom {
				return fmt.Errorf("unknown preset %q (valid: strict, standard, lenient)", preset)
			}
			projectPath, err := projectArg(args)
			if err != nil {
				return err
			}

			cfg := domain.DefaultConfig()
			cfg.Policy.Preset = preset
			if _, err := config.Write(projectPath, cfg, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", domain.PresetStandard, "Policy preset (strict, standard, lenient)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .kraftgate.yaml")

	return cmd
}
