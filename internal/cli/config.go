package cli

import (
	"github.com/spf13/cobra"

	"github.com/rybarix/snaptail/internal/config"
	"github.com/rybarix/snaptail/internal/output"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Config prints the configuration snaptail would run with, after
merging defaults, snaptail.yaml, SNAPTAIL_* environment variables, and
flags. The output is valid snaptail.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())

			data, err := output.Serialize(cfg, output.FormatYAML)
			if err != nil {
				return err
			}

			return output.NewStdoutWriter(cmd.OutOrStdout()).Write(data)
		},
	}

	return cmd
}
