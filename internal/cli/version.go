package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rybarix/snaptail/internal/output"
	"github.com/rybarix/snaptail/internal/version"
)

func newVersionCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display the version, git commit, build date, Go version, and platform.",
		Args:  cobra.NoArgs,
		// Override parent PersistentPreRunE: version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()

			if jsonOutput {
				data, err := output.Serialize(info, output.FormatJSON)
				if err != nil {
					return err
				}

				return output.NewStdoutWriter(cmd.OutOrStdout()).Write(data)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")

	return cmd
}
