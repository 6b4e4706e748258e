package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rybarix/snaptail/internal/config"
	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/version"
)

func newUpgradeCommand(env *environment) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade snaptail to the latest release",
		Long: `Upgrade downloads the latest snaptail release from GitHub and
replaces the running binary with it. Use --check to only report whether a
newer release exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := logging.FromContext(cmd.Context())
			console := newConsole(cmd, cfg)

			u, err := env.newUpdater()
			if err != nil {
				return err
			}

			current := version.GetInfo().Version

			up, err := u.Check(cmd.Context(), current)
			if err != nil {
				return err
			}

			if up == nil {
				console.Printf("snaptail %s is up to date.", current)
				return nil
			}

			console.Printf("snaptail %s is available (current: %s).", up.Version, current)

			if checkOnly {
				return nil
			}

			logger.Info("applying update", slog.String("version", up.Version))

			if err := u.Apply(cmd.Context(), up); err != nil {
				return fmt.Errorf("upgrading to %s: %w", up.Version, err)
			}

			console.Printf("Upgraded to %s.", up.Version)

			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "only check for a newer release")

	return cmd
}
