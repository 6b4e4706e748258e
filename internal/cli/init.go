package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rybarix/snaptail/internal/config"
	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/venv"
)

func newInitCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the Python virtual environment for the API server",
		Long: `Init creates .venv in the current directory and installs
requirements.txt into it. An existing environment is left untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := logging.FromContext(cmd.Context())
			console := newConsole(cmd, cfg)

			if len(args) > 0 {
				console.Println("Warning: 'file' argument is ignored for 'init' command")
			}

			cwd, err := env.getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}

			e, err := venv.New(cwd, venv.Options{
				Dir:          cfg.VenvDir,
				Requirements: cfg.Requirements,
				Runner:       env.newRunner(logger),
				Console:      console,
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			return e.Init(cmd.Context())
		},
	}

	return cmd
}
