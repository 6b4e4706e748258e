package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rybarix/snaptail/internal/config"
	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/toolchain"
	"github.com/rybarix/snaptail/internal/venv"
)

func newDoctorCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that node, npm, python, and uvicorn are installed",
		Long: `Doctor looks up every external program snaptail runs and checks its
version. uvicorn is looked up in the project's virtual environment first.
The command fails when a required program is missing or too old.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := logging.FromContext(cmd.Context())
			console := newConsole(cmd, cfg)

			cwd, err := env.getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}

			r := env.newRunner(logger)

			pyenv, err := venv.New(cwd, venv.Options{Dir: cfg.VenvDir, Runner: r, Logger: logger})
			if err != nil {
				return err
			}

			reqs := toolchain.DefaultRequirements()
			for i := range reqs {
				if reqs[i].Name == "uvicorn" {
					reqs[i].Command = pyenv.Resolve("uvicorn")
				}
			}

			checker := &toolchain.Checker{Runner: r, LookPath: env.lookPath}
			reports := checker.Check(cmd.Context(), reqs)

			for _, rep := range reports {
				switch {
				case rep.Satisfied:
					console.Printf("ok      %s", rep)
				case rep.Requirement.Optional:
					console.Warnf("warning %s", rep)
				default:
					console.Errorf("missing %s", rep)
				}
			}

			if toolchain.AnyFailed(reports) {
				return &ExitError{Code: 1, Err: errors.New("required tools are missing or outdated")}
			}

			return nil
		},
	}

	return cmd
}
