package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rybarix/snaptail/internal/config"
	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/preview"
	"github.com/rybarix/snaptail/internal/venv"
)

func newRunCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.jsx>",
		Short: "Preview a component with live reload",
		Long: `Run previews a .jsx component in the generated Vite project.

The file must export a component named App. It is copied to
.snaptail/src/App.jsx and copied again on every save. App receives an
apiUrl prop pointing at the uvicorn server started next to Vite.

Press Ctrl+C to stop both servers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := logging.FromContext(cmd.Context())
			console := newConsole(cmd, cfg)

			file := args[0]
			if !strings.HasSuffix(file, ".jsx") {
				console.Errorf("Error: The file must have a .jsx extension.")
				return &ExitError{Code: 1}
			}

			cwd, err := env.getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}

			r := env.newRunner(logger)

			pyenv, err := venv.New(cwd, venv.Options{Dir: cfg.VenvDir, Runner: r, Logger: logger})
			if err != nil {
				return err
			}

			session, err := preview.New(preview.Options{
				WorkDir:     cwd,
				ProjectDir:  cfg.ProjectDir,
				Template:    cfg.Template,
				Host:        cfg.Host,
				Port:        cfg.Port,
				APIFile:     cfg.APIFile,
				CORSOrigins: cfg.CORSOrigins,
				Uvicorn:     pyenv.Resolve("uvicorn"),
				Debounce:    cfg.Debounce,
				Runner:      r,
				Launcher:    env.newLauncher(cfg, console, logger),
				Console:     console,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			return session.Run(cmd.Context(), file)
		},
	}

	cmd.Flags().Duration("debounce", 0, "quiet period before syncing a change (0 syncs on every event)")

	return cmd
}
