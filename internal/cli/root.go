// Package cli implements the cobra command tree for snaptail.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rybarix/snaptail/internal/config"
	"github.com/rybarix/snaptail/internal/logging"
)

// ExitError wraps an error with a specific process exit code. An ExitError
// without Err has already been reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it until it finishes or the process
// is interrupted, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	code := 1

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Err == nil {
			return code
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)

	return code
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultEnvironment())
}

func newRootCommand(env *environment) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "snaptail",
		Short: "Preview a React component with a live API server",
		Long: `snaptail runs a single .jsx component in a throwaway Vite React project.

It generates the project once into .snaptail/, copies your component into
it, and keeps the copy in sync while you edit. The Vite dev server runs
alongside a uvicorn API server that serves the FastAPI router defined in
api.py, so the component can call it through its apiUrl prop.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("configFile", cfg.ConfigFile),
				slog.Int("port", cfg.Port),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: snaptail.yaml)")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.IntP("port", "p", config.DefaultPort, "port number for the API server")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newInitCommand(env),
		newRunCommand(env),
		newDoctorCommand(env),
		newConfigCommand(),
		newUpgradeCommand(env),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}

// newConsole returns the console for user-facing output of cmd.
func newConsole(cmd *cobra.Command, cfg *config.Config) *logging.Console {
	return logging.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), !cfg.NoColor)
}
