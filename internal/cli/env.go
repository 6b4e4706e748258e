package cli

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	"github.com/rybarix/snaptail/internal/config"
	"github.com/rybarix/snaptail/internal/launch"
	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/preview"
	"github.com/rybarix/snaptail/internal/runner"
	"github.com/rybarix/snaptail/internal/upgrade"
)

// updater checks for and applies new releases. *upgrade.Updater satisfies it.
type updater interface {
	Check(ctx context.Context, current string) (*upgrade.Update, error)
	Apply(ctx context.Context, up *upgrade.Update) error
}

// environment holds the process-level collaborators commands use. Tests
// swap them to keep commands from spawning npm or python.
type environment struct {
	getwd       func() (string, error)
	lookPath    func(file string) (string, error)
	newRunner   func(logger *slog.Logger) runner.Runner
	newLauncher func(cfg *config.Config, console *logging.Console, logger *slog.Logger) preview.Launcher
	newUpdater  func() (updater, error)
}

func defaultEnvironment() *environment {
	return &environment{
		getwd:    os.Getwd,
		lookPath: exec.LookPath,
		newRunner: func(logger *slog.Logger) runner.Runner {
			return runner.New(logger)
		},
		newLauncher: func(cfg *config.Config, console *logging.Console, logger *slog.Logger) preview.Launcher {
			return launch.New(launch.Options{
				GracePeriod: cfg.GracePeriod,
				Console:     console,
				Logger:      logger,
			})
		},
		newUpdater: func() (updater, error) {
			return upgrade.New()
		},
	}
}
