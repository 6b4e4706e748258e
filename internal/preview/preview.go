// Package preview runs a complete preview session: it prepares the
// generated project, keeps the component in sync, and serves the bundler
// dev server next to the API server until interrupted.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rybarix/snaptail/internal/filesync"
	"github.com/rybarix/snaptail/internal/launch"
	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/runner"
	"github.com/rybarix/snaptail/internal/scaffold"
	"github.com/rybarix/snaptail/internal/watch"
)

// Launcher runs a long-lived server process until it exits or ctx is
// cancelled. *launch.Launcher satisfies it.
type Launcher interface {
	Run(ctx context.Context, spec launch.Spec) error
}

// Options configures a Session.
type Options struct {
	// WorkDir is the directory the component and API files are resolved
	// against. Defaults to the process working directory.
	WorkDir string

	// ProjectDir is the generated project directory.
	ProjectDir string

	// Template is the Vite template used when generating the project.
	Template string

	// Host and Port address the API server.
	Host string
	Port int

	// APIFile is the routes module loaded by the API shim.
	APIFile string

	// CORSOrigins are allowed by the API shim.
	CORSOrigins []string

	// Uvicorn is the uvicorn executable. Defaults to "uvicorn" on PATH.
	Uvicorn string

	// Debounce is passed to the watcher. Zero syncs once per event.
	Debounce time.Duration

	Runner   runner.Runner
	Launcher Launcher
	Console  *logging.Console
	Logger   *slog.Logger
}

// Session is one preview run.
type Session struct {
	opts     Options
	scaffold *scaffold.Scaffolder
	console  *logging.Console
	logger   *slog.Logger
}

// New validates opts and creates a Session.
func New(opts Options) (*Session, error) {
	if opts.Runner == nil {
		return nil, errors.New("runner must not be nil")
	}

	if opts.Launcher == nil {
		return nil, errors.New("launcher must not be nil")
	}

	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}

	workDir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	opts.WorkDir = workDir

	if opts.ProjectDir == "" {
		opts.ProjectDir = ".snaptail"
	}

	if !filepath.IsAbs(opts.ProjectDir) {
		opts.ProjectDir = filepath.Join(workDir, opts.ProjectDir)
	}

	if opts.APIFile == "" {
		opts.APIFile = "api.py"
	}

	if !filepath.IsAbs(opts.APIFile) {
		opts.APIFile = filepath.Join(workDir, opts.APIFile)
	}

	if opts.Host == "" {
		opts.Host = "0.0.0.0"
	}

	if opts.Port == 0 {
		opts.Port = 9000
	}

	if opts.Uvicorn == "" {
		opts.Uvicorn = "uvicorn"
	}

	if opts.Console == nil {
		opts.Console = logging.NewConsole(nil, nil, false)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	sc, err := scaffold.New(scaffold.Options{
		Dir:      opts.ProjectDir,
		Template: opts.Template,
		Runner:   opts.Runner,
		Console:  opts.Console,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		opts:     opts,
		scaffold: sc,
		console:  opts.Console,
		logger:   opts.Logger,
	}, nil
}

// ProjectDir returns the absolute generated project directory.
func (s *Session) ProjectDir() string {
	return s.scaffold.Dir()
}

// Run prepares the project for file and serves it until the dev server
// exits or ctx is cancelled. file is resolved against the working
// directory.
func (s *Session) Run(ctx context.Context, file string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if _, err := s.scaffold.Ensure(ctx); err != nil {
		return err
	}

	if err := s.scaffold.WriteEntry(s.opts.Host, s.opts.Port); err != nil {
		return err
	}

	if err := s.scaffold.WriteAPIShim(); err != nil {
		return err
	}

	src := file
	if !filepath.IsAbs(src) {
		src = filepath.Join(s.opts.WorkDir, file)
	}

	syncer := filesync.New(src, s.scaffold.AppPath(), s.logger)

	if _, err := syncer.Sync(); err != nil {
		return fmt.Errorf("copying component: %w", err)
	}

	handle, err := watch.Start(ctx, watch.Options{
		Path:     src,
		Debounce: s.opts.Debounce,
		Logger:   s.logger,
		Console:  s.console,
	}, func(string) error {
		change, err := syncer.Sync()
		if err != nil {
			return err
		}

		s.logger.Info("component synced",
			slog.String("file", filepath.Base(src)),
			slog.String("change", change.String()),
		)

		return nil
	})
	if err != nil {
		return err
	}

	defer handle.Wait()

	s.install(ctx)

	return s.serve(ctx, cancel)
}

// install runs npm install in the project. A failure is reported and the
// session goes on; the dev server surfaces anything still missing.
func (s *Session) install(ctx context.Context) {
	cmd := runner.Command{
		Name: "npm",
		Args: []string{"i", "--prefix", s.scaffold.Dir()},
	}

	if _, err := s.opts.Runner.Run(ctx, cmd); err != nil {
		s.logger.Warn("installing packages failed", slog.String("error", err.Error()))
		s.console.Warnf("Warning: %v", err)
	}
}

// serve runs the API server in the background and the dev server in the
// foreground. When the dev server returns, the API server is stopped.
func (s *Session) serve(ctx context.Context, cancel context.CancelFunc) error {
	var g errgroup.Group

	api := s.APISpec()

	g.Go(func() error {
		if err := s.opts.Launcher.Run(ctx, api); err != nil {
			s.logger.Error("API server failed", slog.String("error", err.Error()))
			s.console.Errorf("Error: %v", err)
		}

		return nil
	})

	err := s.opts.Launcher.Run(ctx, s.DevSpec())

	cancel()
	_ = g.Wait()

	if err != nil {
		return fmt.Errorf("dev server: %w", err)
	}

	return nil
}

// DevSpec describes the bundler dev server.
func (s *Session) DevSpec() launch.Spec {
	return launch.Spec{
		Label:   "vite",
		Command: "npm",
		Args:    []string{"run", "dev"},
		Dir:     s.scaffold.Dir(),
	}
}

// APISpec describes the API server. It runs from the working directory so
// uvicorn's reloader picks up edits to the routes module.
func (s *Session) APISpec() launch.Spec {
	return launch.Spec{
		Label:   "api",
		Title:   "Uvicorn server",
		Command: s.opts.Uvicorn,
		Args: []string{
			"server_snaptail:app",
			"--reload",
			"--host", s.opts.Host,
			"--port", strconv.Itoa(s.opts.Port),
			"--app-dir", s.scaffold.Dir(),
		},
		Dir: s.opts.WorkDir,
		Env: scaffold.ShimEnv(s.opts.APIFile, s.opts.CORSOrigins),
	}
}
