// Package scaffold creates and maintains the generated front-end project a
// preview runs in.
//
// The project is produced once by the Vite generator, stripped of the
// template files snaptail replaces, and moved into place. Later runs reuse
// it as-is; only the entry module and the API shim are rewritten.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/runner"
)

// Paths inside a generated project.
const (
	SrcDir    = "src"
	AppFile   = "App.jsx"
	EntryFile = "main.jsx"
	ShimFile  = "server_snaptail.py"
)

// prunedFiles are generated template files snaptail does not want, relative
// to the project root.
var prunedFiles = []string{
	"eslint.config.js",
	filepath.Join(SrcDir, "App.css"),
	filepath.Join(SrcDir, "main.css"),
	filepath.Join(SrcDir, "index.css"),
	filepath.Join(SrcDir, EntryFile),
	filepath.Join(SrcDir, AppFile),
}

// prunedDirs are generated template directories removed recursively.
var prunedDirs = []string{
	filepath.Join(SrcDir, "assets"),
}

// Options configures a Scaffolder.
type Options struct {
	// Dir is the project directory.
	Dir string

	// Template is the Vite template name (e.g. "react").
	Template string

	// Runner executes the project generator.
	Runner runner.Runner

	// Console receives user-facing status lines.
	Console *logging.Console

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Now supplies the timestamp for the temporary directory name.
	Now func() time.Time
}

// Scaffolder owns one project directory.
type Scaffolder struct {
	dir      string
	template string
	runner   runner.Runner
	console  *logging.Console
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Scaffolder. Dir is made absolute against the working
// directory.
func New(opts Options) (*Scaffolder, error) {
	if opts.Dir == "" {
		return nil, errors.New("project directory must not be empty")
	}

	if opts.Runner == nil {
		return nil, errors.New("runner must not be nil")
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory %q: %w", opts.Dir, err)
	}

	s := &Scaffolder{
		dir:      dir,
		template: opts.Template,
		runner:   opts.Runner,
		console:  opts.Console,
		logger:   opts.Logger,
		now:      opts.Now,
	}

	if s.template == "" {
		s.template = "react"
	}

	if s.console == nil {
		s.console = logging.NewConsole(nil, nil, false)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

// Dir returns the absolute project directory.
func (s *Scaffolder) Dir() string {
	return s.dir
}

// AppPath returns the path the watched component is synced to.
func (s *Scaffolder) AppPath() string {
	return filepath.Join(s.dir, SrcDir, AppFile)
}

// EntryPath returns the path of the generated entry module.
func (s *Scaffolder) EntryPath() string {
	return filepath.Join(s.dir, SrcDir, EntryFile)
}

// ShimPath returns the path of the generated API shim.
func (s *Scaffolder) ShimPath() string {
	return filepath.Join(s.dir, ShimFile)
}

// Ensure makes sure the project directory exists. An existing directory is
// reused without running the generator. It reports whether a new project
// was generated.
func (s *Scaffolder) Ensure(ctx context.Context) (bool, error) {
	if info, err := os.Stat(s.dir); err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("project path %s exists and is not a directory", s.dir)
		}

		s.console.Printf("%s directory already exists at %s", filepath.Base(s.dir), s.dir)
		s.console.Println("Using existing directory...")

		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking project directory: %w", err)
	}

	parent := filepath.Dir(s.dir)
	tmpName := "snaptail_" + strconv.FormatInt(s.now().UnixNano(), 10)
	tmpDir := filepath.Join(parent, tmpName)

	s.logger.Info("generating project",
		slog.String("dir", s.dir),
		slog.String("template", s.template),
	)

	if err := s.generate(ctx, parent, tmpName); err != nil {
		_ = os.RemoveAll(tmpDir)
		return false, err
	}

	if err := prune(tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return false, err
	}

	if err := os.Rename(tmpDir, s.dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return false, fmt.Errorf("moving project into place: %w", err)
	}

	return true, nil
}

// generate runs the Vite generator for name inside parent.
func (s *Scaffolder) generate(ctx context.Context, parent, name string) error {
	cmd := runner.Command{
		Name: "npm",
		Args: []string{"create", "vite@latest", name, "--", "--template", s.template},
		Dir:  parent,
	}

	if _, err := s.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("generating project: %w", err)
	}

	info, err := os.Stat(filepath.Join(parent, name))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("generating project: %s did not create %s", cmd.String(), name)
	}

	return nil
}

// prune removes template files snaptail replaces. Missing entries are fine.
func prune(root string) error {
	for _, f := range prunedFiles {
		if err := os.Remove(filepath.Join(root, f)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", f, err)
		}
	}

	for _, d := range prunedDirs {
		if err := os.RemoveAll(filepath.Join(root, d)); err != nil {
			return fmt.Errorf("removing %s: %w", d, err)
		}
	}

	return nil
}
