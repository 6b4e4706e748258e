// Package venv manages the Python virtual environment the API server runs
// in.
package venv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/runner"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultDir          = ".venv"
	DefaultRequirements = "requirements.txt"
	DefaultPython       = "python"
)

// Options configures an Environment.
type Options struct {
	// Dir is the virtual environment directory, relative to the project
	// root unless absolute.
	Dir string

	// Requirements is the pip requirements file, relative to the project
	// root unless absolute.
	Requirements string

	// Python is the interpreter used to create the environment.
	Python string

	Runner  runner.Runner
	Console *logging.Console
	Logger  *slog.Logger
}

// Environment is a virtual environment rooted in a project directory.
type Environment struct {
	root         string
	dir          string
	requirements string
	python       string
	goos         string

	runner  runner.Runner
	console *logging.Console
	logger  *slog.Logger
}

// New returns the environment for the project rooted at root.
func New(root string, opts Options) (*Environment, error) {
	if opts.Runner == nil {
		return nil, errors.New("runner must not be nil")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root %q: %w", root, err)
	}

	e := &Environment{
		root:         abs,
		dir:          resolve(abs, opts.Dir, DefaultDir),
		requirements: resolve(abs, opts.Requirements, DefaultRequirements),
		python:       opts.Python,
		goos:         runtime.GOOS,
		runner:       opts.Runner,
		console:      opts.Console,
		logger:       opts.Logger,
	}

	if e.python == "" {
		e.python = DefaultPython
	}

	if e.console == nil {
		e.console = logging.NewConsole(nil, nil, false)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e, nil
}

func resolve(root, p, def string) string {
	if p == "" {
		p = def
	}

	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(root, p)
}

// Dir returns the absolute environment directory.
func (e *Environment) Dir() string {
	return e.dir
}

// BinDir returns the directory holding the environment's executables.
func (e *Environment) BinDir() string {
	if e.goos == "windows" {
		return filepath.Join(e.dir, "Scripts")
	}

	return filepath.Join(e.dir, "bin")
}

// Executable returns the path of name inside BinDir.
func (e *Environment) Executable(name string) string {
	if e.goos == "windows" {
		name += ".exe"
	}

	return filepath.Join(e.BinDir(), name)
}

// Exists reports whether the environment directory is present.
func (e *Environment) Exists() bool {
	_, err := os.Stat(e.dir)
	return err == nil
}

// Resolve returns the environment's copy of name when it exists, otherwise
// name itself so the caller falls back to PATH.
func (e *Environment) Resolve(name string) string {
	p := e.Executable(name)
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p
	}

	return name
}

// Init creates the environment and installs the requirements file into it.
// An existing environment is left untouched and no command runs.
func (e *Environment) Init(ctx context.Context) error {
	if e.Exists() {
		e.console.Println("Virtual environment already exists.")
		return nil
	}

	e.console.Println("Creating virtual environment...")

	create := runner.Command{
		Name: e.python,
		Args: []string{"-m", "venv", e.dir},
		Dir:  e.root,
	}

	if _, err := e.runner.Run(ctx, create); err != nil {
		return fmt.Errorf("creating virtual environment: %w", err)
	}

	if _, err := os.Stat(e.requirements); errors.Is(err, fs.ErrNotExist) {
		e.console.Warnf("Warning: %s not found, skipping dependency install", filepath.Base(e.requirements))
		e.logger.Warn("requirements file missing", slog.String("path", e.requirements))

		return nil
	}

	install := runner.Command{
		Name: e.Executable("pip"),
		Args: []string{"install", "-r", e.requirements},
		Dir:  e.root,
	}

	if _, err := e.runner.Run(ctx, install); err != nil {
		return fmt.Errorf("installing dependencies: %w", err)
	}

	e.console.Println("Virtual environment created and dependencies installed.")

	return nil
}
