// Package launch runs the long-lived servers of a preview: the bundler dev
// server and the API server. Output is streamed line by line to the console
// and interruption follows a terminate, wait, kill sequence.
package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rybarix/snaptail/internal/logging"
	"github.com/rybarix/snaptail/internal/runner"
)

// DefaultGracePeriod is how long a process may take to exit after a
// termination request before it is killed.
const DefaultGracePeriod = 5 * time.Second

const maxLineSize = 1 << 20

// Spec describes a server process.
type Spec struct {
	// Label prefixes every output line, e.g. "vite" or "api".
	Label string

	// Title names the process in status messages. Defaults to "Process".
	Title string

	Command string
	Args    []string
	Dir     string
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

func (s Spec) commandLine() string {
	return strings.TrimSpace(s.Command + " " + strings.Join(s.Args, " "))
}

func (s Spec) title() string {
	if s.Title == "" {
		return "Process"
	}

	return s.Title
}

// Options configures a Launcher.
type Options struct {
	// GracePeriod bounds the wait between termination request and kill.
	GracePeriod time.Duration

	// Console receives process output and status lines.
	Console *logging.Console

	// Logger is used for structured logging.
	Logger *slog.Logger
}

// Launcher starts server processes.
type Launcher struct {
	grace   time.Duration
	console *logging.Console
	logger  *slog.Logger
}

// New creates a Launcher. A zero GracePeriod uses DefaultGracePeriod.
func New(opts Options) *Launcher {
	l := &Launcher{
		grace:   opts.GracePeriod,
		console: opts.Console,
		logger:  opts.Logger,
	}

	if l.grace <= 0 {
		l.grace = DefaultGracePeriod
	}

	if l.console == nil {
		l.console = logging.NewConsole(nil, nil, false)
	}

	if l.logger == nil {
		l.logger = slog.Default()
	}

	return l
}

// GracePeriod returns the configured grace period.
func (l *Launcher) GracePeriod() time.Duration {
	return l.grace
}

// Run starts the process and blocks until it exits or ctx is cancelled.
//
// On cancellation the process group receives a termination request. If it
// has not exited when the grace period elapses it is killed. A process that
// stops because of cancellation yields a nil error; a process that exits on
// its own with a non-zero status yields a *runner.ExitError.
func (l *Launcher) Run(ctx context.Context, spec Spec) error {
	if spec.Command == "" {
		return errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir

	if len(spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}

	setProcessGroup(cmd)

	var (
		killMu    sync.Mutex
		killTimer *time.Timer
		cancelled time.Time
	)

	cmd.Cancel = func() error {
		l.console.Printf("\n%s interrupted by user. Stopping...", spec.title())

		killMu.Lock()
		cancelled = time.Now()
		killTimer = time.AfterFunc(l.grace, func() {
			l.logger.Warn("process did not exit in time, killing",
				slog.String("cmd", spec.commandLine()),
				slog.Duration("grace", l.grace),
			)
			kill(cmd)
		})
		killMu.Unlock()

		return terminate(cmd)
	}
	cmd.WaitDelay = l.grace

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return fmt.Errorf("starting %s: %w", spec.commandLine(), err)
	}

	l.logger.Debug("process started",
		slog.String("cmd", spec.commandLine()),
		slog.Int("pid", cmd.Process.Pid),
	)

	streamed := make(chan struct{})

	go func() {
		defer close(streamed)
		l.stream(spec.Label, pr)
	}()

	waitErr := cmd.Wait()
	_ = pw.Close()
	<-streamed

	killMu.Lock()
	if killTimer != nil {
		killTimer.Stop()
	}
	stoppedAt := cancelled
	killMu.Unlock()

	if ctx.Err() != nil {
		l.logger.Debug("process stopped after interrupt",
			slog.String("cmd", spec.commandLine()),
			slog.Duration("after", time.Since(stoppedAt)),
		)

		return nil
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return &runner.ExitError{Command: spec.commandLine(), ExitCode: exitErr.ExitCode()}
		}

		return fmt.Errorf("waiting for %s: %w", spec.commandLine(), waitErr)
	}

	return nil
}

// stream copies r to the console one labelled line at a time. Whatever the
// scanner cannot consume is drained so the process never blocks on a full
// pipe.
func (l *Launcher) stream(label string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		l.console.Line(label, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		l.logger.Warn("output stream interrupted", slog.String("label", label), slog.String("error", err.Error()))
	}

	_, _ = io.Copy(io.Discard, r)
}
