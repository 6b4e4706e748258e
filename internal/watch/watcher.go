package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rybarix/snaptail/internal/logging"
)

// Func is invoked with the watched path each time it is modified. A returned
// error is logged; the watcher keeps running.
type Func func(path string) error

// Options configures the watch behaviour.
type Options struct {
	// Path is the file to watch.
	Path string

	// Debounce is the quiet period before the callback fires. Zero invokes
	// the callback once per modification event.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Console receives user-facing status messages.
	Console *logging.Console
}

// Handle tracks a running watcher.
type Handle struct {
	path string
	done chan struct{}
}

// Path returns the absolute watched path.
func (h *Handle) Path() string { return h.path }

// Done is closed once the watcher goroutine has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the watcher goroutine has exited.
func (h *Handle) Wait() { <-h.done }

// Start begins watching opts.Path on a background goroutine and returns
// immediately. The watcher runs until ctx is cancelled.
//
// The parent directory is watched rather than the file itself: editors that
// save by writing a new file and renaming it over the old one would
// otherwise detach the watch after the first save.
func Start(ctx context.Context, opts Options, fn Func) (*Handle, error) {
	if opts.Path == "" {
		return nil, errors.New("watch path must not be empty")
	}

	if fn == nil {
		return nil, errors.New("watch callback must not be nil")
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Console == nil {
		opts.Console = logging.NewConsole(nil, nil, false)
	}

	target, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", opts.Path, err)
	}

	target = filepath.Clean(target)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", target, err)
	}

	l := &loop{target: target, fn: fn, logger: opts.Logger}

	if opts.Debounce > 0 {
		l.debouncer = NewDebouncer(opts.Debounce, l.invoke)
	}

	h := &Handle{path: target, done: make(chan struct{})}

	opts.Console.Printf("Watching %s", target)

	go func() {
		defer close(h.done)
		defer watcher.Close()

		l.run(ctx, watcher)
	}()

	return h, nil
}

// loop dispatches watcher events for one target file.
type loop struct {
	target    string
	fn        Func
	debouncer *Debouncer
	logger    *slog.Logger
}

func (l *loop) run(ctx context.Context, watcher *fsnotify.Watcher) {
	if l.debouncer != nil {
		defer l.debouncer.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("watcher stopped", slog.String("path", l.target))
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			l.handle(event)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return
			}

			l.logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle dispatches a single event and reports whether it was relevant.
func (l *loop) handle(event fsnotify.Event) bool {
	if !isRelevant(event, l.target) {
		return false
	}

	if l.debouncer != nil {
		l.debouncer.Trigger(event.Name)
		return true
	}

	l.invoke(l.target)

	return true
}

func (l *loop) invoke(string) {
	if err := l.fn(l.target); err != nil {
		l.logger.Error("watch callback failed",
			slog.String("path", l.target),
			slog.String("error", err.Error()),
		)
	}
}

// isRelevant reports whether event is a modification of target.
func isRelevant(event fsnotify.Event, target string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	return filepath.Clean(event.Name) == target
}
