// Package filesync copies the watched component into the generated project.
package filesync

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rybarix/snaptail/internal/output"
)

// Syncer copies one source file to one destination. Calls to Sync are
// serialized: overlapping change events queue behind the copy in flight, so
// every event still produces exactly one complete copy.
type Syncer struct {
	src    string
	dst    string
	logger *slog.Logger

	mu sync.Mutex
}

// New creates a Syncer copying src to dst.
func New(src, dst string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Syncer{src: src, dst: dst, logger: logger}
}

// Source returns the source path.
func (s *Syncer) Source() string { return s.src }

// Destination returns the destination path.
func (s *Syncer) Destination() string { return s.dst }

// Sync copies the current source bytes to the destination verbatim and
// returns a line summary of what changed in the destination.
func (s *Syncer) Sync() (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.src)
	if err != nil {
		return Change{}, fmt.Errorf("reading %s: %w", s.src, err)
	}

	prev, err := os.ReadFile(s.dst)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Change{}, fmt.Errorf("reading %s: %w", s.dst, err)
	}

	w := output.NewFileWriter(s.dst, output.WithLogger(s.logger))
	if err := w.Write(data); err != nil {
		return Change{}, err
	}

	change := Compare(string(prev), string(data))

	s.logger.Debug("synced component",
		slog.String("src", s.src),
		slog.String("dst", filepath.Base(s.dst)),
		slog.Int("added", change.Added),
		slog.Int("removed", change.Removed),
	)

	return change, nil
}
