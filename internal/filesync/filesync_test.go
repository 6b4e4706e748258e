package filesync

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rybarix/snaptail/internal/logging"
)

const component = `export function App({ apiUrl }) {
  return <p>{apiUrl}</p>
}
`

func setup(t *testing.T) (src, dst string) {
	t.Helper()

	dir := t.TempDir()
	src = filepath.Join(dir, "example.jsx")
	dst = filepath.Join(dir, ".snaptail", "src", "App.jsx")
	require.NoError(t, os.WriteFile(src, []byte(component), 0o644))

	return src, dst
}

// ---------------------------------------------------------------------------
// Sync
// ---------------------------------------------------------------------------

func TestSync_CopiesBytes(t *testing.T) {
	src, dst := setup(t)
	s := New(src, dst, logging.Discard())

	change, err := s.Sync()
	require.NoError(t, err)
	assert.Equal(t, Change{Added: 3}, change)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, component, string(got))
}

func TestSync_BinarySafe(t *testing.T) {
	src, dst := setup(t)
	data := []byte{0x00, 0xff, '\r', '\n', 0x7f}
	require.NoError(t, os.WriteFile(src, data, 0o644))

	_, err := New(src, dst, nil).Sync()
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestSync_OverwritesWithLatest(t *testing.T) {
	src, dst := setup(t)
	s := New(src, dst, logging.Discard())

	_, err := s.Sync()
	require.NoError(t, err)

	updated := component + "export const extra = 1\n"
	require.NoError(t, os.WriteFile(src, []byte(updated), 0o644))

	change, err := s.Sync()
	require.NoError(t, err)
	assert.Equal(t, Change{Added: 1}, change)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, updated, string(got))
}

func TestSync_UnchangedSource(t *testing.T) {
	src, dst := setup(t)
	s := New(src, dst, logging.Discard())

	_, err := s.Sync()
	require.NoError(t, err)

	change, err := s.Sync()
	require.NoError(t, err)
	assert.True(t, change.IsZero())
}

func TestSync_MissingSource(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "missing.jsx"), filepath.Join(dir, "App.jsx"), logging.Discard())

	_, err := s.Sync()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.jsx")
	assert.NoFileExists(t, filepath.Join(dir, "App.jsx"))
}

func TestSync_ConcurrentCallsLeaveCompleteCopy(t *testing.T) {
	src, dst := setup(t)
	s := New(src, dst, logging.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Sync()
		}()
	}
	wg.Wait()

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, component, string(got))
}

func TestSync_Paths(t *testing.T) {
	s := New("a.jsx", "b.jsx", nil)
	assert.Equal(t, "a.jsx", s.Source())
	assert.Equal(t, "b.jsx", s.Destination())
}

// ---------------------------------------------------------------------------
// Compare
// ---------------------------------------------------------------------------

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want Change
	}{
		{"identical", "a\nb\n", "a\nb\n", Change{}},
		{"from empty", "", "a\nb", Change{Added: 2}},
		{"to empty", "a\nb\n", "", Change{Removed: 2}},
		{"append line", "a\n", "a\nb\n", Change{Added: 1}},
		{"replace line", "a\nb\nc\n", "a\nx\nc\n", Change{Added: 1, Removed: 1}},
		{"delete middle", "a\nb\nc\n", "a\nc\n", Change{Removed: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.old, tt.new))
		})
	}
}

func TestChange_String(t *testing.T) {
	assert.Equal(t, "no changes", Change{}.String())
	assert.Equal(t, "+2 -1", Change{Added: 2, Removed: 1}.String())
}
