package toolchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rybarix/snaptail/internal/runner"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func fakeLookPath(found map[string]string) func(string) (string, error) {
	return func(file string) (string, error) {
		if p, ok := found[file]; ok {
			return p, nil
		}

		return "", errors.New("executable file not found in $PATH")
	}
}

// ---------------------------------------------------------------------------
// ParseVersion
// ---------------------------------------------------------------------------

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"node", "v20.11.1\n", "20.11.1"},
		{"npm", "10.2.4\n", "10.2.4"},
		{"python", "Python 3.12.2\n", "3.12.2"},
		{"two components", "tool 1.2\n", "1.2.0"},
		{"uvicorn banner", "Running uvicorn 0.29.0 with CPython 3.11.4 on Linux\n", "0.29.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersion(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestParseVersion_NoVersion(t *testing.T) {
	_, err := ParseVersion("command not understood")
	assert.ErrorContains(t, err, "no version")
}

// ---------------------------------------------------------------------------
// Check
// ---------------------------------------------------------------------------

func TestCheck_AllSatisfied(t *testing.T) {
	rec := runner.NewRecorder().
		On("/usr/bin/node", runner.Response{Result: &runner.Result{Stdout: "v20.11.1\n"}}).
		On("/usr/bin/npm", runner.Response{Result: &runner.Result{Stdout: "10.2.4\n"}}).
		On("/usr/bin/python", runner.Response{Result: &runner.Result{Stdout: "Python 3.12.2\n"}})

	c := &Checker{
		Runner: rec,
		LookPath: fakeLookPath(map[string]string{
			"node":    "/usr/bin/node",
			"npm":     "/usr/bin/npm",
			"python":  "/usr/bin/python",
			"uvicorn": "/usr/bin/uvicorn",
		}),
	}

	reports := c.Check(context.Background(), DefaultRequirements())
	require.Len(t, reports, 4)

	for _, r := range reports {
		assert.True(t, r.Satisfied, r.String())
	}

	assert.False(t, AnyFailed(reports))
	assert.Equal(t, "20.11.1", reports[0].Version.String())
	assert.Nil(t, reports[3].Version, "uvicorn is presence-only")
	assert.Zero(t, rec.Count("/usr/bin/uvicorn"))
}

func TestCheck_VersionTooOld(t *testing.T) {
	rec := runner.NewRecorder().
		On("/usr/bin/node", runner.Response{Result: &runner.Result{Stdout: "v16.20.0\n"}})

	c := &Checker{Runner: rec, LookPath: fakeLookPath(map[string]string{"node": "/usr/bin/node"})}

	reports := c.Check(context.Background(), DefaultRequirements()[:1])
	require.Len(t, reports, 1)

	r := reports[0]
	assert.False(t, r.Satisfied)
	assert.True(t, r.Failed())
	assert.Equal(t, "node 16.20.0 (want >=18) at /usr/bin/node: version too old", r.String())
}

func TestCheck_Missing(t *testing.T) {
	c := &Checker{Runner: runner.NewRecorder(), LookPath: fakeLookPath(nil)}

	reports := c.Check(context.Background(), DefaultRequirements())

	assert.True(t, AnyFailed(reports))
	assert.False(t, reports[0].Found())
	assert.Equal(t, "node (want >=18): not found", reports[0].String())

	// uvicorn is optional.
	assert.False(t, reports[3].Satisfied)
	assert.False(t, reports[3].Failed())
}

func TestCheck_OnlyOptionalMissing(t *testing.T) {
	c := &Checker{Runner: runner.NewRecorder(), LookPath: fakeLookPath(nil)}

	reports := c.Check(context.Background(), []Requirement{{Name: "uvicorn", Optional: true}})
	assert.False(t, AnyFailed(reports))
}

func TestCheck_VersionFromStderr(t *testing.T) {
	rec := runner.NewRecorder().
		On("/usr/bin/python", runner.Response{Result: &runner.Result{Stderr: "Python 3.9.1\n"}})

	c := &Checker{Runner: rec, LookPath: fakeLookPath(map[string]string{"python": "/usr/bin/python"})}

	reports := c.Check(context.Background(), []Requirement{
		{Name: "python", VersionArgs: []string{"--version"}, Constraint: ">=3.8"},
	})
	assert.True(t, reports[0].Satisfied)
	assert.Equal(t, "3.9.1", reports[0].Version.String())
}

func TestCheck_ProbeFailure(t *testing.T) {
	rec := runner.NewRecorder().
		On("/usr/bin/npm", runner.Response{Err: &runner.ExitError{Command: "npm --version", ExitCode: 1}})

	c := &Checker{Runner: rec, LookPath: fakeLookPath(map[string]string{"npm": "/usr/bin/npm"})}

	reports := c.Check(context.Background(), DefaultRequirements()[1:2])
	assert.False(t, reports[0].Satisfied)
	assert.Contains(t, reports[0].Problem, "version probe failed")
}

func TestCheck_CustomCommand(t *testing.T) {
	c := &Checker{
		Runner:   runner.NewRecorder(),
		LookPath: fakeLookPath(map[string]string{"/proj/.venv/bin/uvicorn": "/proj/.venv/bin/uvicorn"}),
	}

	reports := c.Check(context.Background(), []Requirement{
		{Name: "uvicorn", Command: "/proj/.venv/bin/uvicorn"},
	})
	assert.True(t, reports[0].Satisfied)
	assert.Equal(t, "/proj/.venv/bin/uvicorn", reports[0].Path)
}

func TestCheck_InvalidConstraint(t *testing.T) {
	rec := runner.NewRecorder().
		On("/usr/bin/node", runner.Response{Result: &runner.Result{Stdout: "v20.0.0"}})

	c := &Checker{Runner: rec, LookPath: fakeLookPath(map[string]string{"node": "/usr/bin/node"})}

	reports := c.Check(context.Background(), []Requirement{
		{Name: "node", VersionArgs: []string{"--version"}, Constraint: "not a constraint"},
	})
	assert.Contains(t, reports[0].Problem, "invalid constraint")
}
