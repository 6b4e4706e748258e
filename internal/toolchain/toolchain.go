// Package toolchain checks that the external programs a preview depends on
// are installed in usable versions.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rybarix/snaptail/internal/runner"
)

// Requirement describes one external program.
type Requirement struct {
	// Name is the display name, e.g. "node".
	Name string

	// Command is looked up on PATH. Defaults to Name. A path containing a
	// separator is checked directly.
	Command string

	// VersionArgs print the program's version. Nil skips the version
	// probe; only presence is checked.
	VersionArgs []string

	// Constraint is a semver constraint such as ">=18". Empty accepts any
	// version.
	Constraint string

	// Optional tools never fail the check.
	Optional bool
}

func (r Requirement) command() string {
	if r.Command == "" {
		return r.Name
	}

	return r.Command
}

// DefaultRequirements returns the tools snaptail shells out to.
func DefaultRequirements() []Requirement {
	return []Requirement{
		{Name: "node", VersionArgs: []string{"--version"}, Constraint: ">=18"},
		{Name: "npm", VersionArgs: []string{"--version"}, Constraint: ">=9"},
		{Name: "python", VersionArgs: []string{"--version"}, Constraint: ">=3.8"},
		{Name: "uvicorn", Optional: true},
	}
}

// Report is the outcome of checking one Requirement.
type Report struct {
	Requirement Requirement

	// Path is the resolved executable, empty when not found.
	Path string

	// Version is nil when the version was not probed or not parseable.
	Version *semver.Version

	// Satisfied reports whether the tool was found and its version meets
	// the constraint.
	Satisfied bool

	// Problem explains an unsatisfied report.
	Problem string
}

// Found reports whether the executable was located.
func (r Report) Found() bool {
	return r.Path != ""
}

// Failed reports whether this report should fail the check as a whole.
func (r Report) Failed() bool {
	return !r.Satisfied && !r.Requirement.Optional
}

// String renders the report as a single status line.
func (r Report) String() string {
	var b strings.Builder

	b.WriteString(r.Requirement.Name)

	if r.Version != nil {
		b.WriteString(" " + r.Version.String())
	}

	if r.Requirement.Constraint != "" {
		b.WriteString(" (want " + r.Requirement.Constraint + ")")
	}

	if r.Found() {
		b.WriteString(" at " + r.Path)
	}

	if r.Problem != "" {
		b.WriteString(": " + r.Problem)
	}

	return b.String()
}

// Checker runs requirement checks.
type Checker struct {
	Runner runner.Runner

	// LookPath resolves executables. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// Check resolves and version-checks every requirement with exec.LookPath.
func Check(ctx context.Context, r runner.Runner, reqs []Requirement) []Report {
	return (&Checker{Runner: r}).Check(ctx, reqs)
}

// Check returns one report per requirement, in order.
func (c *Checker) Check(ctx context.Context, reqs []Requirement) []Report {
	reports := make([]Report, 0, len(reqs))

	for _, req := range reqs {
		reports = append(reports, c.check(ctx, req))
	}

	return reports
}

func (c *Checker) check(ctx context.Context, req Requirement) Report {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	rep := Report{Requirement: req}

	path, err := lookPath(req.command())
	if err != nil {
		rep.Problem = "not found"
		return rep
	}

	rep.Path = path

	if req.VersionArgs == nil {
		rep.Satisfied = true
		return rep
	}

	res, err := c.Runner.Run(ctx, runner.Command{Name: path, Args: req.VersionArgs})
	if err != nil {
		rep.Problem = fmt.Sprintf("version probe failed: %v", err)
		return rep
	}

	v, err := ParseVersion(res.Stdout + "\n" + res.Stderr)
	if err != nil {
		rep.Problem = err.Error()
		return rep
	}

	rep.Version = v

	if req.Constraint == "" {
		rep.Satisfied = true
		return rep
	}

	constraint, err := semver.NewConstraint(req.Constraint)
	if err != nil {
		rep.Problem = fmt.Sprintf("invalid constraint %q: %v", req.Constraint, err)
		return rep
	}

	if !constraint.Check(v) {
		rep.Problem = "version too old"
		return rep
	}

	rep.Satisfied = true

	return rep
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// ParseVersion extracts the first dotted version number from a program's
// version output, e.g. "v20.11.1" or "Python 3.12.2".
func ParseVersion(output string) (*semver.Version, error) {
	m := versionPattern.FindString(output)
	if m == "" {
		return nil, fmt.Errorf("no version in %q", strings.TrimSpace(output))
	}

	v, err := semver.NewVersion(m)
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", m, err)
	}

	return v, nil
}

// AnyFailed reports whether a required tool failed its check.
func AnyFailed(reports []Report) bool {
	for _, r := range reports {
		if r.Failed() {
			return true
		}
	}

	return false
}
