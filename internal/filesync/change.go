package filesync

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Change summarises a copy in lines added and removed.
type Change struct {
	Added   int
	Removed int
}

// IsZero reports whether the copy left the destination unchanged.
func (c Change) IsZero() bool {
	return c.Added == 0 && c.Removed == 0
}

// String returns a compact "+N -M" summary.
func (c Change) String() string {
	if c.IsZero() {
		return "no changes"
	}

	return fmt.Sprintf("+%d -%d", c.Added, c.Removed)
}

// Compare counts the lines added and removed going from oldDoc to newDoc.
func Compare(oldDoc, newDoc string) Change {
	if oldDoc == newDoc {
		return Change{}
	}

	m := difflib.NewMatcher(splitLines(oldDoc), splitLines(newDoc))

	var c Change

	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'r':
			c.Removed += op.I2 - op.I1
			c.Added += op.J2 - op.J1
		case 'd':
			c.Removed += op.I2 - op.I1
		case 'i':
			c.Added += op.J2 - op.J1
		}
	}

	return c
}

// splitLines splits a string into lines for diff processing.
// Each element includes a trailing newline for difflib compatibility.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
