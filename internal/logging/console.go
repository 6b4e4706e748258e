package logging

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console writes user-facing status lines. Structured diagnostics go through
// slog; Console is for the messages a user reads while a preview runs.
//
// Console is safe for concurrent use: the watcher, the API server stream and
// the dev server stream all print through the same instance.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	color bool

	warnStyle  lipgloss.Style
	errorStyle lipgloss.Style
	labelStyle lipgloss.Style
}

// NewConsole creates a Console writing regular lines to out and warnings and
// errors to errOut. When color is false no ANSI sequences are emitted.
func NewConsole(out, errOut io.Writer, color bool) *Console {
	if out == nil {
		out = io.Discard
	}

	if errOut == nil {
		errOut = out
	}

	r := lipgloss.NewRenderer(out)

	return &Console{
		out:        out,
		err:        errOut,
		color:      color,
		warnStyle:  r.NewStyle().Foreground(lipgloss.Color("11")),
		errorStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		labelStyle: r.NewStyle().Faint(true),
	}
}

// Printf writes a formatted line to the regular output.
func (c *Console) Printf(format string, args ...any) {
	c.write(c.out, fmt.Sprintf(format, args...))
}

// Println writes msg followed by a newline to the regular output.
func (c *Console) Println(msg string) {
	c.write(c.out, msg)
}

// Warnf writes a formatted warning line to the error output.
func (c *Console) Warnf(format string, args ...any) {
	c.write(c.err, c.style(c.warnStyle, fmt.Sprintf(format, args...)))
}

// Errorf writes a formatted error line to the error output.
func (c *Console) Errorf(format string, args ...any) {
	c.write(c.err, c.style(c.errorStyle, fmt.Sprintf(format, args...)))
}

// Line writes a raw process output line prefixed with [label].
func (c *Console) Line(label, line string) {
	c.write(c.out, c.style(c.labelStyle, "["+label+"]")+" "+line)
}

// Writer returns the regular output writer.
func (c *Console) Writer() io.Writer {
	return c.out
}

func (c *Console) style(s lipgloss.Style, text string) string {
	if !c.color {
		return text
	}

	return s.Render(text)
}

func (c *Console) write(w io.Writer, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintln(w, line)
}
