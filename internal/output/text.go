package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/vburojevic/dbgpmap/internal/domain"
)

var (
	startStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	resetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	closeStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// TextWriter writes short human readable status lines
type TextWriter struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
}

// NewTextWriter creates a writer on w. Lines are styled only when w is a terminal.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w, styled: IsTerminal(w)}
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *TextWriter) line(style lipgloss.Style, format string, args ...interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if t.styled {
		msg = style.Render(msg)
	}
	_, err := fmt.Fprintln(t.w, msg)
	return err
}

// WriteReady writes the startup banner
func (t *TextWriter) WriteReady(r *domain.Ready) error {
	return t.line(closeStyle, "Running DBGp Path Mapper (listening on %s, IDE at %s, %d mappings)", r.Listen, r.IDE, r.Mappings)
}

// WriteSessionStart announces a new session
func (t *TextWriter) WriteSessionStart(s *domain.SessionStart) error {
	return t.line(startStyle, "New debug session")
}

// WriteSessionEnd announces a session reset
func (t *TextWriter) WriteSessionEnd(s *domain.SessionEnd) error {
	if s.Reason == domain.ReasonReplaced {
		return t.line(resetStyle, "Resetting debug session")
	}
	return t.line(closeStyle, "Debug session closed")
}

// WriteWarning writes a recoverable problem
func (t *TextWriter) WriteWarning(w *domain.Warning) error {
	if w.Code == domain.WarnIDEUnreachable {
		return t.line(errorStyle, "Error: %s", w.Message)
	}
	return t.line(resetStyle, "Warning: %s", w.Message)
}

// WriteError writes a fatal error in the `Error [CODE]: message (hint: ...)` form
func (t *TextWriter) WriteError(code, message string, hint ...string) error {
	if len(hint) > 0 && hint[0] != "" {
		return t.line(errorStyle, "Error [%s]: %s (hint: %s)", code, message, hint[0])
	}
	return t.line(errorStyle, "Error [%s]: %s", code, message)
}

// Discard drops every status event
type Discard struct{}

func (Discard) WriteReady(*domain.Ready) error               { return nil }
func (Discard) WriteSessionStart(*domain.SessionStart) error { return nil }
func (Discard) WriteSessionEnd(*domain.SessionEnd) error     { return nil }
func (Discard) WriteWarning(*domain.Warning) error           { return nil }
func (Discard) WriteError(string, string, ...string) error   { return nil }
