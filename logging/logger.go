// Package logging prints the relay's status lines. Every line is tagged
// with a colored severity symbol:
//
//	[?] checking   [+] progress   [-] nothing new   [!] attention
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Symbol tags a status line.
type Symbol string

const (
	Check    Symbol = "?"
	Progress Symbol = "+"
	Skip     Symbol = "-"
	Alert    Symbol = "!"
)

// Logger wraps a charmbracelet logger with symbol-tagged output.
type Logger struct {
	base   *log.Logger
	styles map[Symbol]lipgloss.Style
}

// New creates a logger writing to w at the named level ("debug", "info",
// "warn", "error").
func New(w io.Writer, level string) (*Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	base := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           lvl,
	})

	// Styles bound to w, so a redirected stream gets no escape codes
	r := lipgloss.NewRenderer(w)
	styles := map[Symbol]lipgloss.Style{
		Check:    r.NewStyle().Foreground(lipgloss.Color("6")),
		Progress: r.NewStyle().Foreground(lipgloss.Color("2")),
		Skip:     r.NewStyle().Foreground(lipgloss.Color("1")),
		Alert:    r.NewStyle().Foreground(lipgloss.Color("3")),
	}

	return &Logger{base: base, styles: styles}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l, _ := New(io.Discard, "error")
	return l
}

// With returns a logger that adds keyvals to every line.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{base: l.base.With(keyvals...), styles: l.styles}
}

func (l *Logger) tag(sym Symbol, msg string) string {
	return l.styles[sym].Render("["+string(sym)+"]") + " " + msg
}

// Log prints msg tagged with sym. Alerts are logged at warn level, the
// rest at info.
func (l *Logger) Log(sym Symbol, msg string, keyvals ...any) {
	if sym == Alert {
		l.base.Warn(l.tag(sym, msg), keyvals...)
		return
	}
	l.base.Info(l.tag(sym, msg), keyvals...)
}

// Error prints msg tagged as an alert at error level.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.base.Error(l.tag(Alert, msg), keyvals...)
}

// Debug prints an untagged debug line.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.base.Debug(msg, keyvals...)
}
