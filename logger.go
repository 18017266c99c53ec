package httpcore

import (
	"fmt"
	"os"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pterm/pterm"
)

// Logger is the out-of-scope logging collaborator named in spec §6:
// debug/info/warn/error(message, [err]). Implementations must be safe for
// concurrent use — every write-pool worker can log at once.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)
}

// ptermLogger is the default Logger, grounded on the teacher's
// core/utils/logger package: a pterm-backed, mutex-guarded console sink.
// Levels are colorized the same way the teacher colors its bypass-mode
// output (text.Colors from jedib0t/go-pretty).
type ptermLogger struct {
	mu      sync.Mutex
	verbose bool
	debug   bool
}

// NewLogger returns the default pterm-backed Logger. verbose gates Info
// output, debug gates Debug output; Warn and Error always print.
func NewLogger(verbose, debug bool) Logger {
	return &ptermLogger{verbose: verbose, debug: debug}
}

func (l *ptermLogger) Debug(msg string, args ...any) {
	if !l.debug {
		return
	}
	l.print(pterm.Debug.Prefix.Text, text.FgGray, msg, args...)
}

func (l *ptermLogger) Info(msg string, args ...any) {
	if !l.verbose {
		return
	}
	l.print("INFO", text.FgCyan, msg, args...)
}

func (l *ptermLogger) Warn(msg string, args ...any) {
	l.print("WARN", text.FgYellow, msg, args...)
}

func (l *ptermLogger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"err", err}, args...)
	}
	l.print("ERROR", text.FgRed, msg, args...)
}

func (l *ptermLogger) print(level string, color text.Color, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := color.Sprintf("[%s] %s", level, msg)
	for i := 0; i+1 < len(args); i += 2 {
		line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	fmt.Fprintln(os.Stdout, line)
}

// noopLogger discards everything. It is never substituted automatically
// (WithLogger(nil) stores a nil Logger); callers and tests obtain it through
// NewNoopLogger for hermetic, allocation-cheap logging (spec §9 "removes
// process-wide mutable state ... makes tests hermetic").
type noopLogger struct{}

func (noopLogger) Debug(string, ...any)        {}
func (noopLogger) Info(string, ...any)         {}
func (noopLogger) Warn(string, ...any)         {}
func (noopLogger) Error(string, error, ...any) {}

// NewNoopLogger returns a Logger that discards all output.
func NewNoopLogger() Logger { return noopLogger{} }
