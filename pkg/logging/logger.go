package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. Pipelines log through a
// named Sublogger so log lines can be attributed to the pipeline stage that
// emitted them. It is safe for concurrent use: every method only
// ever performs a single write to the underlying stream.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the minimum severity this logger will emit.
	level Level
	// output is the destination stream.
	output io.Writer
	// colorize indicates whether ANSI color codes should be emitted. It is
	// computed once at construction by checking whether output is a
	// terminal, so redirecting stderr to a file suppresses color codes.
	colorize bool
}

// RootLogger is a package-level root logger at LevelWarn on stderr. NewRoot
// builds a separate root logger at another level; it does not modify
// RootLogger.
var RootLogger = NewRoot(LevelWarn)

// NewRoot constructs a root logger writing to os.Stderr at the given level.
func NewRoot(level Level) *Logger {
	colorize := isatty.IsTerminal(os.Stderr.Fd())
	return &Logger{
		level:    level,
		output:   os.Stderr,
		colorize: colorize,
	}
}

// Sublogger creates a new sublogger with the specified name appended to the
// current prefix.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{
		prefix:   prefix,
		level:    l.level,
		output:   l.output,
		colorize: l.colorize,
	}
}

// line formats a single log line, adding the logger's prefix if any.
func (l *Logger) line(text string) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s", l.prefix, text)
	}
	return text
}

func (l *Logger) emit(level Level, text string) {
	if l == nil || level > l.level {
		return
	}
	fmt.Fprintln(l.output, l.line(text))
}

// Info logs basic execution information, e.g. the backup pipeline's
// completion summary.
func (l *Logger) Info(v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprint(v...))
}

// Infof is the Printf equivalent of Info.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, v...))
}

// Debug logs low-level execution information, e.g. per-file skip reasons in
// the backup and restore pipelines.
func (l *Logger) Debug(v ...interface{}) {
	l.emit(LevelDebug, fmt.Sprint(v...))
}

// Debugf is the Printf equivalent of Debug.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintf(format, v...))
}

// Warn logs a non-fatal error with a yellow "Warning:" prefix.
func (l *Logger) Warn(err error) {
	if l == nil || LevelWarn > l.level {
		return
	}
	text := fmt.Sprintf("Warning: %v", err)
	if l.colorize {
		text = color.YellowString("Warning:") + fmt.Sprintf(" %v", err)
	}
	fmt.Fprintln(l.output, l.line(text))
}

// Error logs a fatal error with a red "Error:" prefix.
func (l *Logger) Error(err error) {
	if l == nil || LevelError > l.level {
		return
	}
	text := fmt.Sprintf("Error: %v", err)
	if l.colorize {
		text = color.RedString("Error:") + fmt.Sprintf(" %v", err)
	}
	fmt.Fprintln(l.output, l.line(text))
}
