// Package cmd provides small CLI-wide helpers shared by every kiln
// subcommand: error reporting and the cobra entry-point adapter.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// causer matches github.com/pkg/errors' Cause() interface without
// importing it directly, so this package stays usable against any error
// implementing the convention (including the standard library's Unwrap).
type causer interface {
	Cause() error
}

type unwrapper interface {
	Unwrap() error
}

func cause(err error) error {
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	if u, ok := err.(unwrapper); ok {
		return u.Unwrap()
	}
	return nil
}

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// Error prints err's cause chain to standard error, one cause per line,
// each indented one tab deeper than the last. Since github.com/pkg/errors'
// Error() returns a message cumulative with its cause ("context: cause"),
// each layer's own text is recovered by trimming its child's full text from
// the end before printing, so the indented lines read like independent
// causes rather than increasingly-truncated repeats of the same string.
func Error(err error) {
	indent := 0
	for current := err; current != nil; {
		next := cause(current)

		text := current.Error()
		if next != nil && next != current && text == next.Error() {
			// A layer adding no text of its own (such as the stack-trace
			// layer of errors.Wrap) is not printed as a separate cause.
			current = next
			continue
		}
		if next != nil {
			if trimmed := strings.TrimSuffix(text, ": "+next.Error()); trimmed != text {
				text = trimmed
			}
		}

		fmt.Fprintln(os.Stderr, strings.Repeat("\t", indent)+text)

		if next == nil || next == current {
			break
		}
		current = next
		indent++
	}
}

// Fatal prints err's cause chain to standard error and terminates the
// process with a non-zero exit code.
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}
