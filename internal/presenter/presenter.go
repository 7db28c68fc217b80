// Package presenter provides consistent user-facing CLI output with color
// support, separate from diagnostic logging.
package presenter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr

	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	stepColor    = color.New(color.FgCyan)
)

// SetOutput redirects presenter output, primarily for tests.
func SetOutput(stdout, stderr io.Writer) {
	out = stdout
	errOut = stderr
}

// Step prints a numbered pipeline stage marker.
func Step(n, total int, message string) {
	stepColor.Fprintf(out, "[%d/%d] ", n, total)
	fmt.Fprintln(out, message)
}

// Info prints a plain informational message.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(out, format+"\n", args...)
}

// Success prints a completion message.
func Success(format string, args ...interface{}) {
	successColor.Fprint(out, "✓ ")
	fmt.Fprintf(out, format+"\n", args...)
}

// Error prints an error to stderr.
func Error(err error) {
	errorColor.Fprint(errOut, "Error: ")
	fmt.Fprintln(errOut, err)
}
