// Package output renders installdeck-ctl results: aligned tables for
// catalog listings, titled command blocks for generation output, and the
// --json envelope.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// TableWriter renders aligned columns for catalog listings
type TableWriter struct {
	writer *tabwriter.Writer
}

// NewTableWriter creates a table writer with two-space column padding
func NewTableWriter() *TableWriter {
	return &TableWriter{writer: tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)}
}

// WriteHeader writes the column header row
func (t *TableWriter) WriteHeader(headers ...string) {
	fmt.Fprintln(t.writer, strings.Join(headers, "\t"))
}

// WriteRow writes one data row
func (t *TableWriter) WriteRow(values ...string) {
	fmt.Fprintln(t.writer, strings.Join(values, "\t"))
}

// Flush writes the buffered rows to stdout
func (t *TableWriter) Flush() error {
	return t.writer.Flush()
}

// PrintCommandBlock prints a titled block of shell commands, one per line.
// An empty block prints nothing, so generation output stays paste-ready.
func PrintCommandBlock(title string, commands []string) {
	writeCommandBlock(os.Stdout, title, commands)
}

func writeCommandBlock(w io.Writer, title string, commands []string) {
	if len(commands) == 0 {
		return
	}
	fmt.Fprintf(w, "# %s\n", title)
	for _, c := range commands {
		fmt.Fprintln(w, c)
	}
}

// PrintSuccess prints a success message with checkmark
func PrintSuccess(message string) {
	fmt.Printf("✓ %s\n", message)
}

// PrintError prints an error message to stderr
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "✗ %s\n", message)
}

// PrintWarning prints a warning message to stderr
func PrintWarning(message string) {
	fmt.Fprintf(os.Stderr, "⚠ %s\n", message)
}
