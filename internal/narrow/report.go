package narrow

import (
	"fmt"
	"io"
)

// Reporter receives human-readable progress from the conversion pipeline.
type Reporter interface {
	// Progress reports one converted site.
	Progress(format string, args ...interface{})
	// Info reports pipeline milestones and the final summary.
	Info(format string, args ...interface{})
	// Warn reports clamped payloads, skipped tensors and validation failures.
	Warn(format string, args ...interface{})
}

// ConsoleReporter writes one line per event to an io.Writer.
type ConsoleReporter struct {
	w io.Writer

	// Quiet drops per-site progress lines; milestones and warnings are still written.
	Quiet bool
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// Progress implements Reporter.
func (r *ConsoleReporter) Progress(format string, args ...interface{}) {
	if r.Quiet {
		return
	}
	fmt.Fprintf(r.w, "  "+format+"\n", args...)
}

// Info implements Reporter.
func (r *ConsoleReporter) Info(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

// Warn implements Reporter.
func (r *ConsoleReporter) Warn(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "Warning: "+format+"\n", args...)
}

// NopReporter discards everything.
type NopReporter struct{}

// Progress implements Reporter.
func (NopReporter) Progress(string, ...interface{}) {}

// Info implements Reporter.
func (NopReporter) Info(string, ...interface{}) {}

// Warn implements Reporter.
func (NopReporter) Warn(string, ...interface{}) {}
