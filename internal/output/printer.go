// Package output renders CLI results.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"ReadLater/internal/domain"
)

// Printer writes human readable lines to stdout and stderr.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// UseColors resolves color output from the environment and the --no-color flag.
func UseColors(noColor bool) bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// NewPrinter prints to the process streams.
func NewPrinter(useColors bool) *Printer {
	return NewPrinterWithWriters(os.Stdout, os.Stderr, useColors)
}

// NewPrinterWithWriters prints to custom writers.
func NewPrinterWithWriters(out, errOut io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: errOut, useColors: useColors}
}

// Out is the writer used for regular output, e.g. tables.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Info prints an informational message.
func (p *Printer) Info(format string, args ...any) {
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Success prints a success message.
func (p *Printer) Success(format string, args ...any) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

// Warning prints a warning to stderr.
func (p *Printer) Warning(format string, args ...any) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
}

// Error prints an error to stderr.
func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.err, "✗ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
}

// Progress prints one line per bulk import event: "[3/10] success https://...".
func (p *Printer) Progress(ev domain.BulkProgress) {
	fmt.Fprintf(p.out, "[%d/%d] %s %s\n", ev.Completed, ev.Total, p.outcome(ev.Status), ev.URL)
}

// Summary prints the closing line of a bulk import.
func (p *Printer) Summary(s domain.BulkSummary) {
	if s.Failed > 0 {
		p.Warning("%s", s.Message())
		return
	}
	p.Success("%s", s.Message())
}

func (p *Printer) outcome(o domain.Outcome) string {
	if !p.useColors {
		return string(o)
	}
	if o == domain.OutcomeSuccess {
		return color.GreenString(string(o))
	}
	return color.RedString(string(o))
}

// StatusBadge renders an item status.
func (p *Printer) StatusBadge(status domain.Status) string {
	if !p.useColors {
		return string(status)
	}
	switch status {
	case domain.StatusCompleted:
		return color.GreenString(string(status))
	case domain.StatusFailed:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}
