package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"pixelripper/pkg/models"
)

const banner = `
   ┌─┐┬─┐ ┬┌─┐┬  ┬─┐┬┌─┐┌─┐┌─┐┬─┐
   ├─┘│┌┴┬┘├┤ │  ├┬┘│├─┘├─┘├┤ ├┬┘
   ┴  ┴┴ └─└─┘┴─┘┴└─┴┴  ┴  └─┘┴└─
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes status lines, coloring them only on a terminal
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer for w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: IsTerminal(w)}
}

func (p *Printer) paint(fn func(string) string, s string) string {
	if !p.color {
		return s
	}
	return fn(s)
}

// Banner prints the program banner
func (p *Printer) Banner() {
	fmt.Fprint(p.w, p.paint(Cyan, banner))
}

// Error prints an error message in red
func (p *Printer) Error(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg += ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(p.w, p.paint(Red, msg))
}

// Success prints a success message in green
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.paint(Green, msg))
}

// Info prints a label and value
func (p *Printer) Info(label string, value string) {
	fmt.Fprintf(p.w, "%s: %s\n", p.paint(Cyan, label), p.paint(Yellow, value))
}

// Warning prints a warning message in yellow
func (p *Printer) Warning(msg string) {
	fmt.Fprintln(p.w, p.paint(Yellow, msg))
}

// FailureTable draws the report as a table. Off a terminal it writes
// nothing, since the plain summary on stdout already lists the failures.
func (p *Printer) FailureTable(report models.DownloadReport) {
	if !p.color {
		return
	}
	if table := RenderFailureTable(report); table != "" {
		fmt.Fprintln(p.w, table)
	}
}
