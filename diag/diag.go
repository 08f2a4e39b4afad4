// Package diag prints engine diagnostics and failure messages for humans.
package diag

import (
	"fmt"
	"io"

	"github.com/deepnoodle-ai/jsbcc/engine"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const noFilename = "<no filename>"

// Printer writes diagnostics as "Error! <file> line:<n> msg: <message>".
// It implements engine.Reporter.
type Printer struct {
	w      io.Writer
	red    *color.Color
	logger zerolog.Logger
}

// NewPrinter returns a Printer writing to w, in red when colorize is true.
func NewPrinter(w io.Writer, logger zerolog.Logger, colorize bool) *Printer {
	red := color.New(color.FgRed)
	if colorize {
		red.EnableColor()
	} else {
		red.DisableColor()
	}
	return &Printer{w: w, red: red, logger: logger}
}

// Report prints d on its own line.
func (p *Printer) Report(d engine.Diagnostic) {
	name := d.Filename
	if name == "" {
		name = noFilename
	}
	p.logger.Debug().
		Str("file", name).
		Int("line", d.Line).
		Int("column", d.Column).
		Msg(d.String())
	p.red.Fprintf(p.w, "Error! %s line:%d msg: %s\n", name, d.Line, d.Message)
}

// Errorf prints a formatted failure message on its own line.
func (p *Printer) Errorf(format string, args ...any) {
	p.red.Fprintln(p.w, fmt.Sprintf(format, args...))
}

var _ engine.Reporter = (*Printer)(nil)
