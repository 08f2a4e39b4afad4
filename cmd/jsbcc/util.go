package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// exitCode is returned from the root command to set the process status
// without printing anything further.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newLogger writes human readable logs to a terminal and JSON lines
// everywhere else. Every record carries the id of this run.
func newLogger(w io.Writer, level zerolog.Level, noColor bool) zerolog.Logger {
	out := w
	if isTerminal(w) {
		out = zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.Kitchen}
	}
	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if id, err := uuid.NewV4(); err == nil {
		ctx = ctx.Str("run", id.String())
	}
	return ctx.Logger()
}
