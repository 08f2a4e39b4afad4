// Package driver compiles one script file into a byte-code file.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deepnoodle-ai/jsbcc/diag"
	"github.com/deepnoodle-ai/jsbcc/engine"
	"github.com/deepnoodle-ai/jsbcc/sink"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	ErrRead    = errors.New("read failed")
	ErrCompile = errors.New("compile failed")
	ErrEncode  = errors.New("encode failed")
	ErrWrite   = errors.New("write failed")
)

// Reporter receives engine diagnostics and driver failure messages.
type Reporter interface {
	engine.Reporter
	Errorf(format string, args ...any)
}

// Driver runs the read, compile, encode and write steps for one file at a
// time. Every call gets its own engine context.
type Driver struct {
	engine   engine.Engine
	opts     engine.Options
	fs       afero.Fs
	sink     sink.Sink
	stdout   io.Writer
	reporter Reporter
	logger   zerolog.Logger
	ext      string
}

// New returns a Driver using eng. By default it reads and writes the OS
// filesystem, writes s3:// outputs to S3, prints progress to os.Stdout and
// failures to os.Stderr.
func New(eng engine.Engine, opts ...Option) *Driver {
	d := &Driver{
		engine: eng,
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		logger: zerolog.Nop(),
		ext:    DefaultExtension,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if d.sink == nil {
		d.sink = &sink.Router{File: sink.NewFileSink(d.fs), S3: sink.NewS3Sink()}
	}
	if d.reporter == nil {
		d.reporter = diag.NewPrinter(os.Stderr, d.logger, !color.NoColor)
	}
	return d
}

// CompileFile compiles input and writes the result to output, or to the
// path derived from input when output is empty. It reports failures and
// returns false rather than returning an error.
func (d *Driver) CompileFile(ctx context.Context, input, output string) bool {
	_, err := d.Compile(ctx, input, output)
	return err == nil
}

// Compile is like CompileFile but returns the effective output path and
// the error that stopped it.
func (d *Driver) Compile(ctx context.Context, input, output string) (string, error) {
	if output == "" {
		output = OutputPath(input, d.ext)
	}
	logger := d.logger.With().Str("input", input).Str("output", output).Logger()
	start := time.Now()

	fmt.Fprintf(d.stdout, "Input file: %s\n", input)

	cx, err := d.engine.NewContext(d.opts, d.reporter)
	if err != nil {
		d.reporter.Errorf("Realm setup failed! %v", err)
		logger.Error().Err(err).Msg("engine context")
		return output, err
	}
	defer func() {
		if err := cx.Close(); err != nil {
			logger.Warn().Err(err).Msg("close engine context")
		}
	}()

	fmt.Fprintln(d.stdout, "Compiling ...")

	source, err := afero.ReadFile(d.fs, input)
	if err != nil {
		d.reporter.Errorf("Failed to read %s: %v", input, err)
		fmt.Fprintf(d.stdout, "Compiled %s fails!\n", input)
		logger.Debug().Err(err).Msg("read source")
		return output, fmt.Errorf("%w: %s: %w", ErrRead, input, err)
	}

	unit, err := cx.Compile(ctx, input, source)
	if err != nil {
		fmt.Fprintf(d.stdout, "Compiled %s fails!\n", input)
		logger.Debug().Err(err).Msg("compile")
		return output, fmt.Errorf("%w: %s: %w", ErrCompile, input, err)
	}

	fmt.Fprintln(d.stdout, "Encoding ...")

	data, err := cx.Encode(unit)
	if err != nil {
		d.reporter.Errorf("Failed to encode %s: %v", input, err)
		logger.Debug().Err(err).Msg("encode")
		return output, fmt.Errorf("%w: %s: %w", ErrEncode, input, err)
	}

	if err := d.sink.WriteFile(ctx, output, data); err != nil {
		d.reporter.Errorf("Failed to write %s: %v", output, err)
		logger.Debug().Err(err).Msg("write")
		return output, fmt.Errorf("%w: %s: %w", ErrWrite, output, err)
	}

	fmt.Fprintf(d.stdout, "Done! Output file: %s\n", output)
	logger.Info().
		Int("source_bytes", len(source)).
		Int("output_bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("compiled")
	return output, nil
}
