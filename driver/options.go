package driver

import (
	"io"

	"github.com/deepnoodle-ai/jsbcc/engine"
	"github.com/deepnoodle-ai/jsbcc/sink"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Option configures a Driver.
type Option func(*Driver)

// WithEngineOptions sets the options used for every engine context.
func WithEngineOptions(opts engine.Options) Option {
	return func(d *Driver) {
		d.opts = opts
	}
}

// WithFs sets the filesystem sources are read from. Unless WithSink is also
// given, local outputs are written to the same filesystem.
func WithFs(fs afero.Fs) Option {
	return func(d *Driver) {
		d.fs = fs
	}
}

// WithSink sets the destination for serialized byte-code.
func WithSink(s sink.Sink) Option {
	return func(d *Driver) {
		d.sink = s
	}
}

// WithStdout sets where progress messages are printed.
func WithStdout(w io.Writer) Option {
	return func(d *Driver) {
		d.stdout = w
	}
}

// WithReporter sets the receiver of diagnostics and failure messages.
func WithReporter(r Reporter) Option {
	return func(d *Driver) {
		d.reporter = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithExtension sets the extension of derived output paths.
func WithExtension(ext string) Option {
	return func(d *Driver) {
		if ext != "" {
			d.ext = ext
		}
	}
}
