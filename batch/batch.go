// Package batch drives compilation of newline-delimited paths read from a
// stream, typically standard input in pipe mode.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// ErrNotReady is returned when the input stream fails before any data can
// be read.
var ErrNotReady = errors.New("input stream not ready")

// Func processes one path.
type Func func(ctx context.Context, path string) error

// Result summarizes a batch.
type Result struct {
	// Processed counts the non-empty lines handed to the Func.
	Processed int
	// Failed counts the lines whose Func returned an error.
	Failed int
	// Errors aggregates the per-line errors, or is nil.
	Errors error
	// ReadErr is set when the stream failed after it became ready. The
	// batch stops at that point as if the stream had ended.
	ReadErr error
}

// Reader reads paths from a stream.
type Reader struct {
	r      *bufio.Reader
	logger zerolog.Logger
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader, logger zerolog.Logger) *Reader {
	return &Reader{r: bufio.NewReader(r), logger: logger}
}

// WaitReady blocks until the stream has data to read or has been closed.
// There is no timeout.
func (b *Reader) WaitReady() error {
	_, err := b.r.Peek(1)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNotReady, err)
}

// Run calls fn for every non-empty line until the stream ends. A trailing
// "\r" is dropped from each line. Errors from fn are collected and never
// stop the batch.
func (b *Reader) Run(ctx context.Context, fn Func) Result {
	var res Result
	var errs *multierror.Error
	for {
		line, err := b.r.ReadString('\n')
		if path := trimLine(line); path != "" {
			res.Processed++
			if ferr := fn(ctx, path); ferr != nil {
				res.Failed++
				errs = multierror.Append(errs, ferr)
				b.logger.Debug().Err(ferr).Str("path", path).Msg("batch item failed")
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				res.ReadErr = err
				b.logger.Warn().Err(err).Msg("input stream read failed")
			}
			break
		}
	}
	res.Errors = errs.ErrorOrNil()
	b.logger.Info().
		Int("processed", res.Processed).
		Int("failed", res.Failed).
		Msg("batch complete")
	return res
}

func trimLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
