package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"unicode/utf8"

	"github.com/deepnoodle-ai/risor/v2"
	"github.com/deepnoodle-ai/risor/v2/pkg/bytecode"
	rerrors "github.com/deepnoodle-ai/risor/v2/pkg/errors"
)

// ErrRealm is returned when the globals of a context cannot be set up.
var ErrRealm = errors.New("realm setup failed")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Risor compiles Risor scripts and serializes them with bytecode.Marshal.
type Risor struct{}

// NewRisor returns a Risor engine.
func NewRisor() *Risor {
	return &Risor{}
}

// NewContext builds the realm described by opts and applies its runtime
// limits. The limits stay in effect until the returned Context is closed.
func (e *Risor) NewContext(opts Options, reporter Reporter) (Context, error) {
	if reporter == nil {
		reporter = Discard
	}
	env, err := realm(opts)
	if err != nil {
		return nil, err
	}
	return &risorContext{
		env:      env,
		reporter: reporter,
		restore:  opts.Limits.apply(),
	}, nil
}

func realm(opts Options) (map[string]any, error) {
	env := map[string]any{}
	if !opts.NoDefaultGlobals {
		maps.Copy(env, risor.Builtins())
	}
	for name, value := range opts.Globals {
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("%w: invalid global name %q", ErrRealm, name)
		}
		env[name] = value
	}
	return env, nil
}

type risorContext struct {
	env      map[string]any
	reporter Reporter
	restore  func()
	closed   bool
}

type risorUnit struct {
	code     *bytecode.Code
	filename string
}

func (u *risorUnit) Filename() string {
	return u.filename
}

func (c *risorContext) Compile(ctx context.Context, filename string, source []byte) (Unit, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if !utf8.Valid(source) {
		c.reporter.Report(Diagnostic{Filename: filename, Line: 1, Message: ErrInvalidUTF8.Error()})
		return nil, ErrInvalidUTF8
	}
	code, err := risor.Compile(ctx, string(source),
		risor.WithEnv(c.env),
		risor.WithFilename(filename))
	if err != nil {
		for _, d := range diagnostics(filename, err) {
			c.reporter.Report(d)
		}
		return nil, err
	}
	return &risorUnit{code: code, filename: filename}, nil
}

func (c *risorContext) Encode(unit Unit) ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}
	u, ok := unit.(*risorUnit)
	if !ok || u.code == nil {
		return nil, fmt.Errorf("unsupported compiled unit %T", unit)
	}
	return bytecode.Marshal(u.code)
}

func (c *risorContext) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.env = nil
	c.restore()
	return nil
}

// diagnostics flattens a compile error into one Diagnostic per reported
// problem. Errors without location data are attributed to line 1.
func diagnostics(filename string, err error) []Diagnostic {
	var many *rerrors.CompileErrors
	if errors.As(err, &many) && many.HasErrors() {
		out := make([]Diagnostic, 0, len(many.Errors))
		for _, e := range many.Errors {
			out = append(out, fromFormatted(filename, e.ToFormatted()))
		}
		return out
	}
	var fe rerrors.FormattableError
	if errors.As(err, &fe) {
		return []Diagnostic{fromFormatted(filename, fe.ToFormatted())}
	}
	return []Diagnostic{{Filename: filename, Line: 1, Message: err.Error()}}
}

func fromFormatted(filename string, fe *rerrors.FormattedError) Diagnostic {
	d := Diagnostic{
		Filename: fe.Filename,
		Line:     fe.Line,
		Column:   fe.Column,
		Message:  fe.Message,
	}
	if d.Filename == "" {
		d.Filename = filename
	}
	if d.Line < 1 {
		d.Line = 1
	}
	if fe.Kind != "" && fe.Kind != "error" {
		d.Message = fe.Kind + ": " + d.Message
	}
	return d
}
