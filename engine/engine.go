// Package engine defines the embedded script engine used to compile source
// files into serialized byte-code, along with a Risor-backed implementation.
//
// An Engine hands out one Context per compile call. A Context owns the
// realm (the globals visible to the compiled script) and any process-wide
// runtime tuning applied on its behalf; Close undoes both. Callers are
// expected to defer Close immediately after NewContext succeeds:
//
//	cx, err := eng.NewContext(opts, reporter)
//	if err != nil {
//		return err
//	}
//	defer cx.Close()
package engine

import (
	"context"
	"errors"
)

// ErrInvalidUTF8 is returned when source text is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("source is not valid UTF-8")

// ErrClosed is returned when a closed Context is used.
var ErrClosed = errors.New("engine context is closed")

// Engine creates compile contexts.
type Engine interface {
	// NewContext creates a fresh context scoped to a single compile call.
	// Diagnostics produced while compiling are delivered to reporter.
	NewContext(opts Options, reporter Reporter) (Context, error)
}

// Context is a single-use compilation scope.
type Context interface {
	// Compile compiles UTF-8 source text. Errors are attributed to filename,
	// starting at line 1.
	Compile(ctx context.Context, filename string, source []byte) (Unit, error)

	// Encode serializes a compiled unit into a byte-code buffer.
	Encode(unit Unit) ([]byte, error)

	// Close releases the context and restores any runtime state it changed.
	// It is safe to call more than once.
	Close() error
}

// Unit is an opaque compiled script owned by the Context that produced it.
type Unit interface {
	Filename() string
}

// Options configure a Context.
type Options struct {
	// Globals are extra names made available to compiled scripts.
	Globals map[string]any

	// NoDefaultGlobals disables the engine's standard library.
	NoDefaultGlobals bool

	// Limits tune the Go runtime for the lifetime of the context.
	Limits Limits
}
