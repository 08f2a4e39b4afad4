package engine

import "fmt"

// Diagnostic describes an error or warning raised by the engine.
type Diagnostic struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (d Diagnostic) String() string {
	if d.Filename == "" {
		return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.Filename, d.Line, d.Column, d.Message)
}

// Reporter receives engine diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(d Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}

// Discard is a Reporter that drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})
