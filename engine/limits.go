package engine

import "runtime/debug"

// Limits tune the Go runtime while a Context is open. Zero values leave the
// corresponding setting untouched.
type Limits struct {
	// MemoryLimit is a soft heap limit in bytes.
	MemoryLimit int64

	// GCPercent sets the garbage collection target percentage. Negative
	// values disable the collector.
	GCPercent int

	// MaxStack caps the stack size of a single goroutine in bytes.
	MaxStack int
}

// IsZero reports whether no limit is set.
func (l Limits) IsZero() bool {
	return l == Limits{}
}

// apply sets the configured limits and returns a function that restores the
// previous values.
func (l Limits) apply() (restore func()) {
	if l.IsZero() {
		return func() {}
	}
	var undo []func()
	if l.MemoryLimit > 0 {
		prev := debug.SetMemoryLimit(l.MemoryLimit)
		undo = append(undo, func() { debug.SetMemoryLimit(prev) })
	}
	if l.GCPercent != 0 {
		prev := debug.SetGCPercent(l.GCPercent)
		undo = append(undo, func() { debug.SetGCPercent(prev) })
	}
	if l.MaxStack > 0 {
		prev := debug.SetMaxStack(l.MaxStack)
		undo = append(undo, func() { debug.SetMaxStack(prev) })
	}
	return func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
}
