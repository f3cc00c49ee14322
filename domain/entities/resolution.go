package entities

import "fmt"

// LoadSource identifies which load entry point the host called.
type LoadSource int

const (
	// LoadSourceNone means no load entry point has committed yet.
	LoadSourceNone LoadSource = iota
	// LoadSourceLegacy is the codepage-encoded `load` entry point.
	LoadSourceLegacy
	// LoadSourceUnicode is the UTF-8 `loadu` entry point.
	LoadSourceUnicode
)

// String returns the ABI name of the entry point.
func (s LoadSource) String() string {
	switch s {
	case LoadSourceLegacy:
		return "load"
	case LoadSourceUnicode:
		return "loadu"
	default:
		return "none"
	}
}

// Resolution is the outcome of load negotiation.
//
// The zero value is NotYetResolved. Once resolved it names the entry point
// that committed first and the boolean outcome that entry point reported.
type Resolution struct {
	Source  LoadSource
	Outcome bool
}

// NotYetResolved is the state before any load entry point has committed.
var NotYetResolved = Resolution{}

// ResolvedBy builds a resolved state for the given source.
func ResolvedBy(source LoadSource, outcome bool) Resolution {
	return Resolution{Source: source, Outcome: outcome}
}

// Resolved reports whether a load entry point has committed.
func (r Resolution) Resolved() bool {
	return r.Source != LoadSourceNone
}

// String renders the state for logs.
func (r Resolution) String() string {
	if !r.Resolved() {
		return "unresolved"
	}
	return fmt.Sprintf("%s:%t", r.Source, r.Outcome)
}
