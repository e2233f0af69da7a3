package gcode

import (
	"fmt"
)

type DiagnosticKind byte

const (
	// TokenParseFailure: a letter and value pair is not a usable number; only
	// that token is dropped.
	TokenParseFailure DiagnosticKind = iota + 1
	// UnknownCommand: a statement or code that is not recognized; treated as
	// a no-op.
	UnknownCommand
	// Unsupported: a recognized code outside of what the simulator
	// models, such as G91; recorded but not emulated.
	Unsupported
)

func (k DiagnosticKind) String() string {
	switch k {
	case TokenParseFailure:
		return "token-parse-failure"
	case UnknownCommand:
		return "unknown-command"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("diagnostic(%d)", byte(k))
	}
}

func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Diagnostic records a problem found while building a program; none of them
// stop the build.
type Diagnostic struct {
	Line int            `json:"line"`
	Kind DiagnosticKind `json:"kind"`
	Text string         `json:"text"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d: %s: %s", d.Line, d.Kind, d.Text)
}
