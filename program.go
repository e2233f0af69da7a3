package gcode

import (
	"encoding/json"
	"math"
)

// Box is an axis aligned bounding box. The empty box has Min at +Inf and Max
// at -Inf on every axis; it has no extent and is not a valid region.
type Box struct {
	Min Position `json:"min"`
	Max Position `json:"max"`
}

func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: Position{X: inf, Y: inf, Z: inf, A: inf, B: inf, C: inf},
		Max: Position{X: -inf, Y: -inf, Z: -inf, A: -inf, B: -inf, C: -inf},
	}
}

func (b Box) Empty() bool {
	return b.Min.X > b.Max.X
}

// Add returns the box grown to include pos.
func (b Box) Add(pos Position) Box {
	b.Min = Position{
		X: math.Min(b.Min.X, pos.X),
		Y: math.Min(b.Min.Y, pos.Y),
		Z: math.Min(b.Min.Z, pos.Z),
		A: math.Min(b.Min.A, pos.A),
		B: math.Min(b.Min.B, pos.B),
		C: math.Min(b.Min.C, pos.C),
	}
	b.Max = Position{
		X: math.Max(b.Max.X, pos.X),
		Y: math.Max(b.Max.Y, pos.Y),
		Z: math.Max(b.Max.Z, pos.Z),
		A: math.Max(b.Max.A, pos.A),
		B: math.Max(b.Max.B, pos.B),
		C: math.Max(b.Max.C, pos.C),
	}
	return b
}

// Contains reports whether pos lies within the box, inclusive, on every axis.
func (b Box) Contains(pos Position) bool {
	return pos.X >= b.Min.X && pos.X <= b.Max.X &&
		pos.Y >= b.Min.Y && pos.Y <= b.Max.Y &&
		pos.Z >= b.Min.Z && pos.Z <= b.Max.Z &&
		pos.A >= b.Min.A && pos.A <= b.Max.A &&
		pos.B >= b.Min.B && pos.B <= b.Max.B &&
		pos.C >= b.Min.C && pos.C <= b.Max.C
}

// Size is Max - Min; it is the zero Position for the empty box.
func (b Box) Size() Position {
	if b.Empty() {
		return Position{}
	}
	return Position{
		X: b.Max.X - b.Min.X,
		Y: b.Max.Y - b.Min.Y,
		Z: b.Max.Z - b.Min.Z,
		A: b.Max.A - b.Min.A,
		B: b.Max.B - b.Min.B,
		C: b.Max.C - b.Min.C,
	}
}

// MarshalJSON encodes the empty box as null since JSON has no infinities.
func (b Box) MarshalJSON() ([]byte, error) {
	if b.Empty() {
		return []byte("null"), nil
	}
	type box Box
	return json.Marshal(box(b))
}

// Bounds folds the start and end positions of every command into a box.
func Bounds(cmds []MotionCommand) Box {
	b := EmptyBox()
	for _, cmd := range cmds {
		b = b.Add(cmd.Start).Add(cmd.End)
	}
	return b
}

// Program is the result of building a program's text. It is not changed
// after Build returns; edit the text and build again instead.
type Program struct {
	Commands    []MotionCommand
	TotalLines  int
	Statements  int
	Bounds      Box
	Diagnostics []Diagnostic
	Initial     MachineState
	EndLine     int // line of M2 or M30; 0 if the program has no end
}

type buildOptions struct {
	start Position
}

type BuildOption func(opts *buildOptions)

// WithStart sets the machine position before the first line; the default is
// the origin.
func WithStart(pos Position) BuildOption {
	return func(opts *buildOptions) {
		opts.start = pos
	}
}

// Build parses and interprets text. It always succeeds: problems in the
// text are recorded as diagnostics. The same text and options always give
// the same program.
func Build(text string, opts ...BuildOption) *Program {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	p := Program{
		TotalLines: CountLines(text),
		Initial:    InitialState(bo.start),
	}

	stmts := SplitLines(text)
	p.Statements = len(stmts)

	t := NewTracker(p.Initial)
	eng := NewEngine(t, bo.start)
	eng.Diagnose = func(d Diagnostic) {
		p.Diagnostics = append(p.Diagnostics, d)
	}

	err := eng.Evaluate(stmts)
	if err != nil {
		// Tracker never fails.
		panic(err)
	}
	if ended, line := eng.Ended(); ended {
		p.EndLine = line
	}

	p.Commands = t.Commands()
	p.Bounds = Bounds(p.Commands)
	return &p
}

func (p *Program) Len() int {
	return len(p.Commands)
}

// StateAt is the machine state after the first n commands, found by
// replaying them from the initial state.
func (p *Program) StateAt(n int) MachineState {
	return Replay(p.Commands, n, p.Initial)
}
