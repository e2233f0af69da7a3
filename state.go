package gcode

import (
	"fmt"
	"strconv"
)

const (
	mmPerInch = 25.4
)

// Position of the tool tip; A, B, and C are the extra (rotary) axes.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	A float64 `json:"a,omitempty"`
	B float64 `json:"b,omitempty"`
	C float64 `json:"c,omitempty"`
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (pos Position) String() string {
	if pos.A == 0.0 && pos.B == 0.0 && pos.C == 0.0 {
		return fmt.Sprintf("{x: %s, y: %s, z: %s}", formatNumber(pos.X), formatNumber(pos.Y),
			formatNumber(pos.Z))
	}
	return fmt.Sprintf("{x: %s, y: %s, z: %s, a: %s, b: %s, c: %s}", formatNumber(pos.X),
		formatNumber(pos.Y), formatNumber(pos.Z), formatNumber(pos.A), formatNumber(pos.B),
		formatNumber(pos.C))
}

type MotionKind byte

const (
	RapidMove               MotionKind = iota // G0
	LinearMove                                // G1
	ClockwiseArcMove                          // G2
	CounterClockwiseArcMove                   // G3
)

func (k MotionKind) String() string {
	switch k {
	case RapidMove:
		return "rapid"
	case LinearMove:
		return "linear"
	case ClockwiseArcMove:
		return "arc-cw"
	case CounterClockwiseArcMove:
		return "arc-ccw"
	default:
		return fmt.Sprintf("motion(%d)", byte(k))
	}
}

func (k MotionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k MotionKind) IsArc() bool {
	return k == ClockwiseArcMove || k == CounterClockwiseArcMove
}

type Plane byte

const (
	XYPlane Plane = iota // G17
	ZXPlane              // G18
	YZPlane              // G19
)

func (p Plane) MarshalText() ([]byte, error) {
	switch p {
	case XYPlane:
		return []byte("xy"), nil
	case ZXPlane:
		return []byte("zx"), nil
	case YZPlane:
		return []byte("yz"), nil
	}
	return nil, fmt.Errorf("unexpected plane: %d", p)
}

// ArcWords are the arc parameters captured from a G2 or G3 line. They are
// not resolved into curved geometry by Build; see Tessellate.
type ArcWords struct {
	Plane          Plane   `json:"plane"`
	I              float64 `json:"i,omitempty"`
	J              float64 `json:"j,omitempty"`
	K              float64 `json:"k,omitempty"`
	R              float64 `json:"r,omitempty"`
	Turns          int     `json:"turns,omitempty"`
	HasCenter      bool    `json:"hasCenter,omitempty"`
	HasRadius      bool    `json:"hasRadius,omitempty"`
	AbsoluteCenter bool    `json:"absoluteCenter,omitempty"` // G90.1
}

// MotionCommand is one move of the toolpath along with the modal state it
// was programmed with. Commands are never modified once built.
type MotionCommand struct {
	Line             int        `json:"line"`
	Kind             MotionKind `json:"kind"`
	Start            Position   `json:"start"`
	End              Position   `json:"end"`
	Feed             float64    `json:"feed"`
	SpindleSpeed     float64    `json:"spindleSpeed"`
	SpindleOn        bool       `json:"spindleOn"`
	SpindleClockwise bool       `json:"spindleClockwise"`
	Tool             uint       `json:"tool"`
	CoolantOn        bool       `json:"coolantOn"`
	Arc              *ArcWords  `json:"arc,omitempty"`
}

func (cmd MotionCommand) String() string {
	return fmt.Sprintf("%d: %s %s -> %s F%s", cmd.Line, cmd.Kind, cmd.Start, cmd.End,
		formatNumber(cmd.Feed))
}

// MachineState is the modal state of the machine between commands.
type MachineState struct {
	Position         Position `json:"position"`
	Feed             float64  `json:"feed"`
	SpindleSpeed     float64  `json:"spindleSpeed"`
	SpindleOn        bool     `json:"spindleOn"`
	SpindleClockwise bool     `json:"spindleClockwise"`
	Tool             uint     `json:"tool"`
	CoolantOn        bool     `json:"coolantOn"`
}

// InitialState is the state of the machine before any line is run.
func InitialState(start Position) MachineState {
	return MachineState{
		Position:         start,
		SpindleClockwise: true,
	}
}

// Apply advances the state past cmd.
func (ms *MachineState) Apply(cmd MotionCommand) {
	ms.Position = cmd.End
	ms.Feed = cmd.Feed
	ms.SpindleSpeed = cmd.SpindleSpeed
	ms.SpindleOn = cmd.SpindleOn
	ms.SpindleClockwise = cmd.SpindleClockwise
	ms.Tool = cmd.Tool
	ms.CoolantOn = cmd.CoolantOn
}

// Replay reconstructs the state after the first n commands, starting from
// initial. n is clamped to [0, len(cmds)].
func Replay(cmds []MotionCommand, n int, initial MachineState) MachineState {
	if n < 0 {
		n = 0
	} else if n > len(cmds) {
		n = len(cmds)
	}

	ms := initial
	for _, cmd := range cmds[:n] {
		ms.Apply(cmd)
	}
	return ms
}
