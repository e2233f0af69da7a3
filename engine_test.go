package gcode_test

import (
	"errors"
	"fmt"
	"testing"

	gcode "github.com/leftmike/gcsim"
)

const (
	setFeed = iota
	setSpeed
	spindleOn
	spindleOff
	selectTool
	setCoolant
	rapidTo
	linearTo
	arcTo
	endProgram
)

type action struct {
	cmd     int
	line    int
	x, y, z float64
	f       float64
	on      bool
}

type machine struct {
	actions []action
	adx     int
	fail    bool
}

func (m *machine) checkAction(act action) error {
	if m.fail {
		return errors.New("test: machine failure")
	}
	if m.actions == nil {
		return nil
	}

	if m.adx >= len(m.actions) {
		return fmt.Errorf("test: more than %d actions: %#v", len(m.actions), act)
	}

	if act != m.actions[m.adx] {
		return fmt.Errorf("test: at %d expected %#v; got %#v", m.adx, m.actions[m.adx], act)
	}

	m.adx += 1
	return nil
}

func (m *machine) SetFeed(feed float64) error {
	return m.checkAction(action{cmd: setFeed, f: feed})
}

func (m *machine) SetSpindleSpeed(speed float64) error {
	return m.checkAction(action{cmd: setSpeed, f: speed})
}

func (m *machine) SpindleOn(clockwise bool) error {
	return m.checkAction(action{cmd: spindleOn, on: clockwise})
}

func (m *machine) SpindleOff() error {
	return m.checkAction(action{cmd: spindleOff})
}

func (m *machine) SelectTool(tool uint) error {
	return m.checkAction(action{cmd: selectTool, f: float64(tool)})
}

func (m *machine) SetCoolant(on bool) error {
	return m.checkAction(action{cmd: setCoolant, on: on})
}

func (m *machine) RapidTo(line int, pos gcode.Position) error {
	return m.checkAction(action{cmd: rapidTo, line: line, x: pos.X, y: pos.Y, z: pos.Z})
}

func (m *machine) LinearTo(line int, pos gcode.Position) error {
	return m.checkAction(action{cmd: linearTo, line: line, x: pos.X, y: pos.Y, z: pos.Z})
}

func (m *machine) ArcTo(line int, pos gcode.Position, arc gcode.ArcWords, clockwise bool) error {
	return m.checkAction(action{cmd: arcTo, line: line, x: pos.X, y: pos.Y, z: pos.Z,
		f: arc.R, on: clockwise})
}

func (m *machine) EndProgram() error {
	return m.checkAction(action{cmd: endProgram})
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		s       string
		actions []action
		diags   int
	}{
		{s: `
G90
G0 X1 Y1
G1 F1
X2
Y2
`,
			actions: []action{
				{cmd: rapidTo, line: 3, x: 1.0, y: 1.0},
				{cmd: setFeed, f: 1.0},
				{cmd: linearTo, line: 4, x: 1.0, y: 1.0},
				{cmd: linearTo, line: 5, x: 2.0, y: 1.0},
				{cmd: linearTo, line: 6, x: 2.0, y: 2.0},
			},
		},
		{s: "X5\n",
			actions: []action{
				{cmd: linearTo, line: 1, x: 5.0},
			},
		},
		{s: "G0\nG1\n",
			actions: []action{
				{cmd: rapidTo, line: 1},
				{cmd: linearTo, line: 2},
			},
		},
		{s: "S1000 M3 T2 M6 M8\nG1 X1 F100\nM5 M9\nM4\n",
			actions: []action{
				{cmd: setSpeed, f: 1000.0},
				{cmd: selectTool, f: 2.0},
				{cmd: spindleOn, on: true},
				{cmd: setCoolant, on: true},
				{cmd: setFeed, f: 100.0},
				{cmd: linearTo, line: 2, x: 1.0},
				{cmd: spindleOff},
				{cmd: setCoolant, on: false},
				{cmd: spindleOn, on: false},
			},
		},
		{s: "G20\nG1 X1 F10\nG21\nX1\n",
			actions: []action{
				{cmd: setFeed, f: 254.0},
				{cmd: linearTo, line: 2, x: 25.4},
				{cmd: linearTo, line: 4, x: 1.0},
			},
		},
		{s: "G2 X10 Y0 R5\nX0 R-5\nG3 X10 I5\n",
			actions: []action{
				{cmd: arcTo, line: 1, x: 10.0, f: 5.0, on: true},
				{cmd: arcTo, line: 2, f: -5.0, on: true},
				{cmd: arcTo, line: 3, x: 10.0},
			},
		},
		{s: "G1 X1\nM2\nG1 X2\n",
			actions: []action{
				{cmd: linearTo, line: 1, x: 1.0},
				{cmd: endProgram},
			},
		},
		{s: "G91\nG1 X1\nX1\n",
			actions: []action{
				{cmd: linearTo, line: 2, x: 1.0},
				{cmd: linearTo, line: 3, x: 1.0},
			},
			diags: 1,
		},
		{s: "G1 X1 Q5 Y2\nG1 X1.2.3 Y3\nT1.5\nS-3\n",
			actions: []action{
				{cmd: linearTo, line: 1, x: 1.0, y: 2.0},
				{cmd: linearTo, line: 2, x: 1.0, y: 3.0},
			},
			diags: 3,
		},
		{s: "G5\nM100\nQ1\nG81 X1\n",
			actions: []action{
				{cmd: linearTo, line: 4, x: 1.0},
			},
			diags: 4,
		},
		{s: "N10 G54 G17 G40 G49 G80 G94\nN20 G4 P1\n",
			actions: []action{},
		},
	}

	for i, c := range cases {
		m := &machine{actions: c.actions}
		eng := gcode.NewEngine(m, gcode.Position{})
		var diags []gcode.Diagnostic
		eng.Diagnose = func(d gcode.Diagnostic) {
			diags = append(diags, d)
		}
		err := eng.Evaluate(gcode.SplitLines(c.s))
		if err != nil {
			t.Errorf("Evaluate(%d) failed: %s", i, err)
		} else if m.adx != len(c.actions) {
			t.Errorf("Evaluate(%d) got %d actions want %d", i, m.adx, len(c.actions))
		}
		if len(diags) != c.diags {
			t.Errorf("Evaluate(%d) got %d diagnostics want %d: %v", i, len(diags), c.diags, diags)
		}
	}
}

func TestEvaluateMachineFail(t *testing.T) {
	eng := gcode.NewEngine(&machine{fail: true}, gcode.Position{})
	err := eng.Evaluate(gcode.SplitLines("G0 X1\n"))
	if err == nil {
		t.Errorf("Evaluate did not fail")
	}
}

func TestEvaluateEnded(t *testing.T) {
	eng := gcode.NewEngine(&machine{}, gcode.Position{})
	err := eng.Evaluate(gcode.SplitLines("G0 X1\n\nM30\nG0 X5\n"))
	if err != nil {
		t.Fatalf("Evaluate failed: %s", err)
	}
	ended, line := eng.Ended()
	if !ended || line != 3 {
		t.Errorf("Ended() got %v, %d want true, 3", ended, line)
	}
	if eng.Position() != (gcode.Position{X: 1.0}) {
		t.Errorf("Position() got %s", eng.Position())
	}
}
