package gcode_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	gcode "github.com/leftmike/gcsim"
)

const workedExample = `G90
G1 X10 Y0 F500
G1 X10 Y10
G0 Z5
`

func TestBuildWorkedExample(t *testing.T) {
	p := gcode.Build(workedExample)
	if p.Len() != 3 {
		t.Fatalf("Build() got %d commands want 3", p.Len())
	}
	if p.Commands[1].Feed != 500.0 {
		t.Errorf("Commands[1].Feed got %v want 500", p.Commands[1].Feed)
	}

	b := gcode.Bounds(p.Commands[:2])
	if b.Min != (gcode.Position{}) || b.Max != (gcode.Position{X: 10, Y: 10}) {
		t.Errorf("Bounds(first two) got %v want {0,0,0}-{10,10,0}", b)
	}

	cmd := p.Commands[2]
	if cmd.Kind != gcode.RapidMove || cmd.End != (gcode.Position{X: 10, Y: 10, Z: 5}) {
		t.Errorf("Commands[2] got %s", cmd)
	}
	if p.Bounds.Max != (gcode.Position{X: 10, Y: 10, Z: 5}) {
		t.Errorf("Bounds.Max got %s", p.Bounds.Max)
	}
	if p.TotalLines != 4 || p.Statements != 4 {
		t.Errorf("TotalLines, Statements got %d, %d want 4, 4", p.TotalLines, p.Statements)
	}
	if len(p.Diagnostics) != 0 {
		t.Errorf("Diagnostics got %v", p.Diagnostics)
	}
}

func TestBuildDeterministic(t *testing.T) {
	for _, s := range []string{workedExample, programPocket, "", "garbage (\nG1 X"} {
		p1 := gcode.Build(s)
		p2 := gcode.Build(s)
		if !reflect.DeepEqual(p1, p2) {
			t.Errorf("Build(%q) not deterministic", s)
		}
	}
}

func TestModalPersistence(t *testing.T) {
	p := gcode.Build("G1 X10 F200\nX20\n")
	if p.Len() != 2 {
		t.Fatalf("Build() got %d commands want 2", p.Len())
	}
	if p.Commands[1].Feed != 200.0 || p.Commands[1].Kind != gcode.LinearMove {
		t.Errorf("Commands[1] got %s", p.Commands[1])
	}

	p = gcode.Build("T3 S12000 M3 M8\nG0 X1\nG1 X2 F100\nM5 M9\nG0 Z10\n")
	last := p.Commands[2]
	if last.Tool != 3 || last.SpindleSpeed != 12000.0 || last.SpindleOn || last.CoolantOn {
		t.Errorf("Commands[2] got %#v", last)
	}
	if !p.Commands[1].SpindleOn || !p.Commands[1].CoolantOn || !p.Commands[1].SpindleClockwise {
		t.Errorf("Commands[1] got %#v", p.Commands[1])
	}
}

func TestPartialAxisUpdate(t *testing.T) {
	p := gcode.Build("G1 X10 Y10\nZ5\n")
	if p.Len() != 2 {
		t.Fatalf("Build() got %d commands want 2", p.Len())
	}
	if p.Commands[1].End != (gcode.Position{X: 10, Y: 10, Z: 5}) {
		t.Errorf("Commands[1].End got %s", p.Commands[1].End)
	}
	if p.Commands[1].Start != p.Commands[0].End {
		t.Errorf("Commands[1].Start got %s want %s", p.Commands[1].Start, p.Commands[0].End)
	}

	p = gcode.Build("G0 A90\nB45 X1\n")
	if p.Commands[1].End != (gcode.Position{X: 1, A: 90, B: 45}) {
		t.Errorf("Commands[1].End got %s", p.Commands[1].End)
	}
}

const programPocket = `%
(pocket)
G21 G90 G17
T1 M6
S8000 M3
G0 Z5
G0 X-5 Y-5
G1 Z-2 F150
G1 X20 F400
Y15
X-5
Y-5
G2 X5 Y5 R10
G3 X-5 Y-5 I-5 J-5
G0 Z25
M5
M30
%
`

func TestBoundsCoverage(t *testing.T) {
	for _, s := range []string{workedExample, programPocket, "G0 X-100 Y50 Z3\nG1 X7 Y-8 Z-9\n"} {
		p := gcode.Build(s)
		if p.Bounds.Empty() {
			t.Errorf("Build(%q) bounds empty", s)
			continue
		}
		for _, cmd := range p.Commands {
			if !p.Bounds.Contains(cmd.End) || !p.Bounds.Contains(cmd.Start) {
				t.Errorf("Build(%q) bounds %v do not contain %s", s, p.Bounds, cmd)
			}
		}
	}
}

func TestEmptyProgram(t *testing.T) {
	for _, s := range []string{"", "(nothing)\n; at all\n", "G90 G21\nM3 S100\n"} {
		p := gcode.Build(s)
		if p.Len() != 0 {
			t.Errorf("Build(%q) got %d commands", s, p.Len())
		}
		if !p.Bounds.Empty() {
			t.Errorf("Build(%q) bounds not empty: %v", s, p.Bounds)
		}
		if p.Bounds.Size() != (gcode.Position{}) {
			t.Errorf("Build(%q) bounds size got %s", s, p.Bounds.Size())
		}
		buf, err := json.Marshal(p.Bounds)
		if err != nil || string(buf) != "null" {
			t.Errorf("Marshal(empty box) got %s, %v", buf, err)
		}
	}
}

func TestBuildStart(t *testing.T) {
	start := gcode.Position{X: 1, Y: 2, Z: 30}
	p := gcode.Build("G1 X5\n", gcode.WithStart(start))
	if p.Commands[0].Start != start || p.Commands[0].End != (gcode.Position{X: 5, Y: 2, Z: 30}) {
		t.Errorf("Commands[0] got %s", p.Commands[0])
	}
	if p.StateAt(0).Position != start {
		t.Errorf("StateAt(0) got %s", p.StateAt(0).Position)
	}
}

func TestBuildEnd(t *testing.T) {
	p := gcode.Build(programPocket)
	if p.EndLine != 17 {
		t.Errorf("EndLine got %d want 17", p.EndLine)
	}
	if p.Len() != 10 {
		t.Errorf("Len() got %d want 10", p.Len())
	}

	p = gcode.Build("G0 X1\nM2\nG0 X2\n")
	if p.Len() != 1 || p.EndLine != 2 {
		t.Errorf("Build() got %d commands, end %d", p.Len(), p.EndLine)
	}
}

func TestBuildTolerant(t *testing.T) {
	p := gcode.Build("G1 X10 Yabc Z2\nM123\nG1 X(unclosed\nG91\n")
	if p.Len() != 2 {
		t.Fatalf("Build() got %d commands want 2", p.Len())
	}
	if p.Commands[0].End != (gcode.Position{X: 10, Z: 2}) {
		t.Errorf("Commands[0].End got %s", p.Commands[0].End)
	}
	if p.Commands[1].End != p.Commands[0].End {
		t.Errorf("Commands[1].End got %s", p.Commands[1].End)
	}

	var kinds []string
	for _, d := range p.Diagnostics {
		kinds = append(kinds, d.Kind.String())
	}
	all := strings.Join(kinds, " ")
	for _, k := range []string{"token-parse-failure", "unknown-command", "unsupported"} {
		if !strings.Contains(all, k) {
			t.Errorf("Diagnostics missing %s: %v", k, p.Diagnostics)
		}
	}
}

func TestReplay(t *testing.T) {
	p := gcode.Build(programPocket)

	ms := p.Initial
	for i, cmd := range p.Commands {
		if got := p.StateAt(i); got != ms {
			t.Errorf("StateAt(%d) got %#v want %#v", i, got, ms)
		}
		ms.Apply(cmd)
	}
	if got := p.StateAt(p.Len()); got != ms {
		t.Errorf("StateAt(%d) got %#v want %#v", p.Len(), got, ms)
	}
	if got := p.StateAt(p.Len() + 10); got != ms {
		t.Errorf("StateAt(past end) got %#v", got)
	}
	if got := p.StateAt(-1); got != p.Initial {
		t.Errorf("StateAt(-1) got %#v", got)
	}
}
