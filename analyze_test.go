package gcode_test

import (
	"reflect"
	"testing"
	"time"

	gcode "github.com/leftmike/gcsim"
)

func TestAnalyze(t *testing.T) {
	p := gcode.Build("G0 X3 Y4\nG1 Z0 F100\nG1 X6 Y8 F60\nT2\nG1 Z-1 F0\nM123\n")
	st := gcode.Analyze(p, 300.0)

	if st.Commands != 4 {
		t.Errorf("Commands got %d want 4", st.Commands)
	}
	if st.ByKind[gcode.RapidMove] != 1 || st.ByKind[gcode.LinearMove] != 3 {
		t.Errorf("ByKind got %v", st.ByKind)
	}
	if st.RapidLength != 5.0 || st.FeedLength != 6.0 {
		t.Errorf("RapidLength, FeedLength got %v, %v want 5, 6", st.RapidLength, st.FeedLength)
	}
	if d := st.EstimatedTime - 6*time.Second; d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("EstimatedTime got %s want 6s", st.EstimatedTime)
	}
	if !reflect.DeepEqual(st.Tools, []uint{0, 2}) {
		t.Errorf("Tools got %v want [0 2]", st.Tools)
	}
	if st.NoFeedMoves != 1 {
		t.Errorf("NoFeedMoves got %d want 1", st.NoFeedMoves)
	}
	if st.Diagnostics != 1 {
		t.Errorf("Diagnostics got %d want 1", st.Diagnostics)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	st := gcode.Analyze(gcode.Build(""), 1000.0)
	if st.Commands != 0 || st.EstimatedTime != 0 || len(st.Tools) != 0 {
		t.Errorf("Analyze(empty) got %#v", st)
	}

	// Rapids are not timed without a rapid rate.
	st = gcode.Analyze(gcode.Build("G0 X100\n"), 0.0)
	if st.EstimatedTime != 0 || st.RapidLength != 100.0 {
		t.Errorf("Analyze(no rapid rate) got %#v", st)
	}
}

func TestLength(t *testing.T) {
	cmd := gcode.MotionCommand{
		Start: gcode.Position{X: 1, Y: 1, Z: 1},
		End:   gcode.Position{X: 3, Y: 4, Z: 7, A: 90},
	}
	if cmd.Length() != 7.0 {
		t.Errorf("Length() got %v want 7", cmd.Length())
	}
}
