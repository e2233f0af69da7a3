package gcode_test

import (
	"math"
	"testing"

	gcode "github.com/leftmike/gcsim"
)

func almostEqual(pos1, pos2 gcode.Position) bool {
	const delta = 0.000001
	return math.Abs(pos1.X-pos2.X) < delta && math.Abs(pos1.Y-pos2.Y) < delta &&
		math.Abs(pos1.Z-pos2.Z) < delta
}

func TestArcPoints(t *testing.T) {
	cases := []struct {
		s      string
		center gcode.Position
		radius float64
		n      int
	}{
		{s: "G2 X10 Y0 R5\n", center: gcode.Position{X: 5}, radius: 5},
		{s: "G3 X10 Y0 R5\n", center: gcode.Position{X: 5}, radius: 5},
		{s: "G2 X10 Y0 I5 J0\n", center: gcode.Position{X: 5}, radius: 5},
		{s: "G90.1 G3 X10 Y0 I5 J0\n", center: gcode.Position{X: 5}, radius: 5},
		{s: "G2 X0 Y0 I5\n", center: gcode.Position{X: 5}, radius: 5, n: 31},
		{s: "G18 G2 X10 Z0 R5\n", center: gcode.Position{X: 5}, radius: 5},
	}

	for _, c := range cases {
		p := gcode.Build(c.s)
		if p.Len() != 1 {
			t.Errorf("Build(%q) got %d commands", c.s, p.Len())
			continue
		}
		cmd := p.Commands[0]
		pts, err := gcode.ArcPoints(cmd, 1.0)
		if err != nil {
			t.Errorf("ArcPoints(%q) failed: %s", c.s, err)
			continue
		}
		if len(pts) < 2 {
			t.Errorf("ArcPoints(%q) got %d points", c.s, len(pts))
		}
		if c.n > 0 && len(pts) != c.n {
			t.Errorf("ArcPoints(%q) got %d points want %d", c.s, len(pts), c.n)
		}
		if pts[len(pts)-1] != cmd.End {
			t.Errorf("ArcPoints(%q) ends at %s want %s", c.s, pts[len(pts)-1], cmd.End)
		}
		for _, pt := range pts {
			r := math.Sqrt((pt.X-c.center.X)*(pt.X-c.center.X) +
				(pt.Y-c.center.Y)*(pt.Y-c.center.Y) + (pt.Z-c.center.Z)*(pt.Z-c.center.Z))
			if math.Abs(r-c.radius) > 0.000001 {
				t.Errorf("ArcPoints(%q): %s is %v from center want %v", c.s, pt, r, c.radius)
			}
		}
	}
}

func TestArcPointsDirection(t *testing.T) {
	// Clockwise from (0,0) to (10,0) around (5,0) passes over the top.
	p := gcode.Build("G2 X10 Y0 R5\n")
	pts, err := gcode.ArcPoints(p.Commands[0], 1.0)
	if err != nil {
		t.Fatalf("ArcPoints failed: %s", err)
	}
	mid := pts[len(pts)/2]
	if mid.Y <= 0.0 {
		t.Errorf("clockwise arc midpoint got %s want y > 0", mid)
	}

	p = gcode.Build("G3 X10 Y0 R5\n")
	pts, err = gcode.ArcPoints(p.Commands[0], 1.0)
	if err != nil {
		t.Fatalf("ArcPoints failed: %s", err)
	}
	mid = pts[len(pts)/2]
	if mid.Y >= 0.0 {
		t.Errorf("counter-clockwise arc midpoint got %s want y < 0", mid)
	}
}

func TestArcPointsHelix(t *testing.T) {
	p := gcode.Build("G0 A45\nG2 X0 Y0 Z-3 I5 P2\n")
	cmd := p.Commands[1]
	pts, err := gcode.ArcPoints(cmd, 0.5)
	if err != nil {
		t.Fatalf("ArcPoints failed: %s", err)
	}
	prev := cmd.Start.Z
	for _, pt := range pts {
		if pt.Z > prev {
			t.Errorf("helix point %s rises above %v", pt, prev)
		}
		if pt.A != 45.0 {
			t.Errorf("helix point %s lost rotary axis", pt)
		}
		prev = pt.Z
	}
	if !almostEqual(pts[len(pts)-1], gcode.Position{Z: -3}) {
		t.Errorf("helix ends at %s", pts[len(pts)-1])
	}
}

func TestArcPointsFail(t *testing.T) {
	cases := []string{
		"G2 X0 Y0 R5\n",     // same endpoint with radius
		"G2 X30 Y0 R5\n",    // radius too small
		"G2 X10 Y0\n",       // no center or radius
		"G2 X10 Y0 I5 R5\n", // both
		"G1 X1\nG2 X2 R0\n", // zero radius
		"G2 X10 Y0 I0 J0\n", // center at start
	}

	for _, s := range cases {
		p := gcode.Build(s)
		cmd := p.Commands[p.Len()-1]
		_, err := gcode.ArcPoints(cmd, 1.0)
		if err == nil {
			t.Errorf("ArcPoints(%q) did not fail", s)
		}
		pts := gcode.Tessellate(cmd, 1.0)
		if len(pts) != 1 || pts[0] != cmd.End {
			t.Errorf("Tessellate(%q) got %v want [%s]", s, pts, cmd.End)
		}
	}
}

func TestArcPointsStraight(t *testing.T) {
	p := gcode.Build("G1 X5 Y5\n")
	pts, err := gcode.ArcPoints(p.Commands[0], 1.0)
	if err != nil || len(pts) != 1 || pts[0] != p.Commands[0].End {
		t.Errorf("ArcPoints(linear) got %v, %v", pts, err)
	}

	p = gcode.Build("G2 X10 R5\n")
	_, err = gcode.ArcPoints(p.Commands[0], 0.0)
	if err == nil {
		t.Errorf("ArcPoints(step 0) did not fail")
	}
}

func TestArcPointsLimit(t *testing.T) {
	cases := []struct {
		s    string
		endZ float64
	}{
		{s: "G2 X0 Y0 Z1 I5 P100000\n", endZ: 1},
		{s: "G2 X0 Y0 Z1 I5 P2000000000\n", endZ: 1},
		{s: "G3 X0 Y0 I1000000\n"},
		{s: "G2 X99999 Y0 R50000\n"},
	}

	for _, c := range cases {
		p := gcode.Build(c.s)
		if p.Len() != 1 {
			t.Errorf("Build(%q) got %d commands", c.s, p.Len())
			continue
		}
		cmd := p.Commands[0]
		pts, err := gcode.ArcPoints(cmd, 0.5)
		if err != nil {
			t.Errorf("ArcPoints(%q) failed: %s", c.s, err)
			continue
		}
		if len(pts) > gcode.MaxArcPoints {
			t.Errorf("ArcPoints(%q) got %d points want at most %d", c.s, len(pts),
				gcode.MaxArcPoints)
		}
		if pts[len(pts)-1] != cmd.End || cmd.End.Z != c.endZ {
			t.Errorf("ArcPoints(%q) ends at %s", c.s, pts[len(pts)-1])
		}
		if n := len(gcode.Tessellate(cmd, 0.001)); n > gcode.MaxArcPoints {
			t.Errorf("Tessellate(%q) got %d points", c.s, n)
		}
	}
}
