package gcode

import (
	"math"
	"time"
)

// Stats summarizes a program for display.
type Stats struct {
	Commands      int                `json:"commands"`
	ByKind        map[MotionKind]int `json:"byKind"`
	RapidLength   float64            `json:"rapidLength"` // mm
	FeedLength    float64            `json:"feedLength"`  // mm
	EstimatedTime time.Duration      `json:"estimatedTime"`
	Tools         []uint             `json:"tools"` // in order of first use
	NoFeedMoves   int                `json:"noFeedMoves"`
	Diagnostics   int                `json:"diagnostics"`
}

func distance(pos1, pos2 Position) float64 {
	dx := pos2.X - pos1.X
	dy := pos2.Y - pos1.Y
	dz := pos2.Z - pos1.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Length of the straight segment from Start to End; arcs are measured as
// chords.
func (cmd MotionCommand) Length() float64 {
	return distance(cmd.Start, cmd.End)
}

// Analyze measures a program. Feed moves are timed at their feed rate (mm
// per minute) and rapids at rapidRate; feed moves without a feed rate are
// counted but not timed.
func Analyze(p *Program, rapidRate float64) Stats {
	st := Stats{
		Commands:    len(p.Commands),
		ByKind:      map[MotionKind]int{},
		Diagnostics: len(p.Diagnostics),
	}

	var minutes float64
	seen := map[uint]bool{}
	for _, cmd := range p.Commands {
		st.ByKind[cmd.Kind] += 1
		if !seen[cmd.Tool] {
			seen[cmd.Tool] = true
			st.Tools = append(st.Tools, cmd.Tool)
		}

		l := cmd.Length()
		if cmd.Kind == RapidMove {
			st.RapidLength += l
			if rapidRate > 0.0 {
				minutes += l / rapidRate
			}
		} else {
			st.FeedLength += l
			if cmd.Feed > 0.0 {
				minutes += l / cmd.Feed
			} else if l > 0.0 {
				st.NoFeedMoves += 1
			}
		}
	}

	st.EstimatedTime = time.Duration(minutes * float64(time.Minute))
	return st
}
