package gcode

import (
	"fmt"
	"math"
)

// Machine receives the effects of interpreting a program, one statement
// at a time. Modal settings are reported before the move on the same line.
type Machine interface {
	SetFeed(feed float64) error
	SetSpindleSpeed(speed float64) error
	SpindleOn(clockwise bool) error
	SpindleOff() error
	SelectTool(tool uint) error
	SetCoolant(on bool) error
	RapidTo(line int, pos Position) error
	LinearTo(line int, pos Position) error
	ArcTo(line int, pos Position, arc ArcWords, clockwise bool) error
	EndProgram() error
}

// Engine interprets statements in absolute distance mode. Problems in the
// program text are reported to Diagnose and never stop interpretation; only
// errors returned by the Machine do.
type Engine struct {
	machine Machine

	// Diagnose, if not nil, is called for every diagnostic.
	Diagnose func(d Diagnostic)

	units           float64 // 1.0 for mm and 25.4 for in
	curPos          Position
	moveMode        MotionKind
	arcPlane        Plane
	absoluteArcMode bool
	ended           bool
	endLine         int
}

func NewEngine(m Machine, start Position) *Engine {
	return &Engine{
		machine:  m,
		units:    1.0, // default units is mm
		curPos:   start,
		moveMode: LinearMove,
		arcPlane: XYPlane,
	}
}

// Ended reports whether a program end (M2 or M30) has been interpreted, and
// on which line.
func (eng *Engine) Ended() (bool, int) {
	return eng.ended, eng.endLine
}

func (eng *Engine) Position() Position {
	return eng.curPos
}

func (eng *Engine) diagnose(line int, kind DiagnosticKind, format string, args ...interface{}) {
	if eng.Diagnose != nil {
		eng.Diagnose(Diagnostic{Line: line, Kind: kind, Text: fmt.Sprintf(format, args...)})
	}
}

// Evaluate interprets statements in order until they are used up or the
// program ends.
func (eng *Engine) Evaluate(stmts []Statement) error {
	for _, stmt := range stmts {
		if eng.ended {
			break
		}
		err := eng.EvaluateStatement(stmt)
		if err != nil {
			return err
		}
	}
	return nil
}

// codeNumber turns a G or M number into tenths so that G28.1 can be
// matched exactly: G28.1 is 281. ok is false for anything finer than tenths.
func codeNumber(val float64) (int, bool) {
	n := math.Round(val * 10.0)
	if math.Abs(val*10.0-n) > 0.001 || n < 0 || n > 100000 {
		return 0, false
	}
	return int(n), true
}

func (eng *Engine) evaluateG(line int, tok Token, motion *bool) {
	num, ok := codeNumber(tok.Value)
	if !ok {
		eng.diagnose(line, UnknownCommand, "unexpected code: %s", tok)
		return
	}

	switch num {
	case 0: // G0: rapid move
		eng.moveMode = RapidMove
		*motion = true
	case 10: // G1: linear move
		eng.moveMode = LinearMove
		*motion = true
	case 20: // G2: clockwise arc move
		eng.moveMode = ClockwiseArcMove
		*motion = true
	case 30: // G3: counter-clockwise arc move
		eng.moveMode = CounterClockwiseArcMove
		*motion = true
	case 170: // G17: XY plane selection
		eng.arcPlane = XYPlane
	case 180: // G18: ZX plane selection
		eng.arcPlane = ZXPlane
	case 190: // G19: YZ plane selection
		eng.arcPlane = YZPlane
	case 200: // G20: coordinates in inches
		eng.units = mmPerInch
	case 210: // G21: coordinates in mm
		eng.units = 1.0
	case 900: // G90: absolute distance mode
	case 901: // G90.1: absolute arc mode
		eng.absoluteArcMode = true
	case 910: // G91: incremental distance mode
		eng.diagnose(line, Unsupported, "incremental distance mode (G91) is not supported; "+
			"coordinates remain absolute")
	case 911: // G91.1: incremental arc mode
		eng.absoluteArcMode = false
	case 40, 400, 430, 490, 610, 640, 800, 940:
		// G4: dwell, G40: cutter compensation off, G43 and G49: tool length offset,
		// G61 and G64: path control, G80: cancel canned cycle, G94: feed per minute
	case 540, 550, 560, 570, 580, 590, 591, 592, 593:
		// G54 to G59.3: coordinate systems; no offsets are set so these are identity.
	case 410, 420, 810, 820, 830, 840, 850, 860, 870, 880, 890:
		// G41 and G42: cutter compensation, G81 to G89: canned cycles
		eng.diagnose(line, Unsupported, "code not supported: %s", tok)
	default:
		eng.diagnose(line, UnknownCommand, "unknown code: %s", tok)
	}
}

type lineWords struct {
	motion   bool
	axes     bool
	arcWords bool
	pos      Position
	arc      ArcWords
	feed     *float64
	speed    *float64
	tool     *uint
	spindle  int // 0: unchanged, 3: M3, 4: M4, 5: M5
	coolant  int // 0: unchanged, 1: on, -1: off
	endsProg bool
	known    bool
}

func (eng *Engine) evaluateM(line int, tok Token, lw *lineWords) {
	num, ok := codeNumber(tok.Value)
	if !ok {
		eng.diagnose(line, UnknownCommand, "unexpected code: %s", tok)
		return
	}

	switch num {
	case 0, 10: // M0, M1: program pause
	case 20, 300: // M2, M30: end program
		lw.endsProg = true
	case 30: // M3: spindle on clockwise
		lw.spindle = 3
	case 40: // M4: spindle on counter-clockwise
		lw.spindle = 4
	case 50: // M5: spindle off
		lw.spindle = 5
	case 60: // M6: tool change; the tool is selected by T
	case 70, 80: // M7, M8: coolant on
		lw.coolant = 1
	case 90: // M9: coolant off
		lw.coolant = -1
	default:
		eng.diagnose(line, UnknownCommand, "unknown code: %s", tok)
	}
}

// EvaluateStatement interprets a single statement. G codes are handled
// first so that mode and units changes apply to the rest of the line.
func (eng *Engine) EvaluateStatement(stmt Statement) error {
	toks, diags := Tokens(stmt)
	for _, d := range diags {
		if eng.Diagnose != nil {
			eng.Diagnose(d)
		}
	}
	if len(toks) == 0 {
		return nil
	}

	lw := lineWords{
		pos: eng.curPos,
	}
	for _, tok := range toks {
		if tok.Letter == 'G' {
			lw.known = true
			eng.evaluateG(stmt.Line, tok, &lw.motion)
		}
	}
	lw.arc = ArcWords{Plane: eng.arcPlane, Turns: 1, AbsoluteCenter: eng.absoluteArcMode}

	for _, tok := range toks {
		val := tok.Value
		switch tok.Letter {
		case 'G':
			// Already done.
		case 'M':
			lw.known = true
			eng.evaluateM(stmt.Line, tok, &lw)
		case 'N':
			lw.known = true
		case 'F':
			lw.known = true
			if val < 0.0 {
				eng.diagnose(stmt.Line, TokenParseFailure, "feed must not be negative: %s", tok)
				continue
			}
			feed := val * eng.units
			lw.feed = &feed
		case 'S':
			lw.known = true
			if val < 0.0 {
				eng.diagnose(stmt.Line, TokenParseFailure,
					"spindle speed must not be negative: %s", tok)
				continue
			}
			lw.speed = &val
		case 'T':
			lw.known = true
			if val < 0.0 || val != math.Trunc(val) || val > math.MaxUint32 {
				eng.diagnose(stmt.Line, TokenParseFailure,
					"expected a non-negative integer: %s", tok)
				continue
			}
			tool := uint(val)
			lw.tool = &tool
		case 'X':
			lw.known, lw.axes = true, true
			lw.pos.X = val * eng.units
		case 'Y':
			lw.known, lw.axes = true, true
			lw.pos.Y = val * eng.units
		case 'Z':
			lw.known, lw.axes = true, true
			lw.pos.Z = val * eng.units
		case 'A':
			lw.known, lw.axes = true, true
			lw.pos.A = val
		case 'B':
			lw.known, lw.axes = true, true
			lw.pos.B = val
		case 'C':
			lw.known, lw.axes = true, true
			lw.pos.C = val
		case 'I':
			lw.known, lw.arcWords, lw.arc.HasCenter = true, true, true
			lw.arc.I = val * eng.units
		case 'J':
			lw.known, lw.arcWords, lw.arc.HasCenter = true, true, true
			lw.arc.J = val * eng.units
		case 'K':
			lw.known, lw.arcWords, lw.arc.HasCenter = true, true, true
			lw.arc.K = val * eng.units
		case 'R':
			lw.known, lw.arcWords, lw.arc.HasRadius = true, true, true
			lw.arc.R = val * eng.units
		case 'P':
			// Turns for arcs; dwell time for G4.
			if eng.moveMode.IsArc() {
				if val < 1.0 || val != math.Trunc(val) {
					eng.diagnose(stmt.Line, TokenParseFailure,
						"expected a positive number of turns: %s", tok)
					continue
				}
				lw.arc.Turns = int(val)
			}
		}
	}

	if !lw.known {
		eng.diagnose(stmt.Line, UnknownCommand, "no recognized code: %s", stmt.Text)
		return nil
	}

	return eng.execute(stmt.Line, &lw)
}

func (eng *Engine) execute(line int, lw *lineWords) error {
	var err error
	if lw.feed != nil {
		err = eng.machine.SetFeed(*lw.feed)
		if err != nil {
			return err
		}
	}
	if lw.speed != nil {
		err = eng.machine.SetSpindleSpeed(*lw.speed)
		if err != nil {
			return err
		}
	}
	if lw.tool != nil {
		err = eng.machine.SelectTool(*lw.tool)
		if err != nil {
			return err
		}
	}
	switch lw.spindle {
	case 3:
		err = eng.machine.SpindleOn(true)
	case 4:
		err = eng.machine.SpindleOn(false)
	case 5:
		err = eng.machine.SpindleOff()
	}
	if err != nil {
		return err
	}
	if lw.coolant != 0 {
		err = eng.machine.SetCoolant(lw.coolant > 0)
		if err != nil {
			return err
		}
	}

	if lw.motion || lw.axes || (lw.arcWords && eng.moveMode.IsArc()) {
		switch eng.moveMode {
		case RapidMove:
			err = eng.machine.RapidTo(line, lw.pos)
		case LinearMove:
			err = eng.machine.LinearTo(line, lw.pos)
		case ClockwiseArcMove, CounterClockwiseArcMove:
			err = eng.machine.ArcTo(line, lw.pos, lw.arc, eng.moveMode == ClockwiseArcMove)
		default:
			panic(fmt.Sprintf("unexpected moveMode: %d", eng.moveMode))
		}
		if err != nil {
			return err
		}
		eng.curPos = lw.pos
	}

	if lw.endsProg {
		eng.ended = true
		eng.endLine = line
		eng.moveMode = LinearMove
		eng.arcPlane = XYPlane
		eng.units = 1.0
		return eng.machine.EndProgram()
	}
	return nil
}
