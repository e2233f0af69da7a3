package gcode

// Tracker is the Machine used to build a Program: it keeps the live
// MachineState and records a MotionCommand for every move.
type Tracker struct {
	state    MachineState
	commands []MotionCommand
}

func NewTracker(initial MachineState) *Tracker {
	return &Tracker{state: initial}
}

func (t *Tracker) State() MachineState {
	return t.state
}

func (t *Tracker) Commands() []MotionCommand {
	return t.commands
}

func (t *Tracker) SetFeed(feed float64) error {
	t.state.Feed = feed
	return nil
}

func (t *Tracker) SetSpindleSpeed(speed float64) error {
	t.state.SpindleSpeed = speed
	return nil
}

func (t *Tracker) SpindleOn(clockwise bool) error {
	t.state.SpindleOn = true
	t.state.SpindleClockwise = clockwise
	return nil
}

func (t *Tracker) SpindleOff() error {
	t.state.SpindleOn = false
	return nil
}

func (t *Tracker) SelectTool(tool uint) error {
	t.state.Tool = tool
	return nil
}

func (t *Tracker) SetCoolant(on bool) error {
	t.state.CoolantOn = on
	return nil
}

func (t *Tracker) EndProgram() error {
	t.state.SpindleOn = false
	t.state.CoolantOn = false
	return nil
}

func (t *Tracker) moveTo(line int, kind MotionKind, pos Position, arc *ArcWords) {
	cmd := MotionCommand{
		Line:             line,
		Kind:             kind,
		Start:            t.state.Position,
		End:              pos,
		Feed:             t.state.Feed,
		SpindleSpeed:     t.state.SpindleSpeed,
		SpindleOn:        t.state.SpindleOn,
		SpindleClockwise: t.state.SpindleClockwise,
		Tool:             t.state.Tool,
		CoolantOn:        t.state.CoolantOn,
		Arc:              arc,
	}
	t.commands = append(t.commands, cmd)
	t.state.Apply(cmd)
}

func (t *Tracker) RapidTo(line int, pos Position) error {
	t.moveTo(line, RapidMove, pos, nil)
	return nil
}

func (t *Tracker) LinearTo(line int, pos Position) error {
	t.moveTo(line, LinearMove, pos, nil)
	return nil
}

func (t *Tracker) ArcTo(line int, pos Position, arc ArcWords, clockwise bool) error {
	kind := CounterClockwiseArcMove
	if clockwise {
		kind = ClockwiseArcMove
	}
	t.moveTo(line, kind, pos, &arc)
	return nil
}
