package playback

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	gcode "github.com/leftmike/gcsim"
)

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultSpeed    = 1.0
	MinSpeed        = 0.1
	MaxSpeed        = 5.0
)

type Status byte

const (
	Idle Status = iota
	Playing
	Paused
	Stopped
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", byte(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is where playback is: Commands[:Index] have been executed.
type State struct {
	Status Status  `json:"status"`
	Index  int     `json:"index"`
	Speed  float64 `json:"speed"`
}

// Snapshot is what an observer sees after a change. Current is the last
// executed command, nil at index 0.
type Snapshot struct {
	Index   int                  `json:"index"`
	Total   int                  `json:"total"`
	Status  Status               `json:"status"`
	Speed   float64              `json:"speed"`
	State   gcode.MachineState   `json:"state"`
	Current *gcode.MotionCommand `json:"current,omitempty"`
}

// Controller steps an index through a program. It is not safe for
// concurrent use; drive it from one goroutine (see Run).
type Controller struct {
	program   *gcode.Program
	status    Status
	index     int
	speed     float64
	interval  time.Duration
	state     gcode.MachineState
	observers []func(Snapshot)
	logger    *slog.Logger
}

type Option func(c *Controller)

// WithObserver adds fn to the functions called with a snapshot whenever the
// index, status, or speed changes.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, fn)
	}
}

// WithInterval sets the time between ticks at speed 1.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithSpeed(speed float64) Option {
	return func(c *Controller) {
		c.speed = clampSpeed(speed)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(opts ...Option) *Controller {
	c := &Controller{
		status:   Idle,
		speed:    DefaultSpeed,
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// clampSpeed keeps speed in [MinSpeed, MaxSpeed]; NaN is DefaultSpeed.
func clampSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		return DefaultSpeed
	} else if speed < MinSpeed {
		return MinSpeed
	} else if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

func (c *Controller) total() int {
	if c.program == nil {
		return 0
	}
	return len(c.program.Commands)
}

func (c *Controller) notify() {
	if len(c.observers) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.observers {
		fn(snap)
	}
}

// Load replaces the program and rewinds to the start; playback is stopped.
// Loading nil returns the controller to idle.
func (c *Controller) Load(p *gcode.Program) {
	c.program = p
	c.index = 0
	if p == nil {
		c.status = Idle
		c.state = gcode.MachineState{}
	} else {
		c.status = Stopped
		c.state = p.Initial
	}
	c.logger.Debug("load", "commands", c.total())
	c.notify()
}

func (c *Controller) Program() *gcode.Program {
	return c.program
}

func (c *Controller) rewind() {
	c.index = 0
	c.state = c.program.Initial
}

// Play starts or resumes playback. At the end of the program it starts
// again from the beginning; a program without commands stays stopped.
func (c *Controller) Play() {
	if c.status == Idle || c.status == Playing || c.total() == 0 {
		return
	}
	if c.index == c.total() {
		c.rewind()
	}
	c.status = Playing
	c.notify()
}

func (c *Controller) Pause() {
	if c.status != Playing {
		return
	}
	c.status = Paused
	c.notify()
}

// Stop rewinds to the start. Stopping again does nothing.
func (c *Controller) Stop() {
	if c.status == Idle || (c.status == Stopped && c.index == 0) {
		return
	}
	c.status = Stopped
	c.rewind()
	c.notify()
}

func (c *Controller) advance() {
	c.state.Apply(c.program.Commands[c.index])
	c.index += 1
}

// Tick advances one command while playing; reaching the end stops
// playback.
func (c *Controller) Tick() {
	if c.status != Playing {
		return
	}
	if c.index < c.total() {
		c.advance()
	}
	if c.index == c.total() {
		c.status = Stopped
	}
	c.notify()
}

func (c *Controller) StepForward() {
	if c.program == nil || c.index >= c.total() {
		return
	}
	c.advance()
	c.notify()
}

func (c *Controller) StepBackward() {
	if c.program == nil || c.index == 0 {
		return
	}
	c.index -= 1
	c.state = gcode.Replay(c.program.Commands, c.index, c.program.Initial)
	c.notify()
}

// Seek moves to index, clamped to the program, and rebuilds the machine
// state by replaying from the start.
func (c *Controller) Seek(index int) {
	if c.program == nil {
		return
	}
	if index < 0 || index > c.total() {
		c.logger.Debug("seek out of range", "index", index, "total", c.total())
		if index < 0 {
			index = 0
		} else {
			index = c.total()
		}
	}
	if index == c.index {
		return
	}
	c.index = index
	c.state = gcode.Replay(c.program.Commands, c.index, c.program.Initial)
	c.notify()
}

// SetSpeed sets the playback speed multiplier, clamped to [MinSpeed,
// MaxSpeed].
func (c *Controller) SetSpeed(speed float64) {
	speed = clampSpeed(speed)
	if speed == c.speed {
		return
	}
	c.speed = speed
	c.notify()
}

// Interval is the time between ticks at the current speed.
func (c *Controller) Interval() time.Duration {
	return time.Duration(math.Round(float64(c.interval) / c.speed))
}

func (c *Controller) State() State {
	return State{
		Status: c.status,
		Index:  c.index,
		Speed:  c.speed,
	}
}

func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Index:  c.index,
		Total:  c.total(),
		Status: c.status,
		Speed:  c.speed,
		State:  c.state,
	}
	if c.index > 0 {
		cmd := c.program.Commands[c.index-1]
		snap.Current = &cmd
	}
	return snap
}
