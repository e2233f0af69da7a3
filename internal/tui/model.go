// Package tui is the terminal renderer: the program source and an XY plot
// of the toolpath, colored as playback moves through them.
package tui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	gcode "github.com/leftmike/gcsim"
	"github.com/leftmike/gcsim/internal/logging"
	"github.com/leftmike/gcsim/internal/workspace"
	"github.com/leftmike/gcsim/playback"
)

type Options struct {
	Tessellate bool    // draw arcs as arcs in the plot
	ArcStep    float64 // mm between arc points
	Logger     *slog.Logger
}

// ReloadMsg tells the model that the workspace has a new revision.
type ReloadMsg workspace.Snapshot

type tickMsg struct {
	id int
}

type Model struct {
	ws     *workspace.Workspace
	ctrl   *playback.Controller
	opts   Options
	logger *slog.Logger

	program  *gcode.Program
	revision int
	source   []string
	executed []string // source lines, prerendered
	pending  []string
	plot     *plot

	// The source pane as shown; refresh restyles only the lines whose
	// class changed since shownDone and shownNext.
	view      []string
	shownDone int
	shownNext int
	restyled  int

	viewport viewport.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	width, height int
	ready         bool
	tickID        int
}

// New returns a model showing the workspace's program, played by ctrl.
func New(ws *workspace.Workspace, ctrl *playback.Controller, opts Options) Model {
	if opts.ArcStep <= 0.0 {
		opts.ArcStep = 0.5
	}
	m := Model{
		ws:       ws,
		ctrl:     ctrl,
		opts:     opts,
		logger:   logging.Component(opts.Logger, "tui"),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     newKeyMap(),
	}

	snap := ws.Snapshot()
	if ctrl.Program() != snap.Program {
		ctrl.Load(snap.Program)
	}
	m.setProgram(snap)
	return m
}

func (m *Model) setProgram(snap workspace.Snapshot) {
	m.program = snap.Program
	m.revision = snap.Revision
	m.source = gcode.SourceLines(snap.Text)
	m.executed = make([]string, len(m.source))
	m.pending = make([]string, len(m.source))
	for idx, s := range m.source {
		num := LineNumberStyle.Render(fmt.Sprintf("%4d ", idx+1))
		m.executed[idx] = num + ExecutedLineStyle.Render(s)
		m.pending[idx] = num + PendingLineStyle.Render(s)
	}
	m.view = nil
	if m.ready {
		m.viewport.SetContent(strings.Join(m.pending, "\n"))
		m.plot = newPlot(m.plotSize())
	}
}

func (m Model) plotOptions() plotOptions {
	return plotOptions{tessellate: m.opts.Tessellate, step: m.opts.ArcStep}
}

func (m *Model) paneWidths() (int, int) {
	src := m.width * 2 / 5
	return src, m.width - src
}

func (m *Model) bodyHeight() int {
	h := m.height - 3 - lipgloss.Height(m.help.View(m.keys))
	return max(h, 3)
}

func (m *Model) plotSize() (*gcode.Program, int, int, plotOptions) {
	_, w := m.paneWidths()
	return m.program, w - 2, m.bodyHeight() - 2, m.plotOptions()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.progress.Width = width

	src, _ := m.paneWidths()
	if !m.ready {
		m.viewport = viewport.New(src-2, m.bodyHeight()-2)
		m.viewport.SetContent(strings.Join(m.pending, "\n"))
		m.ready = true
	} else {
		m.viewport.Width = src - 2
		m.viewport.Height = m.bodyHeight() - 2
	}
	m.plot = newPlot(m.plotSize())
	m.refresh()
}

// lines returns the last line executed and the line of the next command.
func (m *Model) lines() (int, int) {
	idx := m.ctrl.State().Index
	cmds := m.program.Commands
	done, next := 0, 0
	if idx > 0 {
		done = cmds[idx-1].Line
	}
	if idx < len(cmds) {
		next = cmds[idx].Line
	} else if len(cmds) > 0 {
		done = len(m.source)
	}
	return done, next
}

func (m *Model) lineView(idx, done, next int) string {
	n := idx + 1
	if n <= done {
		return m.executed[idx]
	} else if n == next {
		return LineNumberStyle.Render(fmt.Sprintf("%4d>", n)) + NextLineStyle.Render(m.source[idx])
	}
	return m.pending[idx]
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}

	done, next := m.lines()
	if m.view == nil {
		m.view = make([]string, len(m.source))
		for idx := range m.source {
			m.view[idx] = m.lineView(idx, done, next)
		}
		m.restyled = len(m.source)
	} else {
		m.restyled = 0
		restyle := func(n int) {
			if n > 0 && n <= len(m.view) {
				m.view[n-1] = m.lineView(n-1, done, next)
				m.restyled += 1
			}
		}

		lo, hi := min(m.shownDone, done), max(m.shownDone, done)
		for n := lo + 1; n <= hi; n++ {
			restyle(n)
		}
		if m.shownNext != next {
			for _, n := range []int{m.shownNext, next} {
				if n <= lo || n > hi {
					restyle(n)
				}
			}
		}
	}
	m.shownDone, m.shownNext = done, next

	focus := next
	if focus == 0 {
		focus = done
	}
	if focus > 0 {
		top := m.viewport.YOffset
		if focus-1 < top || focus-1 >= top+m.viewport.Height {
			m.viewport.SetYOffset(focus - 1 - m.viewport.Height/2)
		}
	}
}

// sourceView renders the visible window of the source pane.
func (m *Model) sourceView(width int) string {
	top := m.viewport.YOffset
	end := min(top+m.viewport.Height, len(m.view))
	top = min(top, end)
	return lipgloss.NewStyle().MaxWidth(width).Height(m.viewport.Height).
		MaxHeight(m.viewport.Height).Render(strings.Join(m.view[top:end], "\n"))
}

func tickCmd(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

// startTicks begins a new chain of ticks; ticks from earlier chains are
// ignored.
func (m *Model) startTicks() tea.Cmd {
	m.tickID += 1
	return tickCmd(m.tickID, m.ctrl.Interval())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		if msg.id != m.tickID {
			return m, nil
		}
		m.ctrl.Tick()
		m.refresh()
		if m.ctrl.State().Status == playback.Playing {
			return m, tickCmd(m.tickID, m.ctrl.Interval())
		}
		return m, nil

	case ReloadMsg:
		m.reload(workspace.Snapshot(msg))
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// reload keeps the playback position and status across a new program;
// playback stops if the new program ends before the old position.
func (m *Model) reload(snap workspace.Snapshot) {
	p := snap.Program
	st := m.ctrl.State()
	m.ctrl.Load(p)
	m.ctrl.Seek(st.Index)
	if m.ctrl.State().Index < p.Len() {
		switch st.Status {
		case playback.Playing:
			m.ctrl.Play()
		case playback.Paused:
			m.ctrl.Play()
			m.ctrl.Pause()
		}
	}
	m.logger.Info("reload", "revision", snap.Revision, "commands", p.Len())

	m.setProgram(snap)
	m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Play):
		if m.ctrl.State().Status == playback.Playing {
			m.ctrl.Pause()
		} else {
			m.ctrl.Play()
			if m.ctrl.State().Status == playback.Playing {
				cmd = m.startTicks()
			}
		}
	case key.Matches(msg, m.keys.Stop):
		m.ctrl.Stop()
	case key.Matches(msg, m.keys.Forward):
		m.ctrl.StepForward()
	case key.Matches(msg, m.keys.Back):
		m.ctrl.StepBackward()
	case key.Matches(msg, m.keys.Faster):
		m.ctrl.SetSpeed(m.ctrl.State().Speed * 2)
	case key.Matches(msg, m.keys.Slower):
		m.ctrl.SetSpeed(m.ctrl.State().Speed / 2)
	case key.Matches(msg, m.keys.Start):
		m.ctrl.Seek(0)
	case key.Matches(msg, m.keys.End):
		m.ctrl.Seek(m.program.Len())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		if m.ready {
			m.resize(m.width, m.height)
		}
	default:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, cmd
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func onOff(on bool, s string) string {
	if on {
		return OnStyle.Render(s)
	}
	return OffStyle.Render(s)
}

func (m Model) header() string {
	name := "(untitled)"
	if m.ws.Path() != "" {
		name = filepath.Base(m.ws.Path())
	}
	s := TitleStyle.Render("gcsim") + " " + PathStyle.Render(fmt.Sprintf("%s rev %d", name,
		m.revision))
	if n := len(m.program.Diagnostics); n > 0 {
		s += " " + ErrorStyle.Render(fmt.Sprintf("%d diagnostics", n))
	}
	return s
}

func (m Model) status() string {
	snap := m.ctrl.Snapshot()
	ms := snap.State
	spindle := "M5"
	if ms.SpindleOn && ms.SpindleClockwise {
		spindle = "M3"
	} else if ms.SpindleOn {
		spindle = "M4"
	}

	return StatusStyle.Render(strings.ToUpper(snap.Status.String())) +
		StatusTextStyle.Render(fmt.Sprintf("%d/%d x%s", snap.Index, snap.Total,
			formatNumber(snap.Speed))) +
		StatusTextStyle.Render(fmt.Sprintf("X%.3f Y%.3f Z%.3f", ms.Position.X, ms.Position.Y,
			ms.Position.Z)) +
		StatusTextStyle.Render(fmt.Sprintf("F%s S%s T%d", formatNumber(ms.Feed),
			formatNumber(ms.SpindleSpeed), ms.Tool)) +
		" " + onOff(ms.SpindleOn, spindle) + " " + onOff(ms.CoolantOn, "coolant")
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	src, plt := m.paneWidths()
	snap := m.ctrl.Snapshot()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		PanelStyle.Width(src-2).Render(m.sourceView(src-2)),
		PanelStyle.Width(plt-2).Render(m.plot.render(snap.Index, snap.State.Position,
			plotStyles)))

	var done float64
	if snap.Total > 0 {
		done = float64(snap.Index) / float64(snap.Total)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		body,
		m.status(),
		m.progress.ViewAs(done),
		m.help.View(m.keys))
}
