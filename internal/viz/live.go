package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/attach"
	"github.com/san-kum/animattach/internal/metrics"
	"github.com/san-kum/animattach/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 16
	canvasScale     = 12
	historyCapacity = 600
)

type TickMsg time.Time

// Model steps a runner one tick per frame and renders what it returns.
type Model struct {
	runner  *sim.Runner
	cfg     sim.Config
	canvas  *Canvas
	snaps   []attach.Snapshot
	samples []metrics.Sample
	errors  map[string][]float64

	selected int
	running  bool
	done     bool
	err      error
	notice   string
}

// NewModel starts r with cfg. The returned model owns r from here on.
func NewModel(r *sim.Runner, cfg sim.Config) (Model, error) {
	if err := r.Start(cfg); err != nil {
		return Model{}, err
	}
	return Model{
		runner:  r,
		cfg:     cfg,
		canvas:  NewCanvas(canvasWidth, canvasHeight, canvasScale),
		errors:  make(map[string][]float64),
		running: true,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Done() bool                   { return m.done }
func (m Model) Err() error                   { return m.err }
func (m Model) Snapshots() []attach.Snapshot { return m.snaps }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "tab":
			if len(m.snaps) > 0 {
				m.selected = (m.selected + 1) % len(m.snaps)
			}
		case "c":
			m.recapture()
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.done {
		return
	}
	snaps, err := m.runner.Step()
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	m.snaps = snaps
	if m.selected >= len(snaps) {
		m.selected = 0
	}

	res := m.runner.Result()
	m.samples = nil
	if n := len(res.Samples); n > 0 {
		m.samples = res.Samples[n-1]
	}
	for _, s := range m.samples {
		hist := append(m.errors[s.Body], s.PositionError())
		if len(hist) > historyCapacity {
			hist = hist[1:]
		}
		m.errors[s.Body] = hist
	}

	if m.runner.Tick() >= m.cfg.Ticks {
		m.done = true
		m.running = false
	}
}

func (m *Model) recapture() {
	if m.selected >= len(m.snaps) {
		return
	}
	id := m.snaps[m.selected].Dependent
	b, ok := m.runner.Scene().Body(id)
	if !ok {
		m.notice = "no dependent to recapture"
		return
	}
	if err := m.runner.Engine().Recapture(b); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = "recapturing " + id
}

func (m *Model) draw() {
	m.canvas.Clear()
	origin := r3.Vec{}
	m.canvas.Mark(origin)
	for _, s := range m.snaps {
		if s.FrameValid {
			m.canvas.Segment(origin, s.Frame.Position)
		}
	}
	for _, s := range m.samples {
		m.canvas.Mark(s.Actual.Position)
		if s.Propagated {
			m.canvas.Segment(s.Actual.Position, s.Target.Position)
		}
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR " + m.err.Error())
	case m.done:
		return StatusPaused.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	sc := m.runner.Scene()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(sc.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	progress := float64(m.runner.Tick()) / float64(m.cfg.Ticks)
	s.WriteString(ProgressBar(progress, 30) + "\n")
	s.WriteString(labelStyle.Render("Tick") + valueStyle.Render(fmt.Sprintf("%d/%d", m.runner.Tick(), m.cfg.Ticks)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", sc.Time())) + "\n")
	s.WriteString(labelStyle.Render("Phase") + valueStyle.Render(m.runner.Engine().Phase().String()) + "\n")
	s.WriteString(labelStyle.Render("Warp") + valueStyle.Render(fmt.Sprintf("%gx", sc.WarpRate())) + "\n\n")

	s.WriteString(m.table())

	if m.selected < len(m.snaps) {
		body := m.snaps[m.selected].Dependent
		if hist := m.errors[body]; len(hist) > 1 {
			s.WriteString("\n" + Sparkline(hist, 40) + "\n")
			chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(40), asciigraph.Caption(body+" position error"))
			s.WriteString(graphStyle.Render(chart) + "\n")
		}
	}
	if m.notice != "" {
		s.WriteString("\n" + valueStyle.Render(m.notice) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause N:Step TAB:Select C:Recapture Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func (m Model) table() string {
	if len(m.snaps) == 0 {
		return labelStyle.Render("(no attachments)") + "\n"
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-3s %-10s %-8s %-10s %-13s %s", "#", "BODY", "KIND", "ANCHOR", "OUTCOME", "TARGET")) + "\n")
	for i, snap := range m.snaps {
		target := "-"
		if snap.Outcome.Propagated() {
			p := snap.Target.Position
			target = fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
		}
		body := snap.Dependent
		if body == "" {
			body = "-"
		}
		line := fmt.Sprintf("%-3d %-10s %-8s %-10s ", snap.Index, body, snap.Kind, snap.Anchor)
		outcome := OutcomeStyle(snap.Outcome).Render(fmt.Sprintf("%-13s", snap.Outcome))
		if i == m.selected {
			b.WriteString(activeStyle.Render("> "+line) + outcome + " " + target + "\n")
		} else {
			b.WriteString("  " + rowStyle.Render(line) + outcome + " " + target + "\n")
		}
	}
	return b.String()
}
