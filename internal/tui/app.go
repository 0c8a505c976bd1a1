package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/lorenzlab/internal/analysis"
	"github.com/san-kum/lorenzlab/internal/config"
	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/integrators"
	"github.com/san-kum/lorenzlab/internal/render"
)

var (
	title  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	active = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	value  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	idle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	key    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	bad    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
	curve  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

const (
	stateMenu = iota
	stateConfig
	stateView
)

// sampledMsg carries a finished run back into Update. seq identifies the
// run that produced it.
type sampledMsg struct {
	seq     int
	model   string
	ens     *dynamo.Ensemble
	traj    *dynamo.Trajectory
	err     error
	elapsed time.Duration
}

type Model struct {
	state       int
	cursor      int
	models      []string
	selected    string
	paramCursor int
	cfg         *config.Config
	solver      integrators.Solver
	cam         *render.Camera
	running     bool
	seq         int
	ens         *dynamo.Ensemble
	traj        *dynamo.Trajectory
	err         error
	elapsed     time.Duration
	width       int
	height      int
}

// New builds the explorer. The config is copied, so edits made on the
// parameter screen never leak back to the caller.
func New(cfg *config.Config, solver integrators.Solver) Model {
	c := *cfg
	c.Lorenz63.Proto = cfg.Lorenz63.Proto.Clone()
	return Model{
		state:  stateMenu,
		models: experiment.Models(),
		cfg:    &c,
		solver: solver,
		cam:    render.NewCamera(),
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case sampledMsg:
		// Only the latest run may land.
		if msg.seq != m.seq || msg.model != m.selected {
			return m, nil
		}
		m.running = false
		m.ens, m.traj, m.err, m.elapsed = msg.ens, msg.traj, msg.err, msg.elapsed
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateView:
		return m.viewKey(msg)
	}
	return m, nil
}

func (m Model) menuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.models)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.models[m.cursor]
		m.state, m.paramCursor = stateConfig, 0
	}
	return m, nil
}

func (m Model) configKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	params := paramsFor(m.selected)
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(params)-1 {
			m.paramCursor++
		}
	case "left", "h":
		params[m.paramCursor].adjust(m.cfg, -1)
	case "right", "l":
		params[m.paramCursor].adjust(m.cfg, 1)
	case "s", "enter":
		m.state = stateView
		return m.start()
	}
	return m, nil
}

func (m Model) viewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateConfig
	case "r":
		return m.start()
	case "left", "h":
		m.cam.Rotate(-0.1, 0)
	case "right", "l":
		m.cam.Rotate(0.1, 0)
	case "up", "k":
		m.cam.Rotate(0, 0.1)
	case "down", "j":
		m.cam.Rotate(0, -0.1)
	case "+", "=":
		m.cam.ZoomIn()
	case "-":
		m.cam.ZoomOut()
	}
	return m, nil
}

// start kicks off a run on a snapshot of the current config. Any run still
// in flight is superseded.
func (m Model) start() (Model, tea.Cmd) {
	m.seq++
	if err := m.cfg.Validate(); err != nil {
		m.running, m.err = false, err
		m.ens, m.traj = nil, nil
		return m, nil
	}
	m.running, m.err = true, nil
	seq, model, cfg, solver := m.seq, m.selected, *m.cfg, m.solver
	cfg.Lorenz63.Proto = m.cfg.Lorenz63.Proto.Clone()

	return m, func() tea.Msg {
		start := time.Now()
		out := sampledMsg{seq: seq, model: model}
		ctx := context.Background()
		switch model {
		case experiment.ModelLorenz63:
			out.ens, out.err = experiment.SampleLorenz63(ctx, solver, cfg.Lorenz63)
		case experiment.ModelLorenz96:
			out.traj, out.err = experiment.SampleLorenz96(ctx, solver, cfg.Lorenz96)
		default:
			out.err = fmt.Errorf("unknown model: %s", model)
		}
		out.elapsed = time.Since(start)
		if out.err != nil {
			log.WithError(out.err).WithField("model", model).Debug("interactive run failed")
		}
		return out
	}
}

func (m Model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateView:
		return m.viewResult()
	}
	return ""
}

func header(name, desc string) string {
	return "\n\n    " + title.Render(name) + "\n    " + sub.Render(desc) + "\n    " + sub.Render("─────────────────────────") + "\n\n"
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n   ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(" " + key.Render(pairs[i]) + idle.Render(" "+pairs[i+1]) + " ")
	}
	return b.String() + "\n"
}

func (m Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(header("LORENZLAB", "chaotic toy models"))
	for i, name := range m.models {
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", cursor.Render("▸"), active.Render(fmt.Sprintf("%-10s", name)), value.Render(experiment.Describe(name)))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", idle.Render(fmt.Sprintf("  %-10s", name)), idle.Render(experiment.Describe(name)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m Model) viewConfig() string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(m.selected), experiment.Describe(m.selected)))
	for i, p := range paramsFor(m.selected) {
		v := fmt.Sprintf("%8.3f", p.get(m.cfg))
		if i == m.paramCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", cursor.Render("▸"), active.Render(fmt.Sprintf("%-10s", p.name)), value.Render(v))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", idle.Render(fmt.Sprintf("  %-10s", p.name)), idle.Render(v))
		}
	}
	b.WriteString(hints("j/k", "select", "h/l", "adjust", "s", "run", "esc", "back"))
	return b.String()
}

func (m Model) plotSize() (int, int) {
	w := max(20, m.width-12)
	h := max(6, (m.height-10)/2)
	return w, h
}

func (m Model) viewResult() string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(m.selected), experiment.Describe(m.selected)))

	switch {
	case m.running:
		b.WriteString("    " + sub.Render("integrating...") + "\n")
	case m.err != nil:
		b.WriteString("    " + bad.Render("error: ") + m.err.Error() + "\n")
	case m.ens != nil && m.ens.Size() > 0:
		w, h := m.plotSize()
		b.WriteString(curve.Render(render.Attractor(m.ens.Members[0].States, 0, 1, 2, m.cam, w/2, h).String()))
		mean := analysis.EnsembleMean(m.ens)
		b.WriteString(render.Band(analysis.Column(mean, 0), analysis.EnsembleSpread(m.ens),
			fmt.Sprintf("mean x0 ± spread, %d members, %s", m.ens.Size(), m.elapsed.Round(time.Millisecond)),
			render.Options{Width: w, Height: h / 2}))
	case m.traj != nil && m.traj.Len() > 0:
		w, h := m.plotSize()
		b.WriteString(curve.Render(render.Attractor(m.traj.States, 0, 1, 2, m.cam, w/2, h).String()))
		b.WriteString(render.Series(m.traj.Component(0),
			fmt.Sprintf("x0, %d sites, %s", m.traj.Dim(), m.elapsed.Round(time.Millisecond)),
			render.Options{Width: w, Height: h / 2}))
	default:
		b.WriteString("    " + sub.Render("no samples") + "\n")
	}

	b.WriteString(hints("h/j/k/l", "rotate", "+/-", "zoom", "r", "rerun", "esc", "back"))
	return b.String()
}

// Select skips the menu and opens the parameter screen of model.
func (m Model) Select(model string) (Model, error) {
	for i, name := range m.models {
		if name == model {
			m.cursor, m.selected = i, name
			m.state, m.paramCursor = stateConfig, 0
			return m, nil
		}
	}
	return m, fmt.Errorf("unknown model: %s (available: %v)", model, m.models)
}

// Run starts the explorer. An empty model opens the menu.
func Run(cfg *config.Config, solver integrators.Solver, model string) error {
	m := New(cfg, solver)
	if model != "" {
		var err error
		if m, err = m.Select(model); err != nil {
			return err
		}
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
