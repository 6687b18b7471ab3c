package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/experiment"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/physics"
	"gonum.org/v1/gonum/floats"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailLength     = 50
	maxStepsFrame   = 4096
)

type TickMsg time.Time

// Model steps a system a few integration steps per frame and draws its
// particles on the potential curve.
type Model struct {
	cfg    *config.Config
	runner *experiment.Runner

	sys   *dynamo.System
	integ dynamo.Integrator
	step  int
	err   error

	stepsPerFrame int
	running       bool

	lo, hi float64 // x window
	canvas *Canvas
	trail  []float64 // recent positions of particle 0

	energyHistory []float64
	driftHistory  []float64
	drift         *metrics.EnergyDrift

	theme  Theme
	styles styles
}

// NewModel builds the system described by cfg. Runs with steps == 0 keep
// going until quit.
func NewModel(cfg *config.Config, opts ...experiment.Option) (Model, error) {
	m := Model{
		cfg:           cfg,
		runner:        experiment.NewRunner(cfg, opts...),
		stepsPerFrame: 1,
		running:       true,
		canvas:        NewCanvas(width, height),
		theme:         Themes[0],
		styles:        newStyles(Themes[0]),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	// about one simulated time unit per second at 60 fps
	m.stepsPerFrame = max(1, int(math.Round(1/(60*cfg.Dt))))
	return m, nil
}

// WithTheme returns a copy of m using the named theme.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.styles = newStyles(m.theme)
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsFrame)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		}
	case TickMsg:
		if m.running && !m.done() && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) done() bool {
	return m.cfg.Steps > 0 && m.step >= m.cfg.Steps
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame && !m.done(); i++ {
		if err := m.integ.Step(); err != nil {
			m.err = &dynamo.SimulationError{Step: m.step + 1, Wrapped: err}
			return
		}
		m.step++
	}

	ph, err := m.sys.Phase()
	if err == nil && (!ph.X.IsValid() || !ph.V.IsValid()) {
		err = fmt.Errorf("%w: non-finite position or velocity", dynamo.ErrInvalidState)
	}
	if err != nil {
		m.err = &dynamo.SimulationError{Step: m.step, Wrapped: err}
		return
	}
	m.observe()
}

func (m *Model) observe() {
	totals, err := metrics.SystemEnergy(m.sys)
	if err != nil {
		m.err = err
		return
	}
	m.drift.Observe(totals.Total)
	if x, _, err := m.sys.Particle(0); err == nil {
		m.trail = append(m.trail, x)
		if len(m.trail) > trailLength {
			m.trail = m.trail[1:]
		}
	}
	m.energyHistory = pushBounded(m.energyHistory, totals.Total)
	m.driftHistory = pushBounded(m.driftHistory, m.drift.Final())
}

func pushBounded(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

// reset rebuilds the system from the configuration, reseeding any
// thermostat.
func (m *Model) reset() error {
	sys, integ, err := m.runner.Setup()
	if err != nil {
		return err
	}
	m.sys, m.integ = sys, integ
	m.step = 0
	m.err = nil
	m.trail = m.trail[:0]
	m.energyHistory = m.energyHistory[:0]
	m.driftHistory = m.driftHistory[:0]
	m.drift = metrics.NewEnergyDrift()

	x, _ := sys.Positions()
	v, _ := sys.Velocities()
	m.lo, m.hi = viewWindow(sys.Potential(), sys.Mass(), x, v)
	m.observe()
	return nil
}

// viewWindow picks the x range shown on the canvas: every particle's
// turning points for a harmonic well, both minima and the starting
// positions for a double well.
func viewWindow(pot dynamo.Potential, mass float64, x, v dynamo.State) (lo, hi float64) {
	lo, hi = floats.Min(x), floats.Max(x)

	switch pot.Kind() {
	case dynamo.KindHarmonic:
		h, ok := pot.(*physics.Harmonic)
		if !ok {
			break
		}
		for i := range x {
			amp := math.Sqrt((x[i]-h.X0())*(x[i]-h.X0()) + mass*v[i]*v[i]/h.K())
			lo, hi = math.Min(lo, h.X0()-amp), math.Max(hi, h.X0()+amp)
		}
	case dynamo.KindDoubleWell:
		w, ok := pot.(*physics.DoubleWell)
		if !ok {
			break
		}
		for _, xm := range w.Minima() {
			lo, hi = math.Min(lo, xm), math.Max(hi, xm)
		}
	}

	span := hi - lo
	if span < 1 {
		mid := (lo + hi) / 2
		lo, hi, span = mid-0.5, mid+0.5, 1
	}
	return lo - 0.25*span, hi + 0.25*span
}

func (m *Model) draw() {
	m.canvas.Clear()
	pot := m.sys.Potential()

	vp, us := m.canvas.Fit(m.lo, m.hi, pot.Energy, 6)
	vp.Curve(us)
	for _, x := range m.trail {
		vp.Mark(x, pot.Energy(x), 0)
	}
	ph, err := m.sys.Phase()
	if err != nil {
		return
	}
	for _, x := range ph.X {
		vp.Mark(x, pot.Energy(x), 2)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.failed.Render("ERROR")
	case m.done():
		return m.styles.paused.Render("DONE")
	case !m.running:
		return m.styles.paused.Render("PAUSED")
	default:
		return m.styles.running.Render("RUNNING")
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := m.styles.canvas.Render(m.canvas.String())

	name := m.cfg.Potential
	if n, ok := m.integ.(dynamo.Named); ok {
		name += " · " + n.Name()
	}

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy"))
		s.WriteString(m.styles.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.styles.label.Render(label) + m.styles.value.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.step))
	row("Time", fmt.Sprintf("%.2f", float64(m.step)*m.cfg.Dt))
	row("Particles", fmt.Sprintf("%d", m.sys.N()))
	if len(m.energyHistory) > 0 {
		row("Energy", fmt.Sprintf("%.6f", m.energyHistory[len(m.energyHistory)-1]))
	}
	row("Drift", fmt.Sprintf("%.2e", m.drift.Value()))
	row("Speed", fmt.Sprintf("%d steps/frame", m.stepsPerFrame))
	s.WriteString(m.styles.label.Render("Drift hist") + m.styles.sparkline(m.driftHistory, 24) + "\n")
	if m.cfg.Steps > 0 {
		s.WriteString(m.styles.label.Render("Progress") + progressBar(float64(m.step)/float64(m.cfg.Steps), 24) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + m.styles.failed.Render(m.err.Error()) + "\n")
	}

	s.WriteString(m.styles.help.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Speed T:Theme (" + m.theme.Name + ")"))
	statsView := m.styles.stats.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// Step reports the number of integration steps taken since the last reset.
func (m Model) Step() int { return m.step }

// Err returns the error that stopped the animation, if any.
func (m Model) Err() error { return m.err }
