// Package tui runs a solver interactively and draws the density field as a
// heat map slice through the x0/x1 plane.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hydrosim/internal/grid"
	"github.com/san-kum/hydrosim/internal/metrics"
	"github.com/san-kum/hydrosim/internal/solver"
)

const (
	maxCols         = 64
	maxRows         = 24
	historyCapacity = 200
	shades          = " .:-=+*#%@"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff"))
	runStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	pauseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)

	heat = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#1a3a8a")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#2a7ab0")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")),
	}
)

// Stepper is the part of a solver driver the live view needs. It is
// satisfied by *solver.Driver for every precision.
type Stepper interface {
	Step() error
	Phase() solver.Phase
	Time() float64
	Dt() float64
	Steps() int
	Dumps() int
	Field() grid.Field
}

type tickMsg time.Time

// Model steps a driver on every tick and redraws the field.
type Model struct {
	stepper      Stepper
	name         string
	stepsPerTick int
	running      bool
	err          error
	mass         []float64
	summary      metrics.Summary
}

func NewModel(s Stepper, name string, stepsPerTick int) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	return Model{
		stepper:      s,
		name:         name,
		stepsPerTick: stepsPerTick,
		running:      true,
		mass:         make([]float64, 0, historyCapacity),
		summary:      metrics.Summarize(s.Field()),
	}
}

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Err is the step failure that stopped the run, if any.
func (m Model) Err() error { return m.err }

func (m Model) finished() bool {
	return m.err != nil || m.stepper.Phase() == solver.Done
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running && !m.finished() {
				m.advance(1)
			}
		case "+", "=":
			m.stepsPerTick *= 2
		case "-":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		}
	case tickMsg:
		if m.running && !m.finished() {
			m.advance(m.stepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance(n int) {
	for i := 0; i < n && !m.finished(); i++ {
		if err := m.stepper.Step(); err != nil {
			m.err = err
		}
	}
	m.summary = metrics.Summarize(m.stepper.Field())
	m.mass = append(m.mass, m.summary.Mass)
	if len(m.mass) > historyCapacity {
		m.mass = m.mass[1:]
	}
}

func (m Model) View() string {
	var sb strings.Builder

	status := runStyle.Render("RUNNING")
	switch {
	case m.err != nil:
		status = errStyle.Render("FAILED")
	case m.stepper.Phase() == solver.Done:
		status = runStyle.Render("DONE")
	case !m.running:
		status = pauseStyle.Render("PAUSED")
	}
	sb.WriteString(headerStyle.Render("hydrosim · "+m.name) + "  " + status + "\n\n")

	left := panelStyle.Render(HeatMap(m.stepper.Field()))
	right := panelStyle.Render(m.stats())
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}
	sb.WriteString(helpStyle.Render("space pause · n step · +/- speed · q quit"))
	return sb.String()
}

func (m Model) stats() string {
	rows := [][2]string{
		{"time", fmt.Sprintf("%.5f", m.stepper.Time())},
		{"dt", fmt.Sprintf("%.3e", m.stepper.Dt())},
		{"steps", fmt.Sprintf("%d", m.stepper.Steps())},
		{"dumps", fmt.Sprintf("%d", m.stepper.Dumps())},
		{"phase", m.stepper.Phase().String()},
		{"mass", fmt.Sprintf("%.6e", m.summary.Mass)},
		{"energy", fmt.Sprintf("%.6e", m.summary.Energy)},
		{"peak speed", fmt.Sprintf("%.4f", m.summary.PeakSpeed)},
		{"min p", fmt.Sprintf("%.4e", m.summary.MinPressure)},
		{"steps/tick", fmt.Sprintf("%d", m.stepsPerTick)},
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]) + "\n")
	}
	if len(m.mass) > 1 {
		sb.WriteString("\n")
		sb.WriteString(asciigraph.Plot(m.mass, asciigraph.Height(6), asciigraph.Width(36), asciigraph.Caption("mass")))
	}
	return sb.String()
}

// HeatMap draws density on the x0/x1 plane through the origin of every
// other axis. One-dimensional fields are drawn as a single row. Large grids
// are subsampled down to the terminal budget.
func HeatMap(f grid.Field) string {
	n := f.Resolution()
	rows := 1
	if f.Dimension() > 1 {
		rows = n
	}
	cols := n

	colStride := stride(cols, maxCols)
	rowStride := stride(rows, maxRows)

	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < rows; y += rowStride {
		for x := 0; x < cols; x += colStride {
			rho := f.Sample(x + y*n).Density
			lo = math.Min(lo, rho)
			hi = math.Max(hi, rho)
		}
	}
	span := hi - lo

	var sb strings.Builder
	// x1 grows upwards.
	for y := rows - 1; y >= 0; y -= rowStride {
		for x := 0; x < cols; x += colStride {
			level := 0.5
			if span > 0 {
				level = (f.Sample(x+y*n).Density - lo) / span
			}
			sb.WriteString(shade(level))
		}
		if y-rowStride >= 0 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\nρ ∈ [%.4g, %.4g]", lo, hi))
	return sb.String()
}

func stride(n, budget int) int {
	if n <= budget {
		return 1
	}
	return (n + budget - 1) / budget
}

func shade(level float64) string {
	if math.IsNaN(level) {
		return errStyle.Render("!")
	}
	level = math.Max(0, math.Min(1, level))
	ch := shades[int(level*float64(len(shades)-1))]
	style := heat[int(level*float64(len(heat)-1))]
	return style.Render(string(ch))
}

// Run starts the full-screen program and blocks until the user quits.
func Run(s Stepper, name string, stepsPerTick int) (Model, error) {
	p := tea.NewProgram(NewModel(s, name, stepsPerTick), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
