// Package diag renders cell state for manual inspection.
package diag

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/hydrosim/internal/grid"
	"github.com/san-kum/hydrosim/internal/laws"
)

var (
	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	label = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	value = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff"))
	alert = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
)

func vector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%e", x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func line(name, val string) string {
	return label.Render(fmt.Sprintf("%-9s", name)) + " " + value.Render(val)
}

// Describe renders one cell's committed state.
func Describe(s grid.Sample) string {
	return describe(fmt.Sprintf("cell %d", s.Index), s.Position, s.Velocity, s.Density, s.Energy, s.Pressure)
}

func describe(heading string, position, velocity []float64, rho, e, p float64) string {
	lines := []string{
		title.Render(heading),
		line("position", vector(position)),
		line("velocity", vector(velocity)),
		line("density", fmt.Sprintf("%e", rho)),
		line("energy", fmt.Sprintf("%e", e)),
		line("pressure", fmt.Sprintf("%e", p)),
	}
	return panel.Render(strings.Join(lines, "\n"))
}

// DescribeNeighbors renders a cell followed by its 2·D neighbors in
// [+x0, -x0, +x1, -x1, ...] order.
func DescribeNeighbors(f grid.Field, index int) string {
	var sb strings.Builder
	sb.WriteString(Describe(f.Sample(index)))
	sb.WriteString("\n")

	for n, nb := range f.NeighborIndices(index) {
		sign := "+"
		if n%2 == 1 {
			sign = "-"
		}
		s := f.Sample(nb)
		heading := fmt.Sprintf("%sx%d neighbor: cell %d", sign, n/2, nb)
		sb.WriteString(describe(heading, s.Position, s.Velocity, s.Density, s.Energy, s.Pressure))
		sb.WriteString("\n")
	}
	return sb.String()
}

// DescribeCellError renders a failed validation with both state buffers of
// the offending cell.
func DescribeCellError(e *laws.CellError) string {
	var sb strings.Builder
	sb.WriteString(alert.Render(fmt.Sprintf("%v in %s pass at cell %d", e.Err, e.Law, e.Index)))
	sb.WriteString("\n")
	sb.WriteString(describeValues("committed", e.Current))
	sb.WriteString("\n")
	sb.WriteString(describeValues("pending", e.Pending))
	sb.WriteString("\n")
	return sb.String()
}

func describeValues(heading string, v grid.Values) string {
	coords := make([]float64, len(v.Coordinates))
	for i, c := range v.Coordinates {
		coords[i] = float64(c)
	}
	return describe(heading+" (lattice coordinates)", coords, v.Velocity, v.Density, v.Energy, v.Pressure)
}
