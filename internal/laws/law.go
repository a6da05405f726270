// Package laws holds the explicit central-difference update rules for the
// conserved quantities of the compressible Euler equations.
//
// Every law runs the same protocol on one cell: Capture the committed value
// into an accumulator, Advance it by the flux divergence of the committed
// neighbor states, then Commit the accumulator into the cell's pending state.
// Neighbors are ordered [+x0, -x0, +x1, -x1, ...] and every difference is
// neighbor[2d] - neighbor[2d+1], scaled by the caller's dt/(2·dx).
package laws

import (
	"math"

	"github.com/san-kum/hydrosim/internal/grid"
)

// GammaIdealMonatomic is the adiabatic index of an ideal monatomic gas.
const GammaIdealMonatomic = 5.0 / 3.0

type Law[R grid.Real, C grid.Coord] interface {
	Name() string
	Capture(c *grid.Cell[R, C])
	Advance(c *grid.Cell[R, C], neighbors []*grid.Cell[R, C], factor R)
	Commit(c *grid.Cell[R, C]) error
}

// Pass is a group of laws swept over the whole grid together.
type Pass[R grid.Real, C grid.Coord] []Law[R, C]

// Apply runs every law of the pass on one cell.
func (p Pass[R, C]) Apply(c *grid.Cell[R, C], neighbors []*grid.Cell[R, C], factor R) error {
	for _, law := range p {
		law.Capture(c)
		law.Advance(c, neighbors, factor)
		if err := law.Commit(c); err != nil {
			return err
		}
	}
	return nil
}

func (p Pass[R, C]) Names() []string {
	names := make([]string, len(p))
	for i, law := range p {
		names[i] = law.Name()
	}
	return names
}

// Passes returns the sweep order of one step. Momentum commits divide by the
// pending density and the energy commit reads pending density and velocity,
// so each pass has to cover the whole grid before the next one starts.
func Passes[R grid.Real, C grid.Coord](dimension int, gamma R, validate bool) []Pass[R, C] {
	return []Pass[R, C]{
		{NewCoordinates[R, C](dimension), NewDensity[R, C](validate)},
		{NewMomentum[R, C](dimension, validate)},
		{NewEnergy[R, C](gamma, validate)},
	}
}

func finite[R grid.Real](x R) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
