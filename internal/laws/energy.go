package laws

import "github.com/san-kum/hydrosim/internal/grid"

// Energy advances the total energy density E and derives the pending
// pressure from the pending density and velocity.
type Energy[R grid.Real, C grid.Coord] struct {
	energy   R
	gamma    R
	validate bool
}

func NewEnergy[R grid.Real, C grid.Coord](gamma R, validate bool) *Energy[R, C] {
	return &Energy[R, C]{gamma: gamma, validate: validate}
}

func (l *Energy[R, C]) Name() string { return "energy" }

func (l *Energy[R, C]) Capture(c *grid.Cell[R, C]) {
	l.energy = c.Energy()
}

func (l *Energy[R, C]) Advance(c *grid.Cell[R, C], neighbors []*grid.Cell[R, C], factor R) {
	e, p := c.Energy(), c.Pressure()
	for d := 0; d < len(neighbors)/2; d++ {
		plus, minus := neighbors[2*d], neighbors[2*d+1]
		ud := c.VelocityAt(d)
		dUd := plus.VelocityAt(d) - minus.VelocityAt(d)
		dE := plus.Energy() - minus.Energy()
		dP := plus.Pressure() - minus.Pressure()
		l.energy -= factor * (dUd*(e+p) + ud*dE + ud*dP)
	}
}

func (l *Energy[R, C]) Commit(c *grid.Cell[R, C]) error {
	c.SetNextEnergy(l.energy)
	p := grid.Pressure(l.gamma, c.NextDensity(), l.energy, c.NextVelocity())
	c.SetNextPressure(p)
	if l.validate && !(p > 0) {
		return cellError(l.Name(), c, ErrNonPositivePressure)
	}
	return nil
}
