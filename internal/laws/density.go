package laws

import "github.com/san-kum/hydrosim/internal/grid"

// Density advances ρ by the continuity equation ∂ρ/∂t = -∇·(ρu).
type Density[R grid.Real, C grid.Coord] struct {
	rho      R
	validate bool
}

func NewDensity[R grid.Real, C grid.Coord](validate bool) *Density[R, C] {
	return &Density[R, C]{validate: validate}
}

func (l *Density[R, C]) Name() string { return "density" }

func (l *Density[R, C]) Capture(c *grid.Cell[R, C]) {
	l.rho = c.Density()
}

func (l *Density[R, C]) Advance(c *grid.Cell[R, C], neighbors []*grid.Cell[R, C], factor R) {
	rho := c.Density()
	for d := 0; d < len(neighbors)/2; d++ {
		plus, minus := neighbors[2*d], neighbors[2*d+1]
		dRho := plus.Density() - minus.Density()
		dU := plus.VelocityAt(d) - minus.VelocityAt(d)
		l.rho -= factor * (c.VelocityAt(d)*dRho + rho*dU)
	}
}

func (l *Density[R, C]) Commit(c *grid.Cell[R, C]) error {
	c.SetNextDensity(l.rho)
	if l.validate && !finite(l.rho) {
		return cellError(l.Name(), c, ErrNotANumber)
	}
	return nil
}
