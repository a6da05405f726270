package laws

import "github.com/san-kum/hydrosim/internal/grid"

// Momentum advances every component of ρu and recovers the pending velocity
// by dividing by the pending density written in the density pass.
type Momentum[R grid.Real, C grid.Coord] struct {
	momentum []R
	validate bool
}

func NewMomentum[R grid.Real, C grid.Coord](dimension int, validate bool) *Momentum[R, C] {
	return &Momentum[R, C]{momentum: make([]R, dimension), validate: validate}
}

func (l *Momentum[R, C]) Name() string { return "momentum" }

func (l *Momentum[R, C]) Capture(c *grid.Cell[R, C]) {
	rho := c.Density()
	l.momentum = l.momentum[:0]
	for _, u := range c.Velocity() {
		l.momentum = append(l.momentum, rho*u)
	}
}

func (l *Momentum[R, C]) Advance(c *grid.Cell[R, C], neighbors []*grid.Cell[R, C], factor R) {
	rho := c.Density()
	for i := range l.momentum {
		ui := c.VelocityAt(i)
		for d := 0; d < len(neighbors)/2; d++ {
			plus, minus := neighbors[2*d], neighbors[2*d+1]
			ud := c.VelocityAt(d)
			dRho := plus.Density() - minus.Density()
			dUi := plus.VelocityAt(i) - minus.VelocityAt(i)
			dUd := plus.VelocityAt(d) - minus.VelocityAt(d)

			flux := dRho*ui*ud + rho*ud*dUi + rho*ui*dUd
			if d == i {
				flux += plus.Pressure() - minus.Pressure()
			}
			l.momentum[i] -= factor * flux
		}
	}
}

func (l *Momentum[R, C]) Commit(c *grid.Cell[R, C]) error {
	rho := c.NextDensity()
	ok := true
	for i, m := range l.momentum {
		u := m / rho
		c.SetNextVelocity(i, u)
		ok = ok && finite(u)
	}
	if l.validate && !ok {
		return cellError(l.Name(), c, ErrNotANumber)
	}
	return nil
}
