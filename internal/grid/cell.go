package grid

import "math"

// State is one snapshot of a cell's physical quantities.
type State[R Real, C Coord] struct {
	Coordinates []C
	Velocity    []R
	Density     R
	Energy      R
	Pressure    R
}

func (s State[R, C]) Clone() State[R, C] {
	c := s
	c.Coordinates = append([]C(nil), s.Coordinates...)
	c.Velocity = append([]R(nil), s.Velocity...)
	return c
}

// IsValid reports whether no real-valued field is NaN or infinite.
func (s State[R, C]) IsValid() bool {
	if !finite(s.Density) || !finite(s.Energy) || !finite(s.Pressure) {
		return false
	}
	for _, u := range s.Velocity {
		if !finite(u) {
			return false
		}
	}
	return true
}

func finite[R Real](x R) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Cell holds a committed (current) state that every stencil reads, and a
// pending state that the conservation laws write during a step. Pending
// values only become visible through Commit.
type Cell[R Real, C Coord] struct {
	index int
	cur   State[R, C]
	next  State[R, C]
}

func newCell[R Real, C Coord](index int, s State[R, C]) *Cell[R, C] {
	return &Cell[R, C]{index: index, cur: s, next: s.Clone()}
}

func (c *Cell[R, C]) Index() int { return c.index }

// Coordinates returns the committed coordinates. The slice must not be modified.
func (c *Cell[R, C]) Coordinates() []C     { return c.cur.Coordinates }
func (c *Cell[R, C]) Coordinate(d int) C   { return c.cur.Coordinates[d] }
func (c *Cell[R, C]) Velocity() []R        { return c.cur.Velocity }
func (c *Cell[R, C]) VelocityAt(d int) R   { return c.cur.Velocity[d] }
func (c *Cell[R, C]) Density() R           { return c.cur.Density }
func (c *Cell[R, C]) Energy() R            { return c.cur.Energy }
func (c *Cell[R, C]) Pressure() R          { return c.cur.Pressure }
func (c *Cell[R, C]) Current() State[R, C] { return c.cur.Clone() }
func (c *Cell[R, C]) Pending() State[R, C] { return c.next.Clone() }

func (c *Cell[R, C]) NextDensity() R    { return c.next.Density }
func (c *Cell[R, C]) NextVelocity() []R { return c.next.Velocity }
func (c *Cell[R, C]) NextEnergy() R     { return c.next.Energy }

func (c *Cell[R, C]) SetNextCoordinates(coords []C) { copy(c.next.Coordinates, coords) }
func (c *Cell[R, C]) SetNextDensity(rho R)          { c.next.Density = rho }
func (c *Cell[R, C]) SetNextVelocity(d int, u R)    { c.next.Velocity[d] = u }
func (c *Cell[R, C]) SetNextEnergy(e R)             { c.next.Energy = e }
func (c *Cell[R, C]) SetNextPressure(p R)           { c.next.Pressure = p }

// Commit promotes the pending state. The old committed buffers become the
// pending buffers of the next step and are fully overwritten by it.
func (c *Cell[R, C]) Commit() {
	c.cur, c.next = c.next, c.cur
}

// Values is a precision-independent copy of a State, used in diagnostics.
type Values struct {
	Coordinates []int64
	Velocity    []float64
	Density     float64
	Energy      float64
	Pressure    float64
}

func (s State[R, C]) Values() Values {
	v := Values{
		Coordinates: make([]int64, len(s.Coordinates)),
		Velocity:    make([]float64, len(s.Velocity)),
		Density:     float64(s.Density),
		Energy:      float64(s.Energy),
		Pressure:    float64(s.Pressure),
	}
	for d, x := range s.Coordinates {
		v.Coordinates[d] = int64(x)
	}
	for d, u := range s.Velocity {
		v.Velocity[d] = float64(u)
	}
	return v
}
