package laws

import "github.com/san-kum/hydrosim/internal/grid"

// Coordinates carries a cell's lattice position into the pending state.
// The lattice does not move, so Advance is a no-op.
type Coordinates[R grid.Real, C grid.Coord] struct {
	coords []C
}

func NewCoordinates[R grid.Real, C grid.Coord](dimension int) *Coordinates[R, C] {
	return &Coordinates[R, C]{coords: make([]C, dimension)}
}

func (l *Coordinates[R, C]) Name() string { return "coordinates" }

func (l *Coordinates[R, C]) Capture(c *grid.Cell[R, C]) {
	l.coords = append(l.coords[:0], c.Coordinates()...)
}

func (l *Coordinates[R, C]) Advance(*grid.Cell[R, C], []*grid.Cell[R, C], R) {}

func (l *Coordinates[R, C]) Commit(c *grid.Cell[R, C]) error {
	c.SetNextCoordinates(l.coords)
	return nil
}
