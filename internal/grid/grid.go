package grid

import (
	"fmt"
	"math"
)

// Grid is a uniform periodic lattice of resolution^dimension cells addressed
// by the mixed-radix index Σ coordinate[d]·resolution^d.
type Grid[R Real, C Coord] struct {
	dimension  int
	resolution int
	strides    []int
	gamma      R
	cells      []*Cell[R, C]
}

// New allocates the grid and seeds every cell from ic. Energy is derived
// from the seeded density, velocity and pressure through the equation of state.
func New[R Real, C Coord](dimension, resolution int, gamma float64, ic InitialCondition) (*Grid[R, C], error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidConfig, dimension)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution must be positive, got %d", ErrInvalidConfig, resolution)
	}
	if int64(C(resolution)) != int64(resolution) {
		return nil, fmt.Errorf("%w: resolution %d overflows coordinate type", ErrInvalidConfig, resolution)
	}
	if !(gamma > 1) {
		return nil, fmt.Errorf("%w: adiabatic index must exceed 1, got %g", ErrInvalidConfig, gamma)
	}
	if ic == nil {
		return nil, fmt.Errorf("%w: no initial condition", ErrInvalidConfig)
	}

	strides := make([]int, dimension)
	n := 1
	for d := 0; d < dimension; d++ {
		strides[d] = n
		if n > math.MaxInt/resolution {
			return nil, fmt.Errorf("%w: %d^%d cells overflows", ErrInvalidConfig, resolution, dimension)
		}
		n *= resolution
	}

	g := &Grid[R, C]{
		dimension:  dimension,
		resolution: resolution,
		strides:    strides,
		gamma:      R(gamma),
		cells:      make([]*Cell[R, C], n),
	}

	ints := make([]int, dimension)
	for i := 0; i < n; i++ {
		coords := g.CoordinatesOf(i)
		for d, c := range coords {
			ints[d] = int(c)
		}
		seed := ic.Seed(i, ints, resolution)
		if len(seed.Velocity) != dimension {
			return nil, fmt.Errorf("%w: initial velocity of cell %d has %d components, want %d",
				ErrInvalidConfig, i, len(seed.Velocity), dimension)
		}

		velocity := make([]R, dimension)
		for d, u := range seed.Velocity {
			velocity[d] = R(u)
		}
		rho, p := R(seed.Density), R(seed.Pressure)
		g.cells[i] = newCell(i, State[R, C]{
			Coordinates: coords,
			Velocity:    velocity,
			Density:     rho,
			Energy:      TotalEnergy(g.gamma, rho, p, velocity),
			Pressure:    p,
		})
	}

	return g, nil
}

func (g *Grid[R, C]) Dimension() int  { return g.dimension }
func (g *Grid[R, C]) Resolution() int { return g.resolution }
func (g *Grid[R, C]) Len() int        { return len(g.cells) }
func (g *Grid[R, C]) Gamma() R        { return g.gamma }

// Spacing is the cell width of the unit box.
func (g *Grid[R, C]) Spacing() R { return 1 / R(g.resolution) }

func (g *Grid[R, C]) Cell(index int) *Cell[R, C] { return g.cells[index] }
func (g *Grid[R, C]) Cells() []*Cell[R, C]       { return g.cells }

func (g *Grid[R, C]) LinearIndex(coordinates []C) int {
	index := 0
	for d := 0; d < g.dimension; d++ {
		index += int(coordinates[d]) * g.strides[d]
	}
	return index
}

func (g *Grid[R, C]) CoordinatesOf(index int) []C {
	coords := make([]C, g.dimension)
	g.coordinatesInto(coords, index)
	return coords
}

func (g *Grid[R, C]) coordinatesInto(dst []C, index int) {
	for d := 0; d < g.dimension-1; d++ {
		dst[d] = C(index % g.resolution)
		index /= g.resolution
	}
	dst[g.dimension-1] = C(index)
}

// Neighbors returns the 2·D periodic neighbors ordered [+x0, -x0, +x1, -x1, ...].
func (g *Grid[R, C]) Neighbors(c *Cell[R, C]) []*Cell[R, C] {
	return g.NeighborsInto(make([]*Cell[R, C], 2*g.dimension), c)
}

// NeighborsInto is Neighbors writing into dst, which must hold 2·D cells.
func (g *Grid[R, C]) NeighborsInto(dst []*Cell[R, C], c *Cell[R, C]) []*Cell[R, C] {
	for d := 0; d < g.dimension; d++ {
		plus, minus := g.neighborIndices(c.index, int(c.cur.Coordinates[d]), d)
		dst[2*d] = g.cells[plus]
		dst[2*d+1] = g.cells[minus]
	}
	return dst
}

func (g *Grid[R, C]) NeighborIndices(index int) []int {
	c := g.cells[index]
	out := make([]int, 2*g.dimension)
	for d := 0; d < g.dimension; d++ {
		out[2*d], out[2*d+1] = g.neighborIndices(index, int(c.cur.Coordinates[d]), d)
	}
	return out
}

func (g *Grid[R, C]) neighborIndices(index, x, d int) (plus, minus int) {
	m := g.resolution
	base := index - x*g.strides[d]
	return base + ((x+1)%m)*g.strides[d], base + ((x-1+m)%m)*g.strides[d]
}

// MaxVelocity is the largest committed speed on the grid, floored at MinSignalSpeed.
func (g *Grid[R, C]) MaxVelocity() R {
	vmax := R(0)
	for _, c := range g.cells {
		if v := norm(c.cur.Velocity); v > vmax {
			vmax = v
		}
	}
	if vmax < MinSignalSpeed {
		vmax = MinSignalSpeed
	}
	return vmax
}

// CommitAll promotes every cell's pending state. It must only run after all
// conservation law passes of the step have finished.
func (g *Grid[R, C]) CommitAll() {
	for _, c := range g.cells {
		c.Commit()
	}
}

func (g *Grid[R, C]) Sample(index int) Sample {
	c := g.cells[index]
	s := Sample{
		Index:    index,
		Position: make([]float64, g.dimension),
		Velocity: make([]float64, g.dimension),
		Density:  float64(c.cur.Density),
		Energy:   float64(c.cur.Energy),
		Pressure: float64(c.cur.Pressure),
	}
	for d := 0; d < g.dimension; d++ {
		s.Position[d] = float64(c.cur.Coordinates[d]) / float64(g.resolution)
		s.Velocity[d] = float64(c.cur.Velocity[d])
	}
	return s
}

var _ Field = (*Grid[float64, int64])(nil)
