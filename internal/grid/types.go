package grid

// Real is the floating point precision the integrator runs at.
type Real interface {
	~float32 | ~float64
}

// Coord is the integer width used for cell coordinates.
type Coord interface {
	~int32 | ~int64
}

// Seed is the initial physical state of one cell. Energy is derived from it.
type Seed struct {
	Density  float64
	Velocity []float64
	Pressure float64
}

// InitialCondition supplies the starting field. It must be defined for
// every cell index of the grid it seeds.
type InitialCondition interface {
	Seed(index int, coordinates []int, resolution int) Seed
}

// InitialConditionFunc adapts a plain function to InitialCondition.
type InitialConditionFunc func(index int, coordinates []int, resolution int) Seed

func (f InitialConditionFunc) Seed(index int, coordinates []int, resolution int) Seed {
	return f(index, coordinates, resolution)
}

// Sample is a float64 copy of one cell's committed state, for consumers
// that do not care about the grid's precision.
type Sample struct {
	Index    int
	Position []float64
	Velocity []float64
	Density  float64
	Energy   float64
	Pressure float64
}

func (s Sample) Speed() float64 {
	return norm(s.Velocity)
}

// Field is the read-only view of a grid's committed state.
type Field interface {
	Dimension() int
	Resolution() int
	Len() int
	Sample(index int) Sample
	NeighborIndices(index int) []int
}
