package laws

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hydrosim/internal/grid"
)

func build(t *testing.T, dimension, resolution int, seed func(i int, coords []int) grid.Seed) *grid.Grid[float64, int64] {
	t.Helper()
	g, err := grid.New[float64, int64](dimension, resolution, GammaIdealMonatomic,
		grid.InitialConditionFunc(func(i int, coords []int, _ int) grid.Seed { return seed(i, coords) }))
	require.NoError(t, err)
	return g
}

func sweep(t *testing.T, g *grid.Grid[float64, int64], passes []Pass[float64, int64], factor float64) error {
	t.Helper()
	for _, pass := range passes {
		for _, c := range g.Cells() {
			if err := pass.Apply(c, g.Neighbors(c), factor); err != nil {
				return err
			}
		}
	}
	return nil
}

func TestPasses_Order(t *testing.T) {
	passes := Passes[float64, int64](2, GammaIdealMonatomic, true)
	require.Len(t, passes, 3)
	assert.Equal(t, []string{"coordinates", "density"}, passes[0].Names())
	assert.Equal(t, []string{"momentum"}, passes[1].Names())
	assert.Equal(t, []string{"energy"}, passes[2].Names())
}

func TestUniformStateIsFixedPoint(t *testing.T) {
	g := build(t, 2, 4, func(int, []int) grid.Seed {
		return grid.Seed{Density: 1, Velocity: []float64{0, 0}, Pressure: 1}
	})

	require.NoError(t, sweep(t, g, Passes[float64, int64](2, GammaIdealMonatomic, true), 0.05))
	for _, c := range g.Cells() {
		p := c.Pending()
		assert.Equal(t, 1.0, p.Density)
		assert.Equal(t, []float64{0, 0}, p.Velocity)
		assert.InDelta(t, 1.0, p.Pressure, 1e-12)
		assert.Equal(t, c.Coordinates(), p.Coordinates)
	}
}

func TestDensity_CentralDifference(t *testing.T) {
	g := build(t, 1, 4, func(i int, _ []int) grid.Seed {
		return grid.Seed{Density: float64(i + 1), Velocity: []float64{0.5}, Pressure: 1}
	})

	law := NewDensity[float64, int64](true)
	c := g.Cell(1)
	law.Capture(c)
	law.Advance(c, g.Neighbors(c), 0.1)
	require.NoError(t, law.Commit(c))

	// u·Δρ = 0.5·(3-1), Δu = 0
	assert.InDelta(t, 2-0.1*0.5*2, c.NextDensity(), 1e-12)
	assert.Equal(t, 2.0, c.Density(), "committed density must be untouched")
}

func TestDensity_ReadsOnlyCommittedNeighbors(t *testing.T) {
	g := build(t, 1, 3, func(i int, _ []int) grid.Seed {
		return grid.Seed{Density: float64(i + 1), Velocity: []float64{1}, Pressure: 1}
	})

	law := NewDensity[float64, int64](true)
	for _, c := range g.Cells() {
		c.SetNextDensity(100)
	}
	c := g.Cell(1)
	law.Capture(c)
	law.Advance(c, g.Neighbors(c), 0.25)
	require.NoError(t, law.Commit(c))
	assert.InDelta(t, 2-0.25*(3-1), c.NextDensity(), 1e-12)
}

func TestMomentum_DividesByPendingDensity(t *testing.T) {
	g := build(t, 1, 3, func(i int, _ []int) grid.Seed {
		p := 1.0
		if i == 2 {
			p = 3
		}
		return grid.Seed{Density: 1, Velocity: []float64{0}, Pressure: p}
	})

	c := g.Cell(1)
	c.SetNextDensity(2)

	law := NewMomentum[float64, int64](1, true)
	law.Capture(c)
	law.Advance(c, g.Neighbors(c), 0.1)
	require.NoError(t, law.Commit(c))

	// ρu = 0 - 0.1·ΔP = -0.2, divided by the pending ρ = 2
	assert.InDelta(t, -0.1, c.NextVelocity()[0], 1e-12)
}

func TestMomentum_AdvectionTerms(t *testing.T) {
	g := build(t, 2, 3, func(_ int, coords []int) grid.Seed {
		return grid.Seed{
			Density:  1 + float64(coords[0]),
			Velocity: []float64{0.5, 0.1 * float64(coords[0])},
			Pressure: 1,
		}
	})

	c := g.Cell(g.LinearIndex([]int64{1, 1}))
	c.SetNextDensity(c.Density())

	law := NewMomentum[float64, int64](2, true)
	law.Capture(c)
	law.Advance(c, g.Neighbors(c), 0.1)
	require.NoError(t, law.Commit(c))

	// axis 0: Δρ = 3-1 = 2, Δu0 = 0, Δu1 = 0.2, ρ = 2, u = (0.5, 0.1)
	// x-momentum: 2·0.5·0.5 + 0 + 0 = 0.5
	// y-momentum: 2·0.1·0.5 + 2·0.5·0.2 + 0 = 0.3
	assert.InDelta(t, (2*0.5-0.1*0.5)/2, c.NextVelocity()[0], 1e-12)
	assert.InDelta(t, (2*0.1-0.1*0.3)/2, c.NextVelocity()[1], 1e-12)
}

func TestEnergy_PressureFromPendingState(t *testing.T) {
	g := build(t, 2, 4, func(_ int, coords []int) grid.Seed {
		return grid.Seed{
			Density:  1 + 0.1*float64(coords[1]),
			Velocity: []float64{0.2 * float64(coords[0]), 0.1},
			Pressure: 1 + 0.05*float64(coords[0]+coords[1]),
		}
	})

	require.NoError(t, sweep(t, g, Passes[float64, int64](2, GammaIdealMonatomic, true), 0.01))
	for _, c := range g.Cells() {
		p := c.Pending()
		assert.Equal(t, grid.Pressure(GammaIdealMonatomic, p.Density, p.Energy, p.Velocity), p.Pressure)
	}
}

func TestValidation_NotANumber(t *testing.T) {
	g := build(t, 1, 3, func(i int, _ []int) grid.Seed {
		rho := 1.0
		if i == 1 {
			rho = math.NaN()
		}
		return grid.Seed{Density: rho, Velocity: []float64{0}, Pressure: 1}
	})

	err := sweep(t, g, Passes[float64, int64](1, GammaIdealMonatomic, true), 0.1)
	require.ErrorIs(t, err, ErrNotANumber)

	var cellErr *CellError
	require.ErrorAs(t, err, &cellErr)
	assert.Equal(t, "density", cellErr.Law)
	assert.Equal(t, 0, cellErr.Index, "cell 0 sees the NaN neighbor first")
	assert.Equal(t, []int64{0}, cellErr.Current.Coordinates)
}

func TestValidation_NonPositivePressure(t *testing.T) {
	g := build(t, 1, 3, func(int, []int) grid.Seed {
		return grid.Seed{Density: 1, Velocity: []float64{0}, Pressure: -1}
	})

	err := sweep(t, g, Passes[float64, int64](1, GammaIdealMonatomic, true), 0.1)
	require.ErrorIs(t, err, ErrNonPositivePressure)

	var cellErr *CellError
	require.ErrorAs(t, err, &cellErr)
	assert.Equal(t, "energy", cellErr.Law)
	assert.Less(t, cellErr.Pending.Pressure, 0.0)
	assert.Contains(t, cellErr.Error(), "law=energy")
}

func TestValidation_Disabled(t *testing.T) {
	g := build(t, 1, 3, func(int, []int) grid.Seed {
		return grid.Seed{Density: 1, Velocity: []float64{0}, Pressure: -1}
	})

	assert.NoError(t, sweep(t, g, Passes[float64, int64](1, GammaIdealMonatomic, false), 0.1))
}

func TestSinglePrecision(t *testing.T) {
	g, err := grid.New[float32, int32](2, 4, GammaIdealMonatomic,
		grid.InitialConditionFunc(func(int, []int, int) grid.Seed {
			return grid.Seed{Density: 1, Velocity: []float64{0, 0}, Pressure: 1}
		}))
	require.NoError(t, err)

	for _, pass := range Passes[float32, int32](2, float32(GammaIdealMonatomic), true) {
		for _, c := range g.Cells() {
			require.NoError(t, pass.Apply(c, g.Neighbors(c), 0.05))
		}
	}
	g.CommitAll()
	for _, c := range g.Cells() {
		assert.Equal(t, float32(1), c.Density())
		assert.InDelta(t, 1.0, float64(c.Pressure()), 1e-5)
	}
}
