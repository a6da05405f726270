package laws

import (
	"errors"
	"fmt"

	"github.com/san-kum/hydrosim/internal/grid"
)

var (
	// ErrNotANumber indicates a commit produced NaN or an infinite value.
	ErrNotANumber = errors.New("laws: non-finite value after commit")

	// ErrNonPositivePressure indicates the equation of state produced P <= 0.
	ErrNonPositivePressure = errors.New("laws: non-positive pressure after commit")
)

// CellError reports a failed validation together with the offending
// cell's committed and pending state.
type CellError struct {
	Law     string
	Index   int
	Current grid.Values
	Pending grid.Values
	Err     error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%v (law=%s cell=%d coords=%v pending: rho=%g u=%v E=%g P=%g)",
		e.Err, e.Law, e.Index, e.Current.Coordinates,
		e.Pending.Density, e.Pending.Velocity, e.Pending.Energy, e.Pending.Pressure)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

func cellError[R grid.Real, C grid.Coord](law string, c *grid.Cell[R, C], err error) error {
	return &CellError{
		Law:     law,
		Index:   c.Index(),
		Current: c.Current().Values(),
		Pending: c.Pending().Values(),
		Err:     err,
	}
}
