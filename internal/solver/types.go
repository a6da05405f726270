package solver

import (
	"fmt"

	"github.com/san-kum/hydrosim/internal/grid"
)

type Phase int

const (
	Stepping Phase = iota
	Dumping
	Done
)

func (p Phase) String() string {
	switch p {
	case Stepping:
		return "stepping"
	case Dumping:
		return "dumping"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Config struct {
	MaxTime      float64
	DumpInterval float64
	CFLBuffer    float64
	// MinDt floors every step after the first. Zero selects CFLBuffer·dx/100.
	MinDt    float64
	Validate bool
}

func DefaultConfig() Config {
	return Config{
		MaxTime:      1.0,
		DumpInterval: 0.1,
		CFLBuffer:    0.5,
		Validate:     true,
	}
}

// Snapshotter persists the committed field. Counter 0 is the initial state.
type Snapshotter interface {
	Dump(counter int, t float64, field grid.Field) error
}

type Observer interface {
	OnStep(step int, t, dt float64, field grid.Field)
}

type Metric interface {
	Name() string
	Observe(field grid.Field, t float64)
	Value() float64
	Reset()
}

type Result struct {
	StepsTaken int
	FinalTime  float64
	Dumps      int
	TimeSteps  []float64
	Metrics    map[string]float64
}

// StepError wraps the failure of one step with its position in the run.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
