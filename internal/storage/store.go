package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/grid"
	"github.com/san-kum/hydrosim/internal/metrics"
	"github.com/san-kum/hydrosim/internal/solver"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
)

var seriesHeader = []string{"step", "time", "dt", "mass", "energy", "peak_speed"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Config    config.Config      `json:"config"`
	Steps     int                `json:"steps"`
	FinalTime float64            `json:"final_time"`
	Dumps     int                `json:"dumps"`
	Metrics   map[string]float64 `json:"metrics"`
	Error     string             `json:"error,omitempty"`
}

// Run is one run directory. It is the driver's snapshotter and a step
// observer that appends to the step series.
type Run struct {
	dir    string
	meta   RunMetadata
	file   *os.File
	series *csv.Writer
	err    error
}

func (s *Store) Create(name string, cfg *config.Config) (*Run, error) {
	id := fmt.Sprintf("%s_%d_%s", name, time.Now().Unix(), uuid.NewString()[:8])
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(dir, seriesFile))
	if err != nil {
		return nil, err
	}

	r := &Run{
		dir: dir,
		meta: RunMetadata{
			ID:        id,
			Name:      name,
			Timestamp: time.Now(),
			Config:    *cfg,
		},
		file:   f,
		series: csv.NewWriter(f),
	}
	if err := r.series.Write(seriesHeader); err != nil {
		f.Close()
		return nil, err
	}
	if err := r.writeMetadata(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Run) ID() string  { return r.meta.ID }
func (r *Run) Dir() string { return r.dir }

// Dump writes density_grid_<n>.dat and velocity_x_grid_<n>.dat. Each line
// holds the cell position (coordinate/resolution) per axis, then the value.
func (r *Run) Dump(counter int, t float64, field grid.Field) error {
	if err := writeSnapshot(filepath.Join(r.dir, SnapshotName("density", counter)), field,
		func(s grid.Sample) float64 { return s.Density }); err != nil {
		return err
	}
	return writeSnapshot(filepath.Join(r.dir, SnapshotName("velocity_x", counter)), field,
		func(s grid.Sample) float64 { return s.Velocity[0] })
}

func SnapshotName(quantity string, counter int) string {
	return fmt.Sprintf("%s_grid_%d.dat", quantity, counter)
}

func writeSnapshot(path string, field grid.Field, value func(grid.Sample) float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := make([]string, field.Dimension()+1)
	for i := 0; i < field.Len(); i++ {
		s := field.Sample(i)
		for d, x := range s.Position {
			row[d] = formatFloat(x)
		}
		row[len(row)-1] = formatFloat(value(s))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func (r *Run) OnStep(step int, t, dt float64, field grid.Field) {
	if r.err != nil {
		return
	}
	s := metrics.Summarize(field)
	r.err = r.series.Write([]string{
		strconv.Itoa(step),
		formatFloat(t),
		formatFloat(dt),
		formatFloat(s.Mass),
		formatFloat(s.Energy),
		formatFloat(s.PeakSpeed),
	})
}

// Finish records the outcome and closes the run. runErr is the driver's
// error, if any; it is stored in the metadata rather than returned.
func (r *Run) Finish(res *solver.Result, runErr error) error {
	r.series.Flush()
	err := errors.Join(r.err, r.series.Error(), r.file.Close())

	if res != nil {
		r.meta.Steps = res.StepsTaken
		r.meta.FinalTime = res.FinalTime
		r.meta.Dumps = res.Dumps
		r.meta.Metrics = res.Metrics
	}
	if runErr != nil {
		r.meta.Error = runErr.Error()
	}
	return errors.Join(err, r.writeMetadata())
}

func (r *Run) writeMetadata() error {
	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.meta); err != nil {
		return err
	}
	return f.Close()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Series is the per-step record of a run, one slice per column.
type Series struct {
	Step      []int
	Time      []float64
	Dt        []float64
	Mass      []float64
	Energy    []float64
	PeakSpeed []float64
}

func (s Series) Column(name string) ([]float64, error) {
	switch name {
	case "time":
		return s.Time, nil
	case "dt":
		return s.Dt, nil
	case "mass":
		return s.Mass, nil
	case "energy":
		return s.Energy, nil
	case "peak_speed":
		return s.PeakSpeed, nil
	default:
		return nil, fmt.Errorf("unknown series column: %s", name)
	}
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}

	series := &Series{}
	for i, record := range records {
		if i == 0 || len(record) < len(seriesHeader) {
			continue
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		vals := make([]float64, len(seriesHeader)-1)
		ok := true
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		series.Step = append(series.Step, step)
		series.Time = append(series.Time, vals[0])
		series.Dt = append(series.Dt, vals[1])
		series.Mass = append(series.Mass, vals[2])
		series.Energy = append(series.Energy, vals[3])
		series.PeakSpeed = append(series.PeakSpeed, vals[4])
	}
	return series, nil
}

// SnapshotRow is one line of a dump file.
type SnapshotRow struct {
	Position []float64
	Value    float64
}

func (s *Store) LoadSnapshot(runID, quantity string, counter int) ([]SnapshotRow, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, SnapshotName(quantity, counter)))
	if err != nil {
		return nil, err
	}

	rows := make([]SnapshotRow, 0, len(records))
	for _, record := range records {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", SnapshotName(quantity, counter), err)
			}
			vals[j] = v
		}
		if len(vals) < 2 {
			continue
		}
		rows = append(rows, SnapshotRow{Position: vals[:len(vals)-1], Value: vals[len(vals)-1]})
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
