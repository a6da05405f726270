package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/grid"
	"github.com/san-kum/hydrosim/internal/solver"
)

func testGrid(t *testing.T) *grid.Grid[float64, int64] {
	t.Helper()
	g, err := grid.New[float64, int64](2, 2, 5.0/3.0, grid.InitialConditionFunc(
		func(i int, coords []int, _ int) grid.Seed {
			return grid.Seed{Density: 1 + float64(i), Velocity: []float64{0.5 * float64(coords[0]), 0}, Pressure: 1}
		}))
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func TestStoreRunLifecycle(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run, err := st.Create("test", config.DefaultConfig())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.HasPrefix(run.ID(), "test_") {
		t.Errorf("unexpected run id %q", run.ID())
	}

	g := testGrid(t)
	if err := run.Dump(0, 0, g); err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	run.OnStep(1, 0.05, 0.05, g)
	run.OnStep(2, 0.1, 0.05, g)

	res := &solver.Result{StepsTaken: 2, FinalTime: 0.1, Dumps: 1, Metrics: map[string]float64{"mass": 2.5}}
	if err := run.Finish(res, nil); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	meta, err := st.Load(run.ID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Steps != 2 || meta.Dumps != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["mass"] != 2.5 {
		t.Errorf("expected mass 2.5, got %f", meta.Metrics["mass"])
	}
	if meta.Config.Resolution != config.DefaultResolution {
		t.Errorf("expected stored config, got %+v", meta.Config)
	}

	series, err := st.LoadSeries(run.ID())
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(series.Step) != 2 || series.Time[1] != 0.1 {
		t.Errorf("unexpected series %+v", series)
	}
	if series.Mass[0] != 2.5 {
		t.Errorf("expected mass 2.5 (mean of 1..4), got %f", series.Mass[0])
	}
	if _, err := series.Column("bogus"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestSnapshotFormat(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("snap", config.DefaultConfig())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	g := testGrid(t)
	if err := run.Dump(3, 0.3, g); err != nil {
		t.Fatalf("dump failed: %v", err)
	}

	for _, name := range []string{"density_grid_3.dat", "velocity_x_grid_3.dat"} {
		if _, err := os.Stat(filepath.Join(run.Dir(), name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(run.Dir(), "density_grid_3.dat"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[1] != "0.5,0,2" {
		t.Errorf("expected %q, got %q", "0.5,0,2", lines[1])
	}

	rows, err := st.LoadSnapshot(run.ID(), "velocity_x", 3)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if len(rows) != 4 || rows[1].Value != 0.5 || rows[1].Position[0] != 0.5 {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	run, err := st.Create("test", config.DefaultConfig())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := run.Finish(nil, errors.New("laws: non-positive pressure")); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Error == "" {
		t.Error("expected run error to be recorded")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("export", config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	run.OnStep(1, 0.05, 0.05, testGrid(t))
	if err := run.Finish(&solver.Result{StepsTaken: 1}, nil); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, run.ID()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Run.ID != run.ID() || len(data.Time) != 1 {
		t.Errorf("unexpected export %+v", data)
	}
}
