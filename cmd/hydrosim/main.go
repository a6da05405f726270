package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/diag"
	"github.com/san-kum/hydrosim/internal/initial"
	"github.com/san-kum/hydrosim/internal/laws"
	"github.com/san-kum/hydrosim/internal/logging"
	"github.com/san-kum/hydrosim/internal/metrics"
	"github.com/san-kum/hydrosim/internal/storage"
	"github.com/san-kum/hydrosim/internal/tui"
)

var (
	dataDir     string
	configFile  string
	preset      string
	logLevel    string
	logJSON     bool
	metricsAddr string

	dimension    int
	resolution   int
	gamma        float64
	maxTime      float64
	dumpInterval float64
	cflBuffer    float64
	minDt        float64
	precision    string
	coordBits    int
	validate     bool
	initialName  string
	amplitude    float64

	stepsPerTick int
	cellIndex    int
	inspectSteps int
	neighbors    bool
	quantity     string
	dumpCounter  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "hydrosim",
		Short:        "compressible Euler equations on a periodic grid",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hydrosim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run simulation and store snapshots",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addFieldFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with a live density heat map",
		RunE:  runLive,
	}
	addFieldFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "steps-per-frame", 1, "solver steps per frame")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "print the state of one cell",
		RunE:  inspectCell,
	}
	addFieldFlags(inspectCmd)
	inspectCmd.Flags().IntVar(&cellIndex, "cell", 0, "linear cell index")
	inspectCmd.Flags().IntVar(&inspectSteps, "steps", 0, "steps to take before inspecting")
	inspectCmd.Flags().BoolVar(&neighbors, "neighbors", false, "also print the neighbors")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series or a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&quantity, "snapshot", "", "plot a snapshot quantity (density, velocity_x) instead of the series")
	plotCmd.Flags().IntVar(&dumpCounter, "dump", 0, "snapshot counter")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and series as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and initial conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			fmt.Println("initial conditions:")
			for _, n := range initial.Names() {
				fmt.Printf("  %s\n", n)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, inspectCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&dimension, "dim", config.DefaultDimension, "number of spatial dimensions")
	cmd.Flags().IntVar(&resolution, "res", config.DefaultResolution, "cells per axis")
	cmd.Flags().Float64Var(&gamma, "gamma", config.DefaultGamma, "adiabatic index")
	cmd.Flags().Float64Var(&maxTime, "time", config.DefaultMaxTime, "simulated time to reach")
	cmd.Flags().Float64Var(&dumpInterval, "dump-interval", config.DefaultDumpInterval, "simulated time between snapshots")
	cmd.Flags().Float64Var(&cflBuffer, "cfl", config.DefaultCFLBuffer, "CFL safety factor")
	cmd.Flags().Float64Var(&minDt, "min-dt", 0, "smallest step after the first (0 derives it from the grid)")
	cmd.Flags().StringVar(&precision, "precision", config.DefaultPrecision, "floating point precision (single, double)")
	cmd.Flags().IntVar(&coordBits, "coord-bits", config.DefaultCoordBits, "lattice coordinate width (32, 64)")
	cmd.Flags().BoolVar(&validate, "validate", true, "check every cell update for NaN and non-positive pressure")
	cmd.Flags().StringVar(&initialName, "initial", config.DefaultInitial, "initial condition")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 0, "shear amplitude or ramp speed")
}

// loadConfig layers defaults, preset, config file and explicitly set flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dim") {
		cfg.Dimension = dimension
	}
	if flags.Changed("res") {
		cfg.Resolution = resolution
	}
	if flags.Changed("gamma") {
		cfg.Gamma = gamma
	}
	if flags.Changed("time") {
		cfg.MaxTime = maxTime
	}
	if flags.Changed("dump-interval") {
		cfg.DumpInterval = dumpInterval
	}
	if flags.Changed("cfl") {
		cfg.CFLBuffer = cflBuffer
	}
	if flags.Changed("min-dt") {
		cfg.MinDt = minDt
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("coord-bits") {
		cfg.CoordBits = coordBits
	}
	if flags.Changed("validate") {
		cfg.Validation = validate
	}
	if flags.Changed("initial") {
		cfg.InitialCondition = initialName
	}
	if flags.Changed("amplitude") {
		cfg.InitState.Amplitude = amplitude
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{Level: level, JSON: logJSON}), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	name := cfg.InitialCondition
	switch {
	case len(args) > 0:
		name = args[0]
	case preset != "":
		name = preset
	}

	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	run, err := st.Create(name, cfg)
	if err != nil {
		return err
	}
	logger = logger.With("run_id", run.ID())

	sim.SetLogger(logger)
	sim.SetSnapshotter(run)
	sim.AddObserver(run)
	for _, m := range metrics.Default() {
		sim.AddMetric(m)
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		sim.AddObserver(metrics.NewExporter(reg))
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", metricsAddr, "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d-D, %d^%d cells, %s precision\n",
		name, cfg.Dimension, cfg.Resolution, cfg.Dimension, cfg.Precision)
	start := time.Now()

	result, runErr := sim.Run(ctx)
	if err := run.Finish(result, runErr); err != nil {
		logger.Error("failed to finish run", "error", err)
	}

	if runErr != nil {
		var cellErr *laws.CellError
		if errors.As(runErr, &cellErr) {
			fmt.Fprint(os.Stderr, diag.DescribeCellError(cellErr))
		}
		return runErr
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", run.ID())
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final time: %.6f\n", result.FinalTime)
	fmt.Printf("dumps: %d\n", result.Dumps)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6e\n", name, val)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}

	name := cfg.InitialCondition
	if preset != "" {
		name = preset
	}
	final, err := tui.Run(sim, name, stepsPerTick)
	if err != nil {
		return err
	}

	var cellErr *laws.CellError
	if errors.As(final.Err(), &cellErr) {
		fmt.Fprint(os.Stderr, diag.DescribeCellError(cellErr))
	}
	return final.Err()
}

func inspectCell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}

	field := sim.Field()
	if cellIndex < 0 || cellIndex >= field.Len() {
		return fmt.Errorf("cell %d out of range [0, %d)", cellIndex, field.Len())
	}

	for i := 0; i < inspectSteps; i++ {
		if err := sim.Step(); err != nil {
			var cellErr *laws.CellError
			if errors.As(err, &cellErr) {
				fmt.Fprint(os.Stderr, diag.DescribeCellError(cellErr))
			}
			return err
		}
	}

	fmt.Printf("t = %.6f after %d steps\n", sim.Time(), sim.Steps())
	if neighbors {
		fmt.Print(diag.DescribeNeighbors(field, cellIndex))
	} else {
		fmt.Println(diag.Describe(field.Sample(cellIndex)))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDIM\tRES\tSTEPS\tT_FINAL\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.4f\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Dimension,
			run.Config.Resolution,
			run.Steps,
			run.FinalTime,
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)

	if quantity != "" {
		rows, err := st.LoadSnapshot(runID, quantity, dumpCounter)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("no data to plot")
		}
		data := make([]float64, len(rows))
		for i, r := range rows {
			data[i] = r.Value
		}
		fmt.Printf("cells: %d\n\n", len(rows))
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s, dump %d, by cell index", quantity, dumpCounter)),
		))
		return nil
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	fmt.Printf("steps: %d\n\n", len(series.Step))

	for _, col := range []string{"mass", "energy", "peak_speed", "dt"} {
		data, err := series.Column(col)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("no data to plot")
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col+" vs step"),
		))
		fmt.Println()
	}
	return nil
}
