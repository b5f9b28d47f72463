package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/animattach/internal/attach"
	"github.com/san-kum/animattach/internal/automation"
	"github.com/san-kum/animattach/internal/config"
	"github.com/san-kum/animattach/internal/document"
	"github.com/san-kum/animattach/internal/experiment"
	"github.com/san-kum/animattach/internal/export"
	"github.com/san-kum/animattach/internal/integrators"
	"github.com/san-kum/animattach/internal/logging"
	"github.com/san-kum/animattach/internal/metrics"
	"github.com/san-kum/animattach/internal/optim"
	"github.com/san-kum/animattach/internal/sim"
	"github.com/san-kum/animattach/internal/storage"
	"github.com/san-kum/animattach/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool

	configFile string
	preset     string
	ticks      int
	dt         float64
	integrator string
	force      float64
	spring     float64
	damper     float64
	disable    bool
	bootstrap  int

	saveState  string
	loadState  string
	noStore    bool
	exportPath string

	plotBody string
	plotSVG  string

	tuneSprings []float64
	tuneDampers []float64
	tuneForces  []float64
	tuneMetric  string

	stateDir string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "animattach",
		Short:        "animated attachment lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".animattach", "run store directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON lines instead of console output")

	runCmd := &cobra.Command{
		Use:   "run [scene|file]",
		Short: "run a scene and store the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&saveState, "save-state", "", "write attachment state to this file after the run")
	runCmd.Flags().StringVar(&loadState, "load-state", "", "read attachment state from this file before the run")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "do not store the run")
	runCmd.Flags().StringVar(&exportPath, "export", "", "also write the run as JSON to this file (- for stdout)")

	liveCmd := &cobra.Command{
		Use:   "live [scene|file]",
		Short: "run a scene with a live view of the attachment records",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&loadState, "load-state", "", "read attachment state from this file before the run")

	compareCmd := &cobra.Command{
		Use:   "compare [scene|file] [integrator1] [integrator2] ...",
		Short: "run the same scene with several integrators in parallel",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a dependent's position and error over ticks",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotBody, "body", "", "dependent to plot (default: first recorded)")
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "also write a top-down SVG of every dependent's path")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene|file]",
		Short: "grid search the joint drive for the best tracking",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneDrive,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&tuneSprings, "springs", []float64{100, 1000, 10000}, "position spring values")
	tuneCmd.Flags().Float64SliceVar(&tuneDampers, "dampers", []float64{10, 100, 1000}, "position damper values")
	tuneCmd.Flags().Float64SliceVar(&tuneForces, "forces", nil, "maximum force values (default: configured force only)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "tracking_error", "metric to minimize")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario of scene runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().StringVar(&stateDir, "state-dir", ".", "directory for the scenario's state files")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range reg.ListScenes() {
				fmt.Fprintf(w, "%s\t%s\n", name, reg.Describe(name))
			}
			return w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFORCE\tSPRING\tDAMPER\tDT\tTICKS\tINTEG")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%d\t%s\n",
					name, p.MaximumForce, p.PositionSpring, p.PositionDamper, p.Dt, p.Ticks, p.Integrator)
			}
			return w.Flush()
		},
	}

	stateCmd := &cobra.Command{
		Use:   "state [file]",
		Short: "print a saved attachment state document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := document.Load(args[0])
			if err != nil {
				return err
			}
			data, err := document.Marshal(root)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, tuneCmd, batchCmd, listCmd, plotCmd, exportCmd, scenesCmd, presetsCmd, stateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "tick length in seconds")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "joint integrator ("+strings.Join(integrators.Names(), "|")+")")
	cmd.Flags().Float64Var(&force, "force", config.DefaultMaximumForce, "joint drive maximum force")
	cmd.Flags().Float64Var(&spring, "spring", config.DefaultPositionSpring, "joint drive position spring")
	cmd.Flags().Float64Var(&damper, "damper", config.DefaultPositionDamper, "joint drive position damper")
	cmd.Flags().BoolVar(&disable, "disable", false, "run with attachment propagation disabled")
	cmd.Flags().IntVar(&bootstrap, "bootstrap-tick", config.DefaultBootstrapTick, "tick at which bootstrap finishes")
}

// resolveConfig layers defaults, then a preset, then a config file, then
// flags the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
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
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("force") {
		cfg.MaximumForce = force
	}
	if flags.Changed("spring") {
		cfg.PositionSpring = spring
	}
	if flags.Changed("damper") {
		cfg.PositionDamper = damper
	}
	if flags.Changed("bootstrap-tick") {
		cfg.BootstrapTick = bootstrap
	}
	if disable {
		cfg.Enabled = false
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Options{Out: os.Stderr, Level: cfg.LogLevel, JSON: logJSON})
}

func setup(cmd *cobra.Command, arg string, quiet bool) (*config.Config, *experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg)
	if quiet {
		log = zerolog.Nop()
	}

	reg := experiment.NewRegistry()
	s, err := experiment.ResolveScene(reg, arg)
	if err != nil {
		return nil, nil, err
	}

	exp := experiment.New(cfg, log)
	if err := exp.Setup(reg, s); err != nil {
		return nil, nil, err
	}
	if loadState != "" {
		if err := exp.GetRunner().LoadState(loadState); err != nil {
			return nil, nil, err
		}
	}
	return cfg, exp, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, exp, err := setup(cmd, args[0], false)
	if err != nil {
		return err
	}
	runner := exp.GetRunner()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s...\n", runner.Scene().Name)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if saveState != "" {
		if err := runner.SaveState(saveState); err != nil {
			return err
		}
		fmt.Printf("state saved to %s\n", saveState)
	}

	meta := storage.RunMetadata{
		Scene:         result.Scene,
		Dt:            cfg.Dt,
		Ticks:         cfg.Ticks,
		BootstrapTick: cfg.BootstrapTick,
		Integrator:    cfg.Integrator,
		Preset:        preset,
	}
	if !noStore {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	if exportPath != "" {
		if err := exportResult(exportPath, meta, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d  phase: %s  strut changes: %d  warp snapshots: %d\n\n",
		result.StepsTaken, runner.Engine().Phase(), result.StrutChanges, result.WarpSnapshots)
	printSnapshots(result.Final)
	printMetrics(result.Metrics)
	return nil
}

func exportResult(path string, meta storage.RunMetadata, result *sim.Result) error {
	if path == "-" {
		return storage.ExportJSON(os.Stdout, meta, result)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return storage.ExportJSON(f, meta, result)
}

func printSnapshots(snaps []attach.Snapshot) {
	if len(snaps) == 0 {
		fmt.Println("no attachments")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tBODY\tKIND\tANCHOR\tOUTCOME\tTARGET")
	for _, s := range snaps {
		target := "-"
		if s.Outcome.Propagated() {
			p := s.Target.Position
			target = fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", s.Index, s.Dependent, s.Kind, s.Anchor, s.Outcome, target)
	}
	w.Flush()
	fmt.Println()
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("metrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	// Console logs would tear the live view.
	_, exp, err := setup(cmd, args[0], true)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(exp.GetRunner(), exp.SimConfig())
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	reg := experiment.NewRegistry()

	names := args[1:]
	jobs := make([]sim.Job, len(names))
	for i, name := range names {
		jobCfg := *cfg
		jobCfg.Integrator = name
		jobs[i] = sim.Job{
			Name: name,
			Build: func() (*sim.Runner, error) {
				s, err := experiment.ResolveScene(reg, args[0])
				if err != nil {
					return nil, err
				}
				exp := experiment.New(&jobCfg, log.With().Str("integrator", jobCfg.Integrator).Logger())
				if err := exp.Setup(reg, s); err != nil {
					return nil, err
				}
				return exp.GetRunner(), nil
			},
		}
	}

	simCfg := sim.Config{Dt: cfg.Dt, Ticks: cfg.Ticks, BootstrapTick: cfg.BootstrapTick}
	start := time.Now()
	results, err := sim.RunBatch(context.Background(), jobs, simCfg)
	if err != nil {
		return err
	}
	fmt.Printf("compared %d integrators in %v\n\n", len(names), time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tTRACKING\tPEAK\tSETTLED\tEFFORT")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.3f\t%.3f\n", names[i],
			res.Metrics["tracking_error"], res.Metrics["peak_error"], res.Metrics["settled"], res.Metrics["drive_effort"])
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tTICKS\tDT\tINTEG\tTRACKING")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%s\t%.6f\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Dt,
			run.Integrator,
			run.Metrics["tracking_error"],
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
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	body := plotBody
	if body == "" {
		body = samples[0].Body
	}
	var picked []metrics.Sample
	for _, s := range samples {
		if s.Body == body {
			picked = append(picked, s)
		}
	}
	if len(picked) == 0 {
		return fmt.Errorf("run %s has no samples for %q", runID, body)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("body: %s\n", body)
	fmt.Printf("samples: %d\n\n", len(picked))

	series := []struct {
		caption string
		pick    func(metrics.Sample) float64
	}{
		{"x", func(s metrics.Sample) float64 { return s.Actual.Position.X }},
		{"y", func(s metrics.Sample) float64 { return s.Actual.Position.Y }},
		{"z", func(s metrics.Sample) float64 { return s.Actual.Position.Z }},
		{"position error", metrics.Sample.PositionError},
	}
	for _, sr := range series {
		data := make([]float64, len(picked))
		for i, s := range picked {
			data[i] = sr.pick(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(body+" "+sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if plotSVG != "" {
		if err := os.WriteFile(plotSVG, []byte(export.TrajectorySVG(samples, 800, 600)), 0644); err != nil {
			return err
		}
		fmt.Printf("svg written to %s\n", plotSVG)
	}
	return nil
}

func tuneDrive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	reg := experiment.NewRegistry()

	params := []string{optim.ParamSpring, optim.ParamDamper}
	ranges := [][]float64{tuneSprings, tuneDampers}
	if len(tuneForces) > 0 {
		params = append(params, optim.ParamForce)
		ranges = append(ranges, tuneForces)
	}
	grid, err := optim.NewGridSearch(params, ranges)
	if err != nil {
		return err
	}

	build := func(c *config.Config) (*sim.Runner, error) {
		s, err := experiment.ResolveScene(reg, args[0])
		if err != nil {
			return nil, err
		}
		exp := experiment.New(c, log)
		if err := exp.Setup(reg, s); err != nil {
			return nil, err
		}
		return exp.GetRunner(), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, all, err := grid.Search(ctx, cfg, build, tuneMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPRING\tDAMPER\tFORCE\t"+strings.ToUpper(tuneMetric))
	for _, p := range all {
		c := optim.Apply(cfg, p.Params)
		val := fmt.Sprintf("%.6f", p.Value)
		if p.Err != nil {
			val = "invalid"
		}
		fmt.Fprintf(w, "%g\t%g\t%g\t%s\n", c.PositionSpring, c.PositionDamper, c.MaximumForce, val)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c := optim.Apply(cfg, best.Params)
	fmt.Printf("\nbest: spring=%g damper=%g force=%g %s=%.6f\n",
		c.PositionSpring, c.PositionDamper, c.MaximumForce, tuneMetric, best.Value)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	log := logging.New(logging.Options{Out: os.Stderr, Level: logLevel, JSON: logJSON})

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	r := &automation.Runner{
		Registry: experiment.NewRegistry(),
		Store:    st,
		StateDir: stateDir,
		Log:      log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, err := r.RunScenario(ctx, sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tTICKS\tTRACKING\tRUN")
	for _, res := range results {
		runID := res.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.6f\t%s\n", res.Index+1, res.Scene, res.Result.StepsTaken, res.Result.Metrics["tracking_error"], runID)
	}
	w.Flush()
	return err
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
