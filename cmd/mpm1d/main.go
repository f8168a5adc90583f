package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mpm1d/internal/analysis"
	"github.com/san-kum/mpm1d/internal/chart"
	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/experiment"
	"github.com/san-kum/mpm1d/internal/storage"
	"github.com/san-kum/mpm1d/internal/viz"
)

var (
	dataDir    string
	configFile string
	presets    []string
	elements   int
	ppe        int
	totalTime  float64
	young      float64
	density    float64
	v0         float64
	quiet      bool
	outPath    string
	chartDir   string
	chartFmt   string
	positions  bool
	scale      float64
	benchSizes []int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "mpm1d",
		Short:        "one-dimensional material point method solver",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mpm1d", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [config]",
		Short: "solve a bar and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	runCmd.Flags().StringSliceVar(&presets, "preset", nil, "preset name; repeat to solve several concurrently")
	runCmd.Flags().IntVar(&elements, "elements", config.DefaultElements, "number of elements")
	runCmd.Flags().IntVar(&ppe, "ppe", config.DefaultParticles, "particles per element")
	runCmd.Flags().Float64Var(&totalTime, "time", config.DefaultTotalTime, "total simulated time")
	runCmd.Flags().Float64Var(&young, "young", config.DefaultYoung, "young modulus")
	runCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "density")
	runCmd.Flags().Float64Var(&v0, "v0", 0, "initial velocity amplitude")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress output")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot center-of-mass history in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "write figures of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&chartDir, "out", "o", "", "output directory (default <data>/<run_id>/charts)")
	chartCmd.Flags().StringVarP(&chartFmt, "format", "f", "png", "figure format: png, svg or pdf")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "draw center-of-mass position against velocity",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export center-of-mass history to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportJSONCmd.Flags().BoolVar(&positions, "positions", false, "include particle positions per step")

	animateCmd := &cobra.Command{
		Use:   "animate [run_id]",
		Short: "replay particle motion in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  animateRun,
	}
	animateCmd.Flags().Float64Var(&scale, "scale", viz.DefaultScale, "displacement magnification")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}
	presetsCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the preset to this file")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "time the solver at several mesh sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchSolver,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "elements", []int{25, 50, 100}, "element counts to time")
	benchCmd.Flags().Float64Var(&totalTime, "time", 1, "total simulated time")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, chartCmd, phaseCmd, exportCSVCmd, exportJSONCmd, animateCmd, presetsCmd, benchCmd)
	addStudyCommands(rootCmd)
	return rootCmd
}

// loadConfigs resolves the configs of a run command: presets, or a config
// file, or defaults, with explicitly set flags applied on top.
func loadConfigs(cmd *cobra.Command, args []string) ([]*config.Config, error) {
	if len(args) == 1 {
		if configFile != "" {
			return nil, fmt.Errorf("config given twice: %s and --config %s", args[0], configFile)
		}
		configFile = args[0]
	}
	if configFile != "" && len(presets) > 0 {
		return nil, fmt.Errorf("--config and --preset are exclusive")
	}

	var cfgs []*config.Config
	switch {
	case len(presets) > 0:
		for _, name := range presets {
			cfg := config.GetPreset(name)
			if cfg == nil {
				return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
			}
			cfgs = append(cfgs, cfg)
		}
	case configFile != "":
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfgs = append(cfgs, cfg)
	default:
		cfgs = append(cfgs, config.DefaultConfig())
	}

	flags := cmd.Flags()
	for _, cfg := range cfgs {
		if flags.Changed("elements") {
			cfg.Domain.Elements = elements
		}
		if flags.Changed("ppe") {
			cfg.ParticlesPerElement = ppe
		}
		if flags.Changed("time") {
			cfg.TotalTime = totalTime
		}
		if flags.Changed("young") {
			cfg.Material.Young = young
		}
		if flags.Changed("density") {
			cfg.Material.Density = density
		}
		if flags.Changed("v0") {
			cfg.InitialVelocity.Amplitude = v0
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfgs, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfgs, err := loadConfigs(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	registry := experiment.NewRegistry()
	start := time.Now()

	var results []*experiment.Result
	if len(cfgs) == 1 {
		exp, err := experiment.New(cfgs[0], registry)
		if err != nil {
			return err
		}
		if !quiet {
			exp.AddObserver(viz.NewProgress(cmd.ErrOrStderr(), exp.Model().NumberOfSteps()))
		}
		fmt.Fprintf(out, "running %s: %s\n", cfgs[0].Name, exp.Model().Mesh())
		res, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		results = append(results, res)
	} else {
		fmt.Fprintf(out, "running %d experiments concurrently...\n", len(cfgs))
		results, err = experiment.RunAll(cmd.Context(), cfgs, registry)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "completed in %v\n", time.Since(start).Round(time.Millisecond))
	for _, res := range results {
		runID, err := st.Save(res)
		if err != nil {
			return err
		}
		printResult(out, runID, res)
	}
	return nil
}

func printResult(out io.Writer, runID string, res *experiment.Result) {
	fmt.Fprintf(out, "\nrun id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d\n", len(res.Snapshots))
	fmt.Fprintf(out, "dt: %.6g\n", res.Dt)
	if res.HasAnalytical() {
		fmt.Fprintf(out, "max error (%s): %.6g\n", res.Config.Analytical, res.MaxError)
	}
	fmt.Fprintln(out, "metrics:")
	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6g\n", name, res.Metrics[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tDT\tPARTICLES\tMAX ERR")
	for _, run := range runs {
		maxErr := "-"
		if run.HasAnalytical {
			maxErr = fmt.Sprintf("%.3g", run.MaxError)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Particles,
			maxErr,
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
	com, err := st.LoadCenterOfMass(runID)
	if err != nil {
		return err
	}
	if len(com.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.HeaderStyle.Render("run "+meta.ID))
	fmt.Fprintln(out, viz.PlotSeries("center of mass velocity", com.Velocity, com.Analytical))
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.PlotSeries("center of mass position", com.Position, nil))
	fmt.Fprintln(out)

	if period, ok := analysis.Period(com.Times, com.Velocity); ok {
		fmt.Fprintln(out, viz.Metric("period", period))
	}
	fmt.Fprintln(out, viz.Metric("frequency", analysis.DominantFrequency(com.Velocity, meta.Dt)))
	if com.Analytical != nil {
		fmt.Fprintln(out, viz.Metric("max error", analysis.MaxAbsError(com.Velocity, com.Analytical)))
	}
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, viz.Metric(name, meta.Metrics[name]))
	}
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	com, err := st.LoadCenterOfMass(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadParticles(runID)
	if err != nil {
		return err
	}

	run := chart.Run{
		Name:       meta.ID,
		Times:      com.Times,
		Velocity:   com.Velocity,
		Position:   com.Position,
		Analytical: com.Analytical,
		Nodes:      meta.Nodes,
		FixedNodes: meta.FixedNodes,
	}
	if len(frames) > 0 {
		for _, p := range frames[0].Particles {
			run.Particles = append(run.Particles, p.X)
		}
	}

	dir := chartDir
	if dir == "" {
		dir = filepath.Join(dataDir, runID, "charts")
	}
	paths, err := chart.SaveRun(dir, chartFmt, run)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	com, err := storage.New(dataDir).LoadCenterOfMass(runID)
	if err != nil {
		return err
	}
	if len(com.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.HeaderStyle.Render("phase portrait "+runID))
	fmt.Fprintln(out, viz.Subtle.Render("x: center of mass position, y: center of mass velocity"))
	fmt.Fprint(out, analysis.PhasePortraitFromSeries(com.Position, com.Velocity).ToASCII(70, 20))
	return nil
}

// output opens outPath, or returns stdout when it is empty.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outPath == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportCSV(args[0], w); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportJSON(args[0], positions, w); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func animateRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	stored, err := st.LoadParticles(runID)
	if err != nil {
		return err
	}

	frames := make([]viz.Frame, len(stored))
	for i, f := range stored {
		frames[i] = viz.Frame{Time: f.Time, X: make([]float64, len(f.Particles))}
		for j, p := range f.Particles {
			frames[i].X[j] = p.X
		}
	}

	return viz.Animate(viz.NewAnimator(meta.ID, frames, meta.Nodes, meta.FixedNodes, scale))
}

func showPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, "presets:")
		for _, name := range config.ListPresets() {
			cfg := config.GetPreset(name)
			fmt.Fprintf(out, "  %-10s %d elements, %d particles/element, T=%g, analytical=%s\n",
				name, cfg.Domain.Elements, cfg.ParticlesPerElement, cfg.TotalTime, cfg.Analytical)
		}
		return nil
	}

	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if outPath != "" {
		if err := config.Save(outPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", outPath)
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func benchSolver(cmd *cobra.Command, args []string) error {
	name := "wave"
	if len(args) == 1 {
		name = args[0]
	}
	if config.GetPreset(name) == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s\n\n", name)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ELEMENTS\tPARTICLES\tSTEPS\tTIME\tSTEPS/SEC\tPARTICLE-STEPS/SEC")

	registry := experiment.NewRegistry()
	for _, n := range benchSizes {
		cfg := config.GetPreset(name)
		cfg.Domain.Elements = n
		cfg.TotalTime = totalTime
		cfg.FixedNodes = []int{0}

		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return err
		}

		start := time.Now()
		res, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		steps := len(res.Snapshots)
		particles := len(exp.Model().Particles())
		rate := float64(steps) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%.0f\n",
			n, particles, steps, elapsed.Round(time.Microsecond), rate, rate*float64(particles))
	}
	return w.Flush()
}
