package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mpm1d/internal/automation"
	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/experiment"
	"github.com/san-kum/mpm1d/internal/optim"
	"github.com/san-kum/mpm1d/internal/storage"
)

var (
	basePreset string
	sweepParam string
	sweepVals  []float64
	sweepFrom  float64
	sweepTo    float64
	sweepN     int
	gridSpecs  []string
	objective  string
	mcParam    string
	perturb    float64
	trials     int
	seed       int64
)

func addStudyCommands(rootCmd *cobra.Command) {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "solve and store every run of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter of a preset and tabulate the runs",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&basePreset, "preset", "vibration", "base preset")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "elements", "parameter to vary: "+strings.Join(config.Params, ", "))
	sweepCmd.Flags().Float64SliceVar(&sweepVals, "values", nil, "explicit values")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value of an evenly spaced sweep")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0, "last value of an evenly spaced sweep")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of evenly spaced values")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search preset parameters for the lowest objective",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	searchCmd.Flags().StringVar(&basePreset, "preset", "vibration", "base preset")
	searchCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "param=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&objective, "objective", "max_error", "max_error, steps, or a metric name")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb one preset parameter at random and summarize the trials",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().StringVar(&basePreset, "preset", "vibration", "base preset")
	monteCarloCmd.Flags().StringVar(&mcParam, "param", "young", "parameter to perturb")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturbation", 0.1, "relative perturbation half-width")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 10, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	rootCmd.AddCommand(scenarioCmd, sweepCmd, searchCmd, monteCarloCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario %s: %d runs\n", sc.Name, len(sc.Runs))
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}

	start := time.Now()
	results, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry())
	if err != nil {
		return err
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

func presetBase() (*config.Config, error) {
	cfg := config.GetPreset(basePreset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", basePreset, config.ListPresets())
	}
	return cfg, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := presetBase()
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{Base: base, Param: sweepParam, Values: sweepVals}
	flags := cmd.Flags()
	if flags.Changed("from") || flags.Changed("to") {
		if len(sweepVals) > 0 {
			return fmt.Errorf("--values and --from/--to are exclusive")
		}
		if sweepN < 1 {
			return fmt.Errorf("--n must be at least 1, got %d", sweepN)
		}
		sweep.Linspace(sweepFrom, sweepTo, sweepN)
	}

	results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweep of %s over %s\n\n", sweepParam, base.Name)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tDT\tMAX ERR\tENERGY DRIFT\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		maxErr := "-"
		if base.Analytical != "none" {
			maxErr = fmt.Sprintf("%.4g", r.MaxError)
		}
		fmt.Fprintf(w, "%g\t%d\t%.4g\t%s\t%.4g\n", r.ParamValue, r.Steps, r.Dt, maxErr, r.Metrics["energy_drift"])
	}
	return w.Flush()
}

// parseGrid splits "young=10,40" into its name and values.
func parseGrid(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("grid %q: want param=v1,v2,...", spec)
	}
	var values []float64
	for _, s := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("grid %q: %w", spec, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func objectiveFunc(name string) optim.Objective {
	switch name {
	case "max_error":
		return optim.MaxError
	case "steps":
		return optim.Steps
	default:
		return optim.Metric(name)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	base, err := presetBase()
	if err != nil {
		return err
	}
	if len(gridSpecs) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}

	var names []string
	var ranges [][]float64
	for _, spec := range gridSpecs {
		name, values, err := parseGrid(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "searching %d grid points of %s for lowest %s\n", g.Evaluated(), base.Name, objective)

	start := time.Now()
	params, best, err := g.Search(cmd.Context(), base, experiment.NewRegistry(), objectiveFunc(objective))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	for _, name := range names {
		fmt.Fprintf(out, "%s = %g\n", name, params[name])
	}
	fmt.Fprintf(out, "%s = %.6g\n", objective, best)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := presetBase()
	if err != nil {
		return err
	}

	cfg := &automation.MonteCarloConfig{
		Base:         base,
		Param:        mcParam,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TRIAL\t%s\tMAX ERR\tSTABLE\n", strings.ToUpper(mcParam))
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.6g\t%.4g\t%v\n", r.TrialID, r.ParamValue, r.MaxError, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Fprintf(out, "\nstable: %d, unstable: %d\n", stable, unstable)
	if base.Analytical != "none" {
		mean, std := automation.MaxErrorSpread(results)
		fmt.Fprintf(out, "max error: %.4g ± %.4g\n", mean, std)
	}
	return nil
}
