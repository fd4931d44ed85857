package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/satsim/internal/analysis"
	"github.com/san-kum/satsim/internal/config"
	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/export"
	"github.com/san-kum/satsim/internal/logging"
	"github.com/san-kum/satsim/internal/optim"
	"github.com/san-kum/satsim/internal/satellite"
	"github.com/san-kum/satsim/internal/storage"
	"github.com/san-kum/satsim/internal/viz"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	steps, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}

	sum := analysis.Summarize(steps)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Fprintf(out, "run: %s (%s, seed %d)\n\n", meta.ID, meta.Policy, meta.Seed)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ticks\t%d\n", sum.Ticks)
	fmt.Fprintf(w, "torque ticks\t%d\n", sum.TorqueTicks)
	fmt.Fprintf(w, "attitude readings\t%d\n", sum.Readings)
	fmt.Fprintf(w, "outages\t%d (longest %d, mean %.1f ticks)\n", sum.Outages, sum.LongestOutage, sum.MeanOutage)
	if sum.NoiseSamples > 1 {
		fmt.Fprintf(w, "gyro noise\t%.3g rad/tick (configured %.3g, %d samples)\n",
			sum.GyroNoise, meta.Params.Noise.GyroStdDev, sum.NoiseSamples)
	}
	if sum.Period > 0 {
		fmt.Fprintf(w, "dominant period\t%.1f ticks\n", sum.Period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if phase {
		fmt.Fprintln(out, "\nphase portrait (x: orientation, y: gyro rate)")
		fmt.Fprint(out, analysis.NewPortrait(steps).ASCII(plotWidth, plotHeight*2))
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	steps, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if body {
		if len(steps) == 0 {
			return fmt.Errorf("run %s has no steps", meta.ID)
		}
		c := viz.NewCanvas(40, 20)
		viz.DrawBody(c, satellite.Snapshot{
			Orientation: steps[len(steps)-1].Orientation,
			Length:      meta.Params.Constants.Length,
			Height:      meta.Params.Constants.Height,
		})
		return export.WriteCanvasSVG(w, c, 4)
	}
	return export.WriteTraceSVG(w, steps, svgWidth, svgHeight)
}

// applyParam sets one tunable by name; the names match the sweep axes.
func applyParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "deadband":
		cfg.PolicyParams.Deadband = v
	case "target":
		cfg.PolicyParams.Target = v
	case "gain":
		cfg.PolicyParams.Gain = v
	case "max_rate":
		cfg.PolicyParams.MaxRate = v
	case "omega":
		cfg.InitState.AngularVelocity = v
	case "theta":
		cfg.InitState.Orientation = v
	case "max_v_for_reading":
		cfg.Satellite.MaxVForReading = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if sweepRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", sweepRuns)
	}
	log := newLogger(cmd, cfg).With(logging.String("policy", cfg.Policy))
	out := cmd.OutOrStdout()

	axes := make([]optim.Axis, 0, len(sweepParams))
	for _, s := range sweepParams {
		a, err := optim.ParseAxis(s)
		if err != nil {
			return err
		}
		if err := applyParam(config.DefaultConfig(), a.Name, 0); err != nil {
			return err
		}
		axes = append(axes, a)
	}

	grid := optim.NewGridSearch(axes...)
	if maximize {
		grid.Maximize()
	}

	eval := func(ctx context.Context, params map[string]float64) (float64, error) {
		trial := *cfg
		for name, v := range params {
			if err := applyParam(&trial, name, v); err != nil {
				return 0, err
			}
		}
		if err := trial.Validate(); err != nil {
			return 0, err
		}

		ens := episode.NewEnsemble(func(s int64) (*episode.Runner, error) {
			r, _, err := buildRunner(&trial, s, logging.Noop())
			return r, err
		}, sweepRuns, trial.Seed)
		ens.SetParallelism(parallel)

		results, err := ens.Run(ctx, trial.Episode())
		if err != nil {
			return 0, err
		}
		total := 0.0
		for _, r := range results {
			v, ok := r.Metrics[sweepMetric]
			if !ok {
				return 0, fmt.Errorf("unknown metric: %s", sweepMetric)
			}
			total += v
		}
		return total / float64(len(results)), nil
	}

	log.Info(cmd.Context(), "sweep started",
		logging.Int("combinations", grid.Size()),
		logging.Int("runs_per_point", sweepRuns),
		logging.String("metric", sweepMetric))

	best, trials, err := grid.Search(cmd.Context(), eval)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(axes))
	for _, a := range axes {
		names = append(names, a.Name)
	}
	sort.SliceStable(trials, func(i, j int) bool {
		if maximize {
			return trials[i].Score > trials[j].Score
		}
		return trials[i].Score < trials[j].Score
	})

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, n := range names {
		fmt.Fprintf(w, "%s\t", n)
	}
	fmt.Fprintln(w, sweepMetric)
	for _, t := range trials {
		for _, n := range names {
			fmt.Fprintf(w, "%.6g\t", t.Params[n])
		}
		fmt.Fprintf(w, "%.6f\n", t.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprint(out, "\nbest:")
	for _, n := range names {
		fmt.Fprintf(out, " %s=%.6g", n, best.Params[n])
	}
	fmt.Fprintf(out, " (%s %.6f)\n", sweepMetric, best.Score)
	return nil
}
