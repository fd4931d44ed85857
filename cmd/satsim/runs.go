package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/satsim/internal/config"
	"github.com/san-kum/satsim/internal/policy"
	"github.com/san-kum/satsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOLICY\tPRESET\tTIME\tSEED\tSTEPS\tREASON")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.Policy,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Steps,
			run.Reason,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
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
	if len(steps) < 2 {
		return fmt.Errorf("no data to plot")
	}

	gyro := make([]float64, len(steps))
	attitude := make([]float64, len(steps))
	stale := make([]float64, len(steps))
	for i, s := range steps {
		gyro[i] = s.Observation.Gyros[0]
		attitude[i] = s.Observation.LastAttitudeReading * 180 / math.Pi
		stale[i] = float64(s.Observation.TicksSinceReading)
	}

	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "policy: %s  seed: %d\n", meta.Policy, meta.Seed)
	fmt.Fprintf(out, "samples: %d (%s)\n\n", len(steps), meta.Reason)

	opts := []asciigraph.Option{asciigraph.Width(plotWidth), asciigraph.Height(plotHeight)}
	for _, p := range []struct {
		caption string
		data    []float64
	}{
		{"gyro rate (rad/tick)", gyro},
		{"attitude reading (deg)", attitude},
		{"ticks since reading", stale},
	} {
		if lo, hi := bounds(p.data); lo == hi {
			fmt.Fprintf(out, "%s: constant %.6g\n\n", p.caption, lo)
			continue
		}
		fmt.Fprintln(out, asciigraph.Plot(p.data, append(opts, asciigraph.Caption(p.caption))...))
		fmt.Fprintln(out)
	}
	return nil
}

func bounds(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	steps, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(cmd.OutOrStdout(), *meta, steps)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	steps, err := storage.New(dataDir).LoadSteps(args[0])
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
	if err := storage.WriteCSV(w, steps); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d steps to %s\n", len(steps), outFile)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPOLICY\tSTEPS\tOMEGA\tNOISE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		noise := "on"
		if cfg.Noise == (config.NoiseConfig{}) {
			noise = "off"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%s\n", name, cfg.Policy, cfg.Steps, cfg.InitState.AngularVelocity, noise)
	}
	return w.Flush()
}

func listPolicies(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, name := range policy.NewRegistry().Names() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}
