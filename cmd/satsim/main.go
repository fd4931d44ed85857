package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	policyName  string
	seed        int64
	steps       int
	settleSteps int
	omega       float64
	theta       float64
	target      float64
	deadband    float64
	gain        float64
	maxRate     float64
	script      []string
	noiseless   bool

	render      bool
	frameRate   int
	noSave      bool
	metricsAddr string
	mqttBroker  string
	mqttTopic   string

	numRuns  int
	parallel int

	plotWidth  int
	plotHeight int
	outFile    string
	asJSON     bool
	phase      bool
	body       bool

	svgWidth  int
	svgHeight int

	sweepParams []string
	sweepMetric string
	sweepRuns   int
	maximize    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "satsim",
		Short:        "single-axis satellite attitude simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".satsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one episode and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&render, "render", false, "draw frames to stdout")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate when rendering")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "publish per-tick telemetry to this broker (tcp://host:1883)")
	runCmd.Flags().StringVar(&mqttTopic, "mqtt-topic", "", "mqtt topic for telemetry")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run many seeds of the same scenario in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of episodes")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent episodes (0 = unlimited)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot sensor traces of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and trajectory as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run steps to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sensor statistics and spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "draw the orientation/rate phase portrait")
	analyzeCmd.Flags().IntVar(&plotWidth, "width", 70, "portrait width")
	analyzeCmd.Flags().IntVar(&plotHeight, "height", 10, "portrait half height")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the gyro trace (or final body outline) as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().BoolVar(&body, "body", false, "draw the final body outline instead of the trace")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "trace width in pixels")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 300, "trace height in pixels")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search policy parameters over seeded ensembles",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "axis as name=v1,v2 or name=lo:hi:n (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "mean_rate", "metric to optimize")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer larger metric values")
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 4, "episodes per grid point")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent episodes (0 = unlimited)")
	sweepCmd.MarkFlagRequired("param")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	policiesCmd := &cobra.Command{
		Use:   "policies",
		Short: "list available policies",
		Args:  cobra.NoArgs,
		RunE:  listPolicies,
	}

	rootCmd.AddCommand(runCmd, liveCmd, ensembleCmd, sweepCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportCSVCmd, exportSVGCmd, presetsCmd, policiesCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&policyName, "policy", "", "control policy")
	cmd.Flags().Int64Var(&seed, "seed", 0, "noise seed (0 = config value or time)")
	cmd.Flags().IntVar(&steps, "steps", 0, "maximum ticks")
	cmd.Flags().IntVar(&settleSteps, "settle", 0, "stop after this many consecutive fresh readings")
	cmd.Flags().Float64Var(&omega, "omega", 0, "initial angular velocity (rad/tick)")
	cmd.Flags().Float64Var(&theta, "theta", 0, "initial orientation (rad)")
	cmd.Flags().Float64Var(&target, "target", 0, "pointing target (rad)")
	cmd.Flags().Float64Var(&deadband, "deadband", 0, "detumble deadband (rad/tick)")
	cmd.Flags().Float64Var(&gain, "gain", 0, "pointing gain")
	cmd.Flags().Float64Var(&maxRate, "max-rate", 0, "pointing slew rate limit (rad/tick)")
	cmd.Flags().StringSliceVar(&script, "script", nil, "actions for the scripted policy (cw,rest,ccw)")
	cmd.Flags().BoolVar(&noiseless, "noiseless", false, "disable sensor noise")
}
