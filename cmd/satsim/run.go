package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/satsim/internal/config"
	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/logging"
	"github.com/san-kum/satsim/internal/metrics"
	"github.com/san-kum/satsim/internal/policy"
	"github.com/san-kum/satsim/internal/satellite"
	"github.com/san-kum/satsim/internal/storage"
	"github.com/san-kum/satsim/internal/telemetry"
	"github.com/san-kum/satsim/internal/viz"
)

// resolveConfig layers flags over the config file over the preset.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("policy") {
		cfg.Policy = policyName
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("settle") {
		cfg.SettleSteps = settleSteps
	}
	if flags.Changed("omega") {
		cfg.InitState.AngularVelocity = omega
	}
	if flags.Changed("theta") {
		cfg.InitState.Orientation = theta
	}
	if flags.Changed("target") {
		cfg.PolicyParams.Target = target
	}
	if flags.Changed("deadband") {
		cfg.PolicyParams.Deadband = deadband
	}
	if flags.Changed("gain") {
		cfg.PolicyParams.Gain = gain
	}
	if flags.Changed("max-rate") {
		cfg.PolicyParams.MaxRate = maxRate
	}
	if flags.Changed("script") {
		cfg.PolicyParams.Script = script
	}
	if noiseless {
		cfg.Noise = config.NoiseConfig{}
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("metrics-addr") {
		cfg.Telemetry.MetricsAddr = metricsAddr
	}
	if flags.Changed("mqtt-broker") {
		cfg.Telemetry.MQTTBroker = mqttBroker
	}
	if flags.Changed("mqtt-topic") {
		cfg.Telemetry.MQTTTopic = mqttTopic
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) logging.Logger {
	lc := cfg.Log
	lc.Output = cmd.ErrOrStderr()
	if cmd.Flags().Changed("log-level") || cmd.Flags().Changed("log-format") {
		return logging.New(lc)
	}
	return logging.NewFromEnv(lc)
}

func buildRunner(cfg *config.Config, seed int64, log logging.Logger) (*episode.Runner, func() episode.Policy, error) {
	build, err := policy.NewRegistry().Factory(cfg.Policy, cfg.PolicyArgs(), cfg.Constants(), seed)
	if err != nil {
		return nil, nil, err
	}
	r := episode.New(satellite.New(cfg.Params(), seed), build())
	r.SetLogger(log)
	for _, m := range metrics.Defaults() {
		r.AddMetric(m)
	}
	return r, build, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg).With(logging.String("policy", cfg.Policy), logging.Int64("seed", cfg.Seed))
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner, _, err := buildRunner(cfg, cfg.Seed, log)
	if err != nil {
		return err
	}

	var collector *telemetry.Collector
	if cfg.Telemetry.MetricsAddr != "" {
		collector, err = telemetry.NewCollector(nil)
		if err != nil {
			return err
		}
		runner.AddObserver(collector)
		shutdown := serveMetrics(ctx, cfg.Telemetry.MetricsAddr, collector.Handler(), log)
		defer shutdown()
	}

	if cfg.Telemetry.MQTTBroker != "" {
		client, err := telemetry.Dial(cfg.Telemetry.MQTTBroker, cfg.Telemetry.MQTTClientID)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		pub := telemetry.NewPublisher(client, cfg.Telemetry.MQTTTopic, fmt.Sprintf("%s_%d", cfg.Policy, cfg.Seed), log)
		runner.AddObserver(pub)
		defer func() {
			log.Info(ctx, "telemetry published",
				logging.Int("frames", pub.Published),
				logging.Int("failed", pub.Failed))
		}()
	}

	if render {
		fr := viz.NewFrameRenderer(out, cfg.Policy, frameRate)
		fr.Start()
		defer fr.Stop()
		runner.SetRenderer(fr)
	}

	start := time.Now()
	result, err := runner.Run(ctx, cfg.Episode())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	elapsed := time.Since(start)
	if collector != nil {
		collector.EpisodeDone()
	}

	runID := ""
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(storage.RunMetadata{
			Preset:   cfg.Preset,
			Policy:   cfg.Policy,
			Seed:     cfg.Seed,
			MaxSteps: cfg.Steps,
			Params:   cfg.Params(),
		}, result)
		if err != nil {
			return err
		}
		log.Info(ctx, "run saved", logging.String("run_id", runID), logging.String("dir", dataDir))
	}

	printResult(out, runID, result, elapsed)
	return nil
}

func printResult(out io.Writer, runID string, result *episode.Result, elapsed time.Duration) {
	final := result.Final()
	fmt.Fprintf(out, "completed in %v\n", elapsed.Round(time.Microsecond))
	if runID != "" {
		fmt.Fprintf(out, "run id: %s\n", runID)
	}
	fmt.Fprintf(out, "steps: %d (%s)\n", result.StepsTaken, result.Reason)
	fmt.Fprintf(out, "final gyro: %+.6f rad/tick\n", final.Gyros[0])
	fmt.Fprintf(out, "last attitude: %.4f rad (%d ticks old)\n", final.LastAttitudeReading, final.TicksSinceReading)

	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(out, "  %s: %.6f\n", name, result.Metrics[name])
	}
}

// serveMetrics starts an HTTP server for /metrics and returns a function that
// shuts it down.
func serveMetrics(ctx context.Context, addr string, h http.Handler, log logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info(ctx, "serving metrics", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logging.Err(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// Log lines would tear the alternate screen.
	runner, build, err := buildRunner(cfg, cfg.Seed, logging.Noop())
	if err != nil {
		return err
	}

	maxSteps := 0
	if cmd.Flags().Changed("steps") {
		maxSteps = cfg.Steps
	}
	model := viz.NewModel(runner, build, cfg.Policy, maxSteps)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}
	log := newLogger(cmd, cfg).With(logging.String("policy", cfg.Policy))
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ens := episode.NewEnsemble(func(s int64) (*episode.Runner, error) {
		r, _, err := buildRunner(cfg, s, log.With(logging.Int64("seed", s)))
		return r, err
	}, numRuns, cfg.Seed)
	ens.SetParallelism(parallel)

	start := time.Now()
	results, err := ens.Run(ctx, cfg.Episode())
	if err != nil {
		return err
	}
	log.Info(ctx, "ensemble finished",
		logging.Int("runs", len(results)),
		logging.String("elapsed", time.Since(start).String()))

	names := sortedKeys(results[0].Metrics)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED\tSTEPS\tREASON")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprintln(w)

	sums := make(map[string]float64, len(names))
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%d\t%s", cfg.Seed+int64(i), res.StepsTaken, res.Reason)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4f", res.Metrics[n])
			sums[n] += res.Metrics[n]
		}
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, "mean\t\t")
	for _, n := range names {
		fmt.Fprintf(w, "\t%.4f", sums[n]/float64(len(results)))
	}
	fmt.Fprintln(w)
	return w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
