package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hilrig/hilrig/internal/config"
	"github.com/hilrig/hilrig/internal/device"
	"github.com/hilrig/hilrig/internal/platform"
	"github.com/hilrig/hilrig/internal/report"
	"github.com/hilrig/hilrig/internal/rig"
	"github.com/hilrig/hilrig/internal/runstore"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string
	LogFile  string
	HTMLFile string
	History  string
	Simulate bool
	Quiet    bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every registered test group",
		Long: `Run the full validation sequence: initialize every configured device
under resource arbitration, execute the registered test groups in
order, release everything, and print the summary.

Exit code 0 means every test passed; 1 means a test failed or
initialization aborted the run.

Example:
  hilrig run --config bench.yaml --log run.log --html report.html
  hilrig run --config bench.yaml --simulate`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "hilrig.yaml", "path to the peripheral configuration")
	cmd.Flags().StringVar(&opts.LogFile, "log", "", "append the run transcript to this file")
	cmd.Flags().StringVar(&opts.HTMLFile, "html", "", "write an HTML report to this file")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the run in this SQLite history database")
	cmd.Flags().BoolVar(&opts.Simulate, "simulate", false, "force simulated devices")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress console output")

	return cmd
}

func runAll(ctx context.Context, opts *RunOptions) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}

	simulate := opts.Simulate || cfg.SimulateResolved(!platform.IsRaspberryPi())
	if simulate {
		slog.Info("running with simulated devices")
	}

	rec := report.NewRecorder(slog.Default(), nil)
	if err := attachSinks(rec, cfg, opts); err != nil {
		return WrapExitError(ExitCommandError, "configuring report sinks", err)
	}
	defer func() {
		if err := rec.Close(); err != nil {
			slog.Warn("closing report sinks", "error", err)
		}
	}()

	mgr, err := config.Build(cfg, device.DefaultRegistry, rec, simulate)
	if err != nil {
		return WrapExitError(ExitCommandError, "constructing devices", err)
	}
	if opts.Verbose {
		mgr.EnableLoggingAll()
	}

	engine := rig.New(mgr, rec, nil)
	sum, runErr := engine.Run(rig.Registered())

	if path := firstOf(opts.History, cfg.History.Path); path != "" {
		if err := persistRun(ctx, path, sum, rec); err != nil {
			slog.Error("recording run history", "path", path, "error", err)
		}
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "run aborted during initialization", runErr)
	}
	if !sum.Success() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d tests failed", sum.Failed, sum.Total))
	}
	return nil
}

// attachSinks wires the configured report sinks; flags override the
// config file path for the same sink.
func attachSinks(rec *report.Recorder, cfg *config.Config, opts *RunOptions) error {
	if !opts.Quiet {
		rec.Attach(report.NewConsoleSink(nil))
	}
	if path := firstOf(opts.LogFile, cfg.Report.Log); path != "" {
		sink, err := report.NewFileSink(path)
		if err != nil {
			return err
		}
		rec.Attach(sink)
	}
	if path := firstOf(opts.HTMLFile, cfg.Report.HTML); path != "" {
		rec.Attach(report.NewHTMLSink(path, slog.Default()))
	}
	if mq := cfg.Report.MQTT; mq != nil {
		sink, err := report.NewMQTTSink(report.MQTTConfig{
			Broker:   mq.Broker,
			ClientID: firstOf(mq.ClientID, "hilrig"),
			Topic:    mq.Topic,
			Username: mq.Username,
			Password: mq.Password,
			QoS:      byte(mq.QoS),
		}, slog.Default())
		if err != nil {
			return err
		}
		rec.Attach(sink)
	}
	if ifx := cfg.Report.Influx; ifx != nil {
		rec.Attach(report.NewInfluxSink(report.InfluxConfig{
			URL:    ifx.URL,
			Token:  ifx.Token,
			Org:    ifx.Org,
			Bucket: ifx.Bucket,
		}, slog.Default()))
	}
	return nil
}

func persistRun(ctx context.Context, path string, sum *rig.Summary, rec *report.Recorder) error {
	store, err := runstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.WriteRun(ctx, sum.Info(), rec.Entries())
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
