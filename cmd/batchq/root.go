package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/utkarsh5026/batchq/internal/config"
	"github.com/utkarsh5026/batchq/internal/logging"
	"github.com/utkarsh5026/batchq/internal/metrics"
	"go.uber.org/zap"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	server   *metrics.Server
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "batchq",
		Short: "Bounded-concurrency batch runner with fixed-delay retries",
		Long: `batchq runs a list of independent tasks with at most N in flight,
retries failures after a fixed delay, and reports every result in
submission order.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	defaults := config.Default()
	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./batchq.yaml or $HOME/.config/batchq/batchq.yaml)")
	flags.IntP("concurrency", "n", defaults.Concurrency, "maximum number of tasks in flight")
	flags.IntP("retries", "r", defaults.Retries, "additional attempts per failing task")
	flags.Duration("retry-delay", defaults.RetryDelay, "fixed wait between attempts")
	flags.Float64("rate", defaults.Rate, "maximum attempts per second, 0 for unlimited")
	flags.Int("burst", defaults.Burst, "rate limiter burst size")
	flags.Bool("pin-cpus", defaults.PinCPUs, "pin each concurrency slot to an OS thread and core")
	flags.String("log-level", defaults.Logging.Level, "log level: debug, info, warn, error")
	flags.Bool("log-dev", defaults.Logging.Development, "human-readable development logging")
	flags.String("metrics-addr", defaults.MetricsAddr, "serve Prometheus metrics on this address (e.g. :9090)")

	root.AddCommand(
		newSimulateCmd(a),
		newFetchCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	a.logger = logger.Named("batchq")
	cmd.SetContext(logging.WithContext(cmd.Context(), a.logger))

	a.registry = metrics.NewRegistry()
	if cfg.MetricsAddr != "" {
		a.server = metrics.NewServer(cfg.MetricsAddr, a.registry, a.logger)
		if err := a.server.Start(); err != nil {
			return err
		}
		a.logger.Info("serving metrics", zap.String("url", "http://"+a.server.Addr()+metrics.DefaultPath))
	}
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Stop(ctx); err != nil {
			a.logger.Warn("metrics server stop failed", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}
