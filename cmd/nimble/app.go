package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nimble/pkg/config"
	"github.com/ajitpratap0/nimble/pkg/connector"
	"github.com/ajitpratap0/nimble/pkg/logger"
	"github.com/ajitpratap0/nimble/pkg/metrics"
	"github.com/ajitpratap0/nimble/pkg/observability"
)

// app carries the state shared by the subcommands: the resolved
// configuration and where results are written.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	timeout time.Duration
	out     io.Writer
	tracing bool

	newConnector func(cfg config.ConnectionConfig, opts ...connector.Option) (*connector.Connector, error)
}

func newApp(out io.Writer) *app {
	return &app{
		v:            config.NewViper(),
		out:          out,
		newConnector: connector.New,
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "nimble",
		Short: "Nimble - run SQL against PostgreSQL and move tables in and out",
		Long: `Nimble runs queries and DDL against a PostgreSQL database and bulk-loads
CSV files into tables.

Connection settings come from flags, NIMBLE_* environment variables (a .env
file is read if present) or a YAML file given with --config, in that order
of precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.String(config.KeyConfigFile, "", "Path to YAML configuration file")
	flags.String(config.KeyHost, "", "Database host (default localhost)")
	flags.String(config.KeyPort, "", "Database port (default 5432)")
	flags.String(config.KeyDatabase, "", "Database name")
	flags.String(config.KeyUser, "", "Database user")
	flags.String(config.KeyPassword, "", "Database password")
	flags.String(config.KeySSLMode, "", "SSL mode (disable, require, verify-full, ...)")
	flags.Duration(config.KeyConnectTimeout, 0, "Timeout for establishing a connection (default 10s)")
	flags.String(config.KeyLogLevel, "", "Log level (debug, info, warn, error)")
	flags.Bool(config.KeyTrace, false, "Write OpenTelemetry spans to stderr")
	flags.Bool(config.KeyMetrics, true, "Record Prometheus metrics for database operations")
	flags.DurationVar(&a.timeout, "timeout", 0, "Overall timeout for the command (0 means none)")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		a.queryCommand(),
		a.execCommand(),
		a.storeCommand(),
		a.pingCommand(),
		versionCommand(a.out),
	)
	return root
}

// setup resolves the configuration and initializes logging and tracing
// before any database command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}

	if cfg.Observability.EnableTracing {
		if err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    cfg.Observability.ServiceName,
			ServiceVersion: version,
			SamplingRate:   cfg.Observability.TracingSampleRate,
			Writer:         os.Stderr,
		}); err != nil {
			return err
		}
		a.tracing = true
	}

	logger.Get().Debug("configuration loaded",
		zap.String("dsn", cfg.Database.Redacted()),
		zap.Bool("tracing", cfg.Observability.EnableTracing),
		zap.Bool("metrics", cfg.Observability.EnableMetrics))
	return nil
}

// shutdown flushes spans and logs. Safe to call when setup never ran.
func (a *app) shutdown() {
	if a.tracing {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.Shutdown(ctx); err != nil {
			logger.Get().Warn("failed to flush traces", zap.Error(err))
		}
	}
	_ = logger.Sync()
}

func (a *app) connector() (*connector.Connector, error) {
	var opts []connector.Option
	if !a.cfg.Observability.EnableMetrics {
		// unregistered, so nothing reaches the default registry
		opts = append(opts, connector.WithMetrics(metrics.NewRecorder(nil)))
	}
	return a.newConnector(a.cfg.Database, opts...)
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

func versionCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// version needs no database configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(out, "Nimble v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
