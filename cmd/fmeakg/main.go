// Package main provides the fmeakg binary entry point.
// Fmeakg serves an FMEA knowledge graph: it answers which failure modes,
// monitoring actions and system reactions apply to a skill, and records
// failure occurrences back into the persisted graph.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/fmeakg/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "fmeakg"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by all subcommands.
type globalFlags struct {
	configPath   string
	logLevel     string
	ontologyPath string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "FMEA knowledge graph service",
		Long: `Fmeakg serves an FMEA knowledge graph persisted as Turtle or N-Triples.

It provides:
- Failure modes and their parameters for a skill
- Monitoring actions and system reactions for a failure mode
- Ingestion of failure occurrences with their executed actions

The graph is served over HTTP and, optionally, NATS request/reply.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.ontologyPath, "ontology", "", "Persisted graph path (overrides config)")

	cmd.AddCommand(
		serveCmd(flags),
		failureModesCmd(flags),
		monitoringActionsCmd(flags),
		systemReactionsCmd(flags),
		ingestCmd(flags),
		exportCmd(flags),
		vocabCmd(flags),
		initConfigCmd(),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup loads configuration, applies flag overrides and configures logging.
func setup(flags *globalFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.NewLoader(nil).Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.ontologyPath != "" {
		cfg.Ontology.Path = flags.ontologyPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newLogger returns a text logger on stderr; stdout is reserved for results.
func newLogger(levelName string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the knowledge graph over HTTP (and NATS when enabled)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			// Setup signal handling
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger.Info("Fmeakg ready", "version", Version, "http", cfg.HTTP.Addr, "nats", cfg.NATS.Enabled)
			if err := app.Serve(ctx); err != nil {
				return err
			}
			logger.Info("Fmeakg shutdown complete")
			return nil
		},
	}
}
