package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/semstreams/vocabulary"
	"github.com/spf13/cobra"

	"github.com/c360studio/fmeakg/config"
	"github.com/c360studio/fmeakg/export"
	"github.com/c360studio/fmeakg/ingest"
	"github.com/c360studio/fmeakg/ontology"
	kgapi "github.com/c360studio/fmeakg/processor/kg-api"
	"github.com/c360studio/fmeakg/query"
	"github.com/c360studio/fmeakg/vocabulary/fmea"
)

// withApp runs fn against an app built from the global flags.
func withApp(flags *globalFlags, fn func(*App) error) error {
	cfg, logger, err := setup(flags)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Shutdown()
	return fn(app)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRows[T any](cmd *cobra.Command, app *App, template, input string, explain bool, rows []T, err error) error {
	if err != nil {
		return err
	}
	resp := kgapi.RowsResponse[T]{Rows: rows}
	if explain {
		resp.SPARQL = app.queries.Explain(template, input)
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}

func failureModesCmd(flags *globalFlags) *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "failure-modes SKILL",
		Short: "List failure modes and their parameters for a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *App) error {
				rows, err := app.queries.FailureModeParameters(cmd.Context(), args[0])
				return writeRows(cmd, app, query.TemplateFailureModes, args[0], explain, rows, err)
			})
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "Include the SPARQL text of the query")
	return cmd
}

func monitoringActionsCmd(flags *globalFlags) *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "monitoring-actions FAILURE_MODE_IRI",
		Short: "List monitoring actions for a failure mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *App) error {
				rows, err := app.queries.MonitoringActionsFor(cmd.Context(), args[0])
				return writeRows(cmd, app, query.TemplateMonitoringActions, args[0], explain, rows, err)
			})
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "Include the SPARQL text of the query")
	return cmd
}

func systemReactionsCmd(flags *globalFlags) *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "system-reactions FAILURE_MODE_IRI",
		Short: "List system reactions for a failure mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *App) error {
				rows, err := app.queries.SystemReactionsFor(cmd.Context(), args[0])
				return writeRows(cmd, app, query.TemplateSystemReactions, args[0], explain, rows, err)
			})
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "Include the SPARQL text of the query")
	return cmd
}

func ingestCmd(flags *globalFlags) *cobra.Command {
	var (
		req          ingest.Request
		actions      []string
		snapshotFile string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Record a failure occurrence in the persisted graph",
		Long: `Record a failure occurrence with its executed monitoring actions and
system reaction. Omit --failure-mode for a failure of unknown cause.
Pass --monitoring-action once per executed action, in execution order;
an empty value records an execution without a definition.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.EventID == "" && req.CorrelationID == "" {
				return fmt.Errorf("one of --event-id or --correlation-id is required")
			}
			req.MonitoringActions = actions

			if snapshotFile != "" {
				data, err := readInput(cmd, snapshotFile)
				if err != nil {
					return fmt.Errorf("read snapshot: %w", err)
				}
				req.Snapshot = string(data)
			}

			return withApp(flags, func(app *App) error {
				event, err := req.Event(time.Now())
				if err != nil {
					return err
				}
				result, err := app.ingester.Ingest(cmd.Context(), event)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.EventID, "event-id", "", "Event id used to derive node ids")
	f.StringVar(&req.CorrelationID, "correlation-id", "", "Correlation id; the event id becomes <id>_<timestamp>")
	f.StringVar(&req.FailureMode, "failure-mode", "", "IRI of the identified failure mode")
	f.StringArrayVar(&actions, "monitoring-action", nil, "IRI of an executed monitoring action (repeatable)")
	f.StringVar(&req.SystemReaction, "system-reaction", "", "IRI of the executed system reaction")
	f.StringVar(&req.Skill, "skill", "", "Name of the interrupted skill")
	f.StringVar(&req.Process, "process", "", "Name of the interrupted process")
	f.StringVar(&req.Summary, "summary", "", "Free-text summary of the failure")
	f.StringVar(&req.Snapshot, "snapshot", "", "Controller snapshot at failure time")
	f.StringVar(&snapshotFile, "snapshot-file", "", "Read the snapshot from a file (- for stdin)")
	f.BoolVar(&req.WrapSnapshot, "wrap-snapshot", false, "Bracket the snapshot with inventory markers")
	_ = cmd.MarkFlagRequired("skill")

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		formatName string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the graph as Turtle, N-Triples or JSON-LD",
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatName == "" && output != "" {
				if f, ok := export.FormatForPath(output); ok {
					formatName = string(f)
				}
			}
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			return withApp(flags, func(app *App) error {
				out, err := app.store.Export(format)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = io.WriteString(cmd.OutOrStdout(), out)
					return err
				}
				return os.WriteFile(output, []byte(out), 0644)
			})
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func vocabCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "List the registered FMEA predicates and their IRIs in the configured namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(flags)
			if err != nil {
				return err
			}
			vocab, err := ontology.NewVocabulary(cfg.Namespace())
			if err != nil {
				return fmt.Errorf("build vocabulary: %w", err)
			}

			names := make([]string, 0, len(fmea.LocalNames))
			for _, name := range vocabulary.ListRegisteredPredicates() {
				if strings.HasPrefix(name, "fmea.") {
					names = append(names, name)
				}
			}
			sort.Strings(names)

			w := cmd.OutOrStdout()
			for _, name := range names {
				iri, ok := vocab.PredicateIRI(name)
				if !ok {
					continue
				}
				fmt.Fprintf(w, "%-36s %s\n", name, iri)
			}
			return nil
		},
	}
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the default user configuration if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(nil).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
