package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"example.com/event-planner/gateway/internal/config"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// Global flags
var (
	apiBaseURL   string
	apiToken     string
	snapshotPath string
	outputFormat string
	eventBudget  float64
	verbose      bool

	plannerCfg config.PlannerConfig
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "plannerctl",
	Version: "dev",
	Short:   "Event planner cart client",
	Long: `plannerctl drives an event's planner cart against the event service:
add and remove vendor services, save wizard progress, finalize bookings.

When the event service is unreachable, progress falls back to a local snapshot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadPlanner()
		if err != nil {
			return err
		}
		plannerCfg = cfg

		if apiBaseURL != "" {
			plannerCfg.APIBaseURL = strings.TrimRight(apiBaseURL, "/")
		}
		if apiToken == "" {
			apiToken = os.Getenv("PLANNER_TOKEN")
		}

		switch outputFormat {
		case outputTable, outputJSON, outputYAML:
		default:
			return fmt.Errorf("unknown output format %q (table, json, yaml)", outputFormat)
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		return nil
	},
}

// SetVersion задает версию, выводимую командой version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiBaseURL, "api", "", "event service base url (overrides PLANNER_API_BASE_URL)")
	flags.StringVar(&apiToken, "token", "", "bearer token for the event service (default $PLANNER_TOKEN)")
	flags.StringVar(&snapshotPath, "db", "planner-snapshots.db", "sqlite file for local progress snapshots")
	flags.StringVarP(&outputFormat, "output", "o", outputTable, "output format: table, json or yaml")
	flags.Float64Var(&eventBudget, "event-budget", 0, "event budget used when the cart reports none")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log requests and fallbacks")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the plannerctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
