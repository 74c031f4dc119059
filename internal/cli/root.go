package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"otc-trader/internal/config"
	"otc-trader/internal/journal"
	"otc-trader/internal/logging"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Journal   journal.Journal
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, configDir string, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
	}

	j, err := journal.NewSQLiteJournal(cfg.Journal.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to open journal, history commands unavailable")
	} else {
		app.Journal = j
		logger.Debug().Str("path", cfg.Journal.Path).Msg("journal opened")
	}

	rootCmd := &cobra.Command{
		Use:   "otc-trader",
		Short: "OTC Trader - session risk and signal engine for binary options",
		Long: `OTC Trader runs bounded trading sessions against OTC currency pairs.

Each session evaluates RSI and moving-average signals on every tick, sizes
stakes with an optional martingale ladder, and halts automatically when a
profit target, a martingale step limit, or the capital guardrail is hit.

Use 'otc-trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/otc-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newSettingsCmd(app))
	rootCmd.AddCommand(newPairsCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("OTC Trader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}
