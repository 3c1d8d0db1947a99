// Package cli provides the command-line interface for the signal trader.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dhan-signal-trader/internal/config"
	"dhan-signal-trader/internal/logging"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies shared by the commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{}

	var (
		configDir string
		debug     bool
		paper     bool
	)

	rootCmd := &cobra.Command{
		Use:     "trader",
		Short:   "Turn chat trade alerts into risk-sized option orders",
		Long:    "trader parses chat-style option signals, deduplicates them and\nconverts admitted signals into sized super orders.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if debug {
				cfg.Logging.Level = "debug"
			}
			if paper {
				cfg.Broker.Paper = true
			}
			app.Config = cfg
			app.Logger = logging.NewLogger(cfg.Logging)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.config/dhan-signal-trader)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&paper, "paper", false, "paper trading, no orders reach the broker")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newParseCmd(app))
	rootCmd.AddCommand(newSignalsCmd(app))

	return rootCmd
}
