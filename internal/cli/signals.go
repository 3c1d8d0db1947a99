package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dhan-signal-trader/internal/store"
	"dhan-signal-trader/pkg/utils"
)

func newSignalsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Show recently admitted signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSignals(app, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of signals to show")
	return cmd
}

func showSignals(app *App, limit int) error {
	signalStore, err := store.NewSQLiteStore(app.Config.Store.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open signal store: %w", err)
	}
	defer signalStore.Close()

	signals, err := signalStore.RecentSignals(context.Background(), limit)
	if err != nil {
		return err
	}

	if len(signals) == 0 {
		fmt.Println("No signals logged yet.")
		return nil
	}

	fmt.Printf("%-19s | %-32s | %-4s | %-8s | %-6s\n",
		"TIME", "SYMBOL", "SIDE", "TRIGGER", "SL")
	fmt.Println(strings.Repeat("-", 80))
	for _, sig := range signals {
		fmt.Printf("%-19s | %-32s | %-4s | %-8s | %-6s\n",
			sig.Timestamp.In(utils.IndiaLocation).Format("2006-01-02 15:04:05"),
			sig.TradingSymbol(),
			sig.Action,
			utils.FormatPrice(sig.EntryTrigger),
			utils.FormatPrice(sig.StopLoss))
	}
	return nil
}
