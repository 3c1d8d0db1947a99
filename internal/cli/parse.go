package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dhan-signal-trader/internal/parser"
	"dhan-signal-trader/pkg/utils"
)

func newParseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [message ...]",
		Short: "Parse messages without trading (dry run)",
		Long: "Runs the signal extractor over the given messages (or stdin,\n" +
			"one message per line) and prints what would be extracted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseMessages(app, args)
		},
	}
	return cmd
}

func parseMessages(app *App, args []string) error {
	now := time.Now()

	var batch []parser.Message
	if len(args) > 0 {
		for _, arg := range args {
			batch = append(batch, parser.Message{Text: arg, Timestamp: now})
		}
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			batch = append(batch, parser.Message{Text: scanner.Text(), Timestamp: now})
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}

	extractor := parser.NewExtractor(app.Logger, app.Config.Batcher.StaleGap())
	intents, rejections := extractor.Extract(batch)

	fmt.Printf("%-32s | %-4s | %-8s | %-6s | %-6s | %s\n",
		"SYMBOL", "SIDE", "TRIGGER", "SL", "TARGET", "STYLE")
	fmt.Println(strings.Repeat("-", 80))
	for _, intent := range intents {
		style := "intraday"
		if intent.IsPositional {
			style = "positional"
		}
		fmt.Printf("%-32s | %-4s | %-8s | %-6s | %-6s | %s\n",
			intent.TradingSymbol(),
			intent.Action,
			utils.FormatPrice(intent.EntryTrigger),
			utils.FormatPrice(intent.StopLoss),
			utils.FormatPrice(intent.Target),
			style)
	}

	if len(rejections) > 0 {
		fmt.Printf("\n%d candidate(s) rejected:\n", len(rejections))
		for _, rej := range rejections {
			fmt.Printf("  %-26s %q\n", rej.Outcome, utils.Truncate(rej.Raw, 40))
		}
	}
	return nil
}
