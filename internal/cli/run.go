package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dhan-signal-trader/internal/batcher"
	"dhan-signal-trader/internal/broker"
	"dhan-signal-trader/internal/dedup"
	"dhan-signal-trader/internal/models"
	"dhan-signal-trader/internal/notify"
	"dhan-signal-trader/internal/parser"
	"dhan-signal-trader/internal/pipeline"
	"dhan-signal-trader/internal/planner"
	"dhan-signal-trader/internal/store"
	"dhan-signal-trader/pkg/utils"
)

// retrySubmitter retries order submission with backoff. Retry policy
// lives here, outside the pipeline core.
type retrySubmitter struct {
	broker.Broker
	cfg utils.RetryConfig
}

func (r retrySubmitter) Submit(ctx context.Context, plan models.ExecutionPlan) (string, error) {
	var orderID string
	err := utils.Retry(ctx, r.cfg, func() error {
		var serr error
		orderID, serr = r.Broker.Submit(ctx, plan)
		return serr
	})
	return orderID, err
}

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Read messages from stdin and trade admitted signals",
		Long: "Reads one chat message per line from stdin, batches them by\n" +
			"arrival silence and runs each batch through the signal pipeline.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(app)
		},
	}
	return cmd
}

func runPipeline(app *App) error {
	ctx := context.Background()
	cfg := app.Config
	logger := app.Logger

	signalStore, err := store.NewSQLiteStore(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open signal store: %w", err)
	}
	defer signalStore.Close()

	var b broker.Broker
	if cfg.Broker.Paper {
		logger.Info().Msg("Paper trading mode, orders stay local")
		b = broker.NewPaperBroker(logger)
	} else {
		dhan := broker.NewDhanClient(cfg.Broker, logger)
		if err := dhan.Load(ctx); err != nil {
			return err
		}
		b = retrySubmitter{Broker: dhan, cfg: utils.DefaultRetryConfig()}
	}

	extractor := parser.NewExtractor(logger, cfg.Batcher.StaleGap())
	deduplicator := dedup.New(cfg.Dedupe.Window(), logger)
	pl := planner.New(cfg.Risk, cfg.Planner)
	notifier := notify.NewTerminal(os.Stdout)

	pipe := pipeline.New(extractor, deduplicator, pl, b, signalStore, logger)
	if err := pipe.Rehydrate(ctx, cfg.Dedupe.Window(), time.Now()); err != nil {
		logger.Warn().Err(err).Msg("Starting with empty dedup state")
	}

	logger.Info().
		Str("market", string(utils.GetMarketStatus(time.Now()))).
		Float64("risk_intraday", cfg.Risk.Intraday).
		Float64("risk_positional", cfg.Risk.Positional).
		Msg("Pipeline running, reading messages from stdin")

	deliver := func(batch []parser.Message) {
		for _, res := range pipe.ProcessBatch(ctx, batch) {
			announce(ctx, notifier, res)
		}
	}

	batch := batcher.New(cfg.Batcher.QuietPeriod(), deliver)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		batch.Add(scanner.Text(), time.Now())
	}

	// Close blocks until any timer-driven delivery has finished.
	batch.Close()
	return scanner.Err()
}

func announce(ctx context.Context, notifier notify.Notifier, res pipeline.Result) {
	switch {
	case res.OrderID != "" && res.Plan != nil:
		_ = notifier.OrderPlaced(ctx, *res.Plan, res.OrderID)
	case res.Outcome == models.OutcomeAdmitted && res.Err != nil:
		_ = notifier.Error(ctx, res.Err, "order submission")
	default:
		_ = notifier.SignalDropped(ctx, res.Raw, res.Outcome)
	}
}
