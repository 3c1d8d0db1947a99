// Package pipeline wires the signal extractor, deduplicator and
// execution planner into the batch processing flow.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dhan-signal-trader/internal/broker"
	"dhan-signal-trader/internal/dedup"
	trderrors "dhan-signal-trader/internal/errors"
	"dhan-signal-trader/internal/logging"
	"dhan-signal-trader/internal/models"
	"dhan-signal-trader/internal/parser"
	"dhan-signal-trader/internal/planner"
	"dhan-signal-trader/internal/store"
)

// Result is the terminal record for one signal candidate in a batch.
type Result struct {
	Raw     string
	Intent  *models.TradeIntent
	Outcome models.Outcome
	Plan    *models.ExecutionPlan
	OrderID string
	Err     error
}

// Pipeline processes message batches end to end. Batches are handled
// one at a time; within a batch, intents keep message order so dedup
// outcomes are reproducible for identical input.
type Pipeline struct {
	extractor *parser.Extractor
	dedup     *dedup.Deduplicator
	planner   *planner.Planner
	broker    broker.Broker
	signals   store.SignalStore // nil disables persistence
	logger    zerolog.Logger

	mu sync.Mutex
}

// New creates a pipeline. The signal store may be nil, which disables
// the audit log and restart rehydration.
func New(
	extractor *parser.Extractor,
	deduplicator *dedup.Deduplicator,
	pl *planner.Planner,
	b broker.Broker,
	signals store.SignalStore,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		dedup:     deduplicator,
		planner:   pl,
		broker:    b,
		signals:   signals,
		logger:    logger,
	}
}

// Rehydrate reloads dedup state from the signal log, replaying entries
// still inside the dedup window relative to now.
func (p *Pipeline) Rehydrate(ctx context.Context, window time.Duration, now time.Time) error {
	if p.signals == nil {
		return nil
	}

	signals, err := p.signals.SignalsSince(ctx, now.Add(-window))
	if err != nil {
		return trderrors.Wrap(err, "dedup rehydration failed")
	}

	for _, sig := range signals {
		p.dedup.Seed(sig.Key(), sig.Timestamp)
	}
	p.logger.Info().Int("records", len(signals)).Msg("Dedup state rehydrated")
	return nil
}

// ProcessBatch runs one ordered message batch through the pipeline and
// returns a result per candidate. Failures are isolated per candidate;
// the batch always runs to completion.
func (p *Pipeline) ProcessBatch(ctx context.Context, batch []parser.Message) []Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	intents, rejections := p.extractor.Extract(batch)

	results := make([]Result, 0, len(intents)+len(rejections))
	for _, rej := range rejections {
		results = append(results, Result{Raw: rej.Raw, Outcome: rej.Outcome, Err: rej.Err})
	}

	for _, intent := range intents {
		results = append(results, p.processIntent(ctx, intent))
	}
	return results
}

func (p *Pipeline) processIntent(ctx context.Context, intent models.TradeIntent) Result {
	in := intent
	result := Result{Raw: intent.RawText, Intent: &in}
	symbol := intent.TradingSymbol()
	logger := logging.WithSymbol(p.logger, symbol)

	if !p.dedup.Admit(intent) {
		result.Outcome = models.OutcomeRejectedDuplicate
		result.Err = trderrors.ErrDuplicateSignal
		return result
	}

	// The log is the rehydration source, so every admitted intent is
	// recorded here, before planning can still skip or fail it. The
	// write is best effort; the intent keeps moving.
	if p.signals != nil {
		if err := p.signals.LogSignal(ctx, intent); err != nil {
			logger.Error().Err(err).Msg("Failed to persist signal")
		}
	}

	instrument, err := p.broker.Resolve(ctx, symbol)
	if err != nil {
		logger.Error().Err(err).Msg("Symbol resolution failed")
		result.Outcome = models.OutcomeFailedMarketData
		result.Err = err
		return result
	}

	ltp, err := p.broker.LTP(ctx, instrument)
	if err != nil {
		logger.Error().Err(err).Msg("LTP fetch failed")
		result.Outcome = models.OutcomeFailedMarketData
		result.Err = err
		return result
	}

	verdict := p.planner.Plan(intent, ltp, instrument)
	result.Outcome = verdict.Outcome()

	if verdict.Kind != planner.VerdictPlanned {
		logger.Info().
			Str("reason", verdict.Reason).
			Float64("ltp", ltp).
			Float64("trigger", intent.EntryTrigger).
			Msg("Intent not planned")
		return result
	}

	result.Plan = verdict.Plan
	logging.LogPlan(logger, *verdict.Plan)

	orderID, err := p.broker.Submit(ctx, *verdict.Plan)
	if err != nil {
		logger.Error().Err(err).Msg("Order submission failed")
		result.Err = err
		return result
	}

	result.OrderID = orderID
	logger.Info().
		Str("order_id", orderID).
		Str("order_type", string(verdict.Plan.OrderType)).
		Int("quantity", verdict.Plan.Quantity).
		Msg("Plan handed to submission")
	return result
}
