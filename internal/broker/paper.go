package broker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	trderrors "dhan-signal-trader/internal/errors"
	"dhan-signal-trader/internal/models"
)

// Standard index option lot sizes, used when no scrip master is loaded.
var paperLotSizes = map[string]int{
	"NIFTY":     75,
	"BANKNIFTY": 35,
	"SENSEX":    20,
}

// PaperBroker is an in-memory broker for dry runs and tests. Prices are
// set explicitly; submitted plans are recorded, never sent anywhere.
type PaperBroker struct {
	logger zerolog.Logger

	mu     sync.Mutex
	prices map[string]float64 // security id -> ltp
	orders []models.ExecutionPlan
	nextID int
}

// NewPaperBroker creates a paper broker.
func NewPaperBroker(logger zerolog.Logger) *PaperBroker {
	return &PaperBroker{
		logger: logger,
		prices: make(map[string]float64),
		nextID: 1,
	}
}

// SetPrice sets the LTP for a symbol's paper instrument.
func (b *PaperBroker) SetPrice(symbol string, ltp float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[paperSecurityID(symbol)] = ltp
}

// Orders returns all submitted plans.
func (b *PaperBroker) Orders() []models.ExecutionPlan {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.ExecutionPlan, len(b.orders))
	copy(out, b.orders)
	return out
}

// Resolve maps the symbol onto a synthetic instrument with the standard
// lot size for its underlying.
func (b *PaperBroker) Resolve(_ context.Context, symbol string) (models.Instrument, error) {
	underlying := strings.Fields(strings.ToUpper(symbol))[0]
	lot, ok := paperLotSizes[underlying]
	if !ok {
		return models.Instrument{}, trderrors.Wrapf(trderrors.ErrSymbolNotFound, "no paper contract for %s", symbol)
	}

	exchange := models.NSEFNO
	if underlying == "SENSEX" {
		exchange = models.BSEFNO
	}

	return models.Instrument{
		SecurityID: paperSecurityID(symbol),
		Exchange:   exchange,
		LotSize:    lot,
		TickSize:   0.05,
	}, nil
}

// LTP returns the configured price for the instrument.
func (b *PaperBroker) LTP(_ context.Context, instrument models.Instrument) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ltp, ok := b.prices[instrument.SecurityID]
	if !ok || ltp <= 0 {
		return 0, trderrors.Wrapf(trderrors.ErrMarketDataUnavailable, "no paper price for %s", instrument.SecurityID)
	}
	return ltp, nil
}

// Submit records the plan and returns a synthetic order id.
func (b *PaperBroker) Submit(_ context.Context, plan models.ExecutionPlan) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.orders = append(b.orders, plan)
	id := fmt.Sprintf("PAPER-%04d", b.nextID)
	b.nextID++

	b.logger.Info().
		Str("order_id", id).
		Str("symbol", plan.Symbol).
		Str("order_type", string(plan.OrderType)).
		Int("quantity", plan.Quantity).
		Msg("Paper order recorded")
	return id, nil
}

func paperSecurityID(symbol string) string {
	return "PAPER:" + strings.Join(strings.Fields(strings.ToUpper(symbol)), ":")
}
