package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"dhan-signal-trader/internal/models"
	"dhan-signal-trader/pkg/utils"
)

// Terminal writes human-readable notifications to a writer, normally
// stdout.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal creates a terminal notifier.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// OrderPlaced announces a submitted plan.
func (t *Terminal) OrderPlaced(_ context.Context, plan models.ExecutionPlan, orderID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	price := "MKT"
	if plan.OrderType == models.OrderTypeLimit {
		price = utils.FormatPrice(plan.LimitPrice)
	}
	_, err := fmt.Fprintf(t.out, "✅ %s %s x%s @ %s | SL %s | TGT %s [%s]\n",
		plan.Action, plan.Symbol, utils.FormatQuantity(plan.Quantity), price,
		utils.FormatPrice(plan.StopLossPrice), utils.FormatPrice(plan.TargetPrice), orderID)
	return err
}

// SignalDropped announces a terminal rejection.
func (t *Terminal) SignalDropped(_ context.Context, raw string, outcome models.Outcome) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintf(t.out, "⏭  %s: %q\n", outcome, utils.Truncate(raw, 48))
	return err
}

// Error announces a pipeline error.
func (t *Terminal) Error(_ context.Context, err error, scope string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, werr := fmt.Fprintf(t.out, "❌ %s: %v\n", scope, err)
	return werr
}
