// Package notify announces pipeline outcomes outside the log stream.
package notify

import (
	"context"

	"dhan-signal-trader/internal/models"
)

// Notifier receives trade lifecycle events. Implementations must be
// safe for concurrent use.
type Notifier interface {
	OrderPlaced(ctx context.Context, plan models.ExecutionPlan, orderID string) error
	SignalDropped(ctx context.Context, raw string, outcome models.Outcome) error
	Error(ctx context.Context, err error, scope string) error
}

// Nop is a Notifier that discards everything.
type Nop struct{}

func (Nop) OrderPlaced(context.Context, models.ExecutionPlan, string) error { return nil }
func (Nop) SignalDropped(context.Context, string, models.Outcome) error     { return nil }
func (Nop) Error(context.Context, error, string) error                      { return nil }
