// Package broker provides the external collaborator interfaces of the
// pipeline and their Dhan implementations.
package broker

import (
	"context"

	"dhan-signal-trader/internal/models"
)

// SymbolResolver maps a canonical trading symbol to its contract.
type SymbolResolver interface {
	Resolve(ctx context.Context, symbol string) (models.Instrument, error)
}

// MarketData supplies the last traded price for a resolved instrument.
type MarketData interface {
	LTP(ctx context.Context, instrument models.Instrument) (float64, error)
}

// Submitter accepts a finished execution plan. Ownership of the plan
// transfers on the call; retry policy lives behind this interface, not
// in the pipeline.
type Submitter interface {
	Submit(ctx context.Context, plan models.ExecutionPlan) (orderID string, err error)
}

// Broker bundles the three collaborators the pipeline needs.
type Broker interface {
	SymbolResolver
	MarketData
	Submitter
}
