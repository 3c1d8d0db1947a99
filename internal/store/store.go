// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"dhan-signal-trader/internal/models"
)

// SignalStore is the persistent log of admitted signals. It is the
// audit trail, and on restart the source the deduplicator rehydrates
// its window from.
type SignalStore interface {
	LogSignal(ctx context.Context, intent models.TradeIntent) error
	SignalsSince(ctx context.Context, since time.Time) ([]models.TradeIntent, error)
	RecentSignals(ctx context.Context, limit int) ([]models.TradeIntent, error)
	Close() error
}
