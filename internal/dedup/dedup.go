// Package dedup suppresses trade intents that duplicate a recently
// admitted one.
package dedup

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dhan-signal-trader/internal/models"
)

// Deduplicator tracks the last admitted timestamp per dedup key. The
// check and the record write happen under one lock so two concurrent
// near-duplicates can never both be admitted.
type Deduplicator struct {
	window time.Duration
	logger zerolog.Logger

	mu   sync.Mutex
	last map[models.DedupKey]time.Time
}

// New creates a deduplicator with the given sliding window.
func New(window time.Duration, logger zerolog.Logger) *Deduplicator {
	return &Deduplicator{
		window: window,
		logger: logger,
		last:   make(map[models.DedupKey]time.Time),
	}
}

// Admit decides whether the intent is a fresh signal. A true result
// also records the intent's timestamp as the key's new admission time.
func (d *Deduplicator) Admit(intent models.TradeIntent) bool {
	key := intent.Key()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.pruneLocked(intent.Timestamp)

	if prev, ok := d.last[key]; ok {
		if intent.Timestamp.Sub(prev) <= d.window {
			d.logger.Info().
				Str("key", key.String()).
				Time("last_admitted", prev).
				Msg("Duplicate signal rejected")
			return false
		}
	}

	d.last[key] = intent.Timestamp
	return true
}

// Seed records a historical admission, used to rehydrate state from the
// signal log after a restart. Older entries never overwrite newer ones.
func (d *Deduplicator) Seed(key models.DedupKey, admittedAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.last[key]; ok && prev.After(admittedAt) {
		return
	}
	d.last[key] = admittedAt
}

// Len returns the number of live dedup records.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.last)
}

// pruneLocked drops records that can no longer suppress anything at the
// given reference time. Called with the lock held; there is no
// background sweep.
func (d *Deduplicator) pruneLocked(now time.Time) {
	for key, ts := range d.last {
		if now.Sub(ts) > d.window {
			delete(d.last, key)
		}
	}
}
