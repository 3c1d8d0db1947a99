// Package batcher groups incoming chat messages into batches separated
// by arrival silence, so multi-part signals reach the parser together.
package batcher

import (
	"sync"
	"time"

	"dhan-signal-trader/internal/parser"
)

// Batcher collects messages and flushes them as one batch once no new
// message has arrived for the quiet period.
type Batcher struct {
	quiet   time.Duration
	deliver func([]parser.Message)

	mu       sync.Mutex
	msgs     []parser.Message
	timer    *time.Timer
	done     bool
	inflight sync.WaitGroup
}

// New creates a batcher that calls deliver with each completed batch.
// Delivery happens on the timer goroutine; deliver must be safe to call
// from there.
func New(quiet time.Duration, deliver func([]parser.Message)) *Batcher {
	return &Batcher{quiet: quiet, deliver: deliver}
}

// Add appends a message and restarts the quiet timer.
func (b *Batcher) Add(text string, ts time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return
	}

	b.msgs = append(b.msgs, parser.Message{Text: text, Timestamp: ts})

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.quiet, b.Flush)
}

// Flush delivers the pending batch immediately. The inflight count is
// raised under the lock so Close always observes a claimed batch.
func (b *Batcher) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	batch := b.msgs
	b.msgs = nil
	if len(batch) > 0 {
		b.inflight.Add(1)
	}
	b.mu.Unlock()

	if len(batch) > 0 {
		defer b.inflight.Done()
		b.deliver(batch)
	}
}

// Close flushes any pending batch, waits for in-flight deliveries and
// stops accepting messages.
func (b *Batcher) Close() {
	b.mu.Lock()
	b.done = true
	b.mu.Unlock()
	b.Flush()
	b.inflight.Wait()
}
