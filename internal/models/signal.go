package models

import (
	"fmt"
	"strings"
	"time"
)

// TradeIntent is a validated trading signal extracted from one or more
// chat messages. It is immutable once built: every stage after the
// extractor only reads it.
type TradeIntent struct {
	Timestamp    time.Time
	Underlying   Underlying
	Strike       int
	OptionType   OptionType
	Action       Action
	EntryTrigger float64
	StopLoss     float64 // 0 means not supplied; planner derives a default
	Target       float64 // 0 means not supplied; planner derives a default
	IsPositional bool
	ExpiryDate   time.Time
	RawText      string
}

// TradingSymbol builds the canonical symbol, e.g. "NIFTY 03 DEC 24000 CE".
func (t TradeIntent) TradingSymbol() string {
	return fmt.Sprintf("%s %02d %s %d %s",
		t.Underlying,
		t.ExpiryDate.Day(),
		strings.ToUpper(t.ExpiryDate.Format("Jan")),
		t.Strike,
		t.OptionType,
	)
}

// HasStopLoss reports whether the signal carried an explicit stop loss.
func (t TradeIntent) HasStopLoss() bool {
	return t.StopLoss > 0
}

// Validate checks the structural invariants of a built intent.
func (t TradeIntent) Validate() error {
	if !t.Underlying.IsSupported() {
		return fmt.Errorf("unsupported underlying %q", t.Underlying)
	}
	if t.Strike <= 0 {
		return fmt.Errorf("strike must be positive, got %d", t.Strike)
	}
	if t.EntryTrigger <= 0 {
		return fmt.Errorf("entry trigger must be positive, got %v", t.EntryTrigger)
	}
	if t.StopLoss > 0 && t.StopLoss == t.EntryTrigger {
		return fmt.Errorf("stop loss equals entry trigger %v", t.EntryTrigger)
	}
	if !t.ExpiryDate.IsZero() {
		expiry := t.ExpiryDate
		msgDay := time.Date(t.Timestamp.Year(), t.Timestamp.Month(), t.Timestamp.Day(), 0, 0, 0, 0, t.Timestamp.Location())
		if expiry.Before(msgDay) {
			return fmt.Errorf("expiry %s is before message date %s",
				expiry.Format("2006-01-02"), msgDay.Format("2006-01-02"))
		}
	}
	return nil
}

// DedupKey identifies structurally identical signals for deduplication.
type DedupKey struct {
	Underlying Underlying
	Strike     int
	OptionType OptionType
	Action     Action
}

// Key returns the dedup key for the intent.
func (t TradeIntent) Key() DedupKey {
	return DedupKey{
		Underlying: t.Underlying,
		Strike:     t.Strike,
		OptionType: t.OptionType,
		Action:     t.Action,
	}
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%s:%d:%s:%s", k.Underlying, k.Strike, k.OptionType, k.Action)
}
