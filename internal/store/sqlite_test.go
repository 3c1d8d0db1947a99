package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dhan-signal-trader/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleIntent(ts time.Time, strike int) models.TradeIntent {
	return models.TradeIntent{
		Timestamp:    ts,
		Underlying:   models.Nifty,
		Strike:       strike,
		OptionType:   models.Call,
		Action:       models.ActionBuy,
		EntryTrigger: 120,
		StopLoss:     80,
		Target:       650,
		ExpiryDate:   time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC),
		RawText:      "BUY NIFTY 24000 CE ABOVE 120 SL 80",
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.December, 2, 10, 30, 0, 0, time.UTC)

	if err := s.LogSignal(ctx, sampleIntent(base, 24000)); err != nil {
		t.Fatalf("LogSignal() error = %v", err)
	}

	got, err := s.SignalsSince(ctx, base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("SignalsSince() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}

	sig := got[0]
	if sig.Underlying != models.Nifty || sig.Strike != 24000 ||
		sig.OptionType != models.Call || sig.Action != models.ActionBuy {
		t.Errorf("key fields = %s/%d/%s/%s, want NIFTY/24000/CE/BUY",
			sig.Underlying, sig.Strike, sig.OptionType, sig.Action)
	}
	if sig.EntryTrigger != 120 || sig.StopLoss != 80 || sig.Target != 650 {
		t.Errorf("prices = %v/%v/%v, want 120/80/650",
			sig.EntryTrigger, sig.StopLoss, sig.Target)
	}
	if !sig.Timestamp.Equal(base) {
		t.Errorf("Timestamp = %v, want %v", sig.Timestamp, base)
	}
	if got := sig.ExpiryDate.Format("2006-01-02"); got != "2024-12-05" {
		t.Errorf("ExpiryDate = %s, want 2024-12-05", got)
	}
	if sig.RawText == "" {
		t.Error("RawText was not persisted")
	}
}

func TestSQLiteStore_SignalsSinceFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.December, 2, 10, 0, 0, 0, time.UTC)

	for i, strike := range []int{24000, 24100, 24200} {
		intent := sampleIntent(base.Add(time.Duration(i)*time.Hour), strike)
		if err := s.LogSignal(ctx, intent); err != nil {
			t.Fatalf("LogSignal() error = %v", err)
		}
	}

	got, err := s.SignalsSince(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("SignalsSince() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d signals, want 2", len(got))
	}
	if got[0].Strike != 24100 || got[1].Strike != 24200 {
		t.Errorf("strikes = %d, %d; want ascending 24100, 24200", got[0].Strike, got[1].Strike)
	}
}

func TestSQLiteStore_RecentSignalsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.December, 2, 10, 0, 0, 0, time.UTC)

	for i, strike := range []int{24000, 24100, 24200} {
		intent := sampleIntent(base.Add(time.Duration(i)*time.Hour), strike)
		if err := s.LogSignal(ctx, intent); err != nil {
			t.Fatalf("LogSignal() error = %v", err)
		}
	}

	got, err := s.RecentSignals(ctx, 2)
	if err != nil {
		t.Fatalf("RecentSignals() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d signals, want 2", len(got))
	}
	if got[0].Strike != 24200 || got[1].Strike != 24100 {
		t.Errorf("strikes = %d, %d; want newest first 24200, 24100", got[0].Strike, got[1].Strike)
	}
}

func TestSQLiteStore_OptionalPricesSurviveAsZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	intent := sampleIntent(time.Date(2024, time.December, 2, 10, 0, 0, 0, time.UTC), 24000)
	intent.StopLoss = 0
	intent.Target = 0
	if err := s.LogSignal(ctx, intent); err != nil {
		t.Fatalf("LogSignal() error = %v", err)
	}

	got, err := s.RecentSignals(ctx, 1)
	if err != nil {
		t.Fatalf("RecentSignals() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}
	if got[0].StopLoss != 0 || got[0].Target != 0 {
		t.Errorf("optional prices = %v/%v, want 0/0", got[0].StopLoss, got[0].Target)
	}
	if got[0].HasStopLoss() {
		t.Error("HasStopLoss() = true for a signal stored without one")
	}
}
