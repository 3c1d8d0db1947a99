package dedup

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dhan-signal-trader/internal/models"
)

func testIntent(ts time.Time) models.TradeIntent {
	return models.TradeIntent{
		Timestamp:    ts,
		Underlying:   models.Nifty,
		Strike:       24000,
		OptionType:   models.Call,
		Action:       models.ActionBuy,
		EntryTrigger: 120,
	}
}

func TestAdmit_FirstSignalPasses(t *testing.T) {
	d := New(60*time.Minute, zerolog.Nop())

	if !d.Admit(testIntent(time.Now())) {
		t.Error("first signal for a key must be admitted")
	}
}

func TestAdmit_DuplicateInsideWindowRejected(t *testing.T) {
	d := New(60*time.Minute, zerolog.Nop())
	base := time.Now()

	d.Admit(testIntent(base))

	if d.Admit(testIntent(base.Add(30 * time.Minute))) {
		t.Error("duplicate inside the window must be rejected")
	}
	if d.Admit(testIntent(base.Add(60 * time.Minute))) {
		t.Error("duplicate exactly at the window edge must be rejected")
	}
}

func TestAdmit_RepeatAfterWindowPasses(t *testing.T) {
	d := New(60*time.Minute, zerolog.Nop())
	base := time.Now()

	d.Admit(testIntent(base))

	if !d.Admit(testIntent(base.Add(61 * time.Minute))) {
		t.Error("signal past the window must be admitted as fresh")
	}
}

func TestAdmit_DifferentKeyPasses(t *testing.T) {
	d := New(60*time.Minute, zerolog.Nop())
	base := time.Now()

	d.Admit(testIntent(base))

	other := testIntent(base.Add(time.Minute))
	other.Strike = 24100
	if !d.Admit(other) {
		t.Error("different strike is a different key and must be admitted")
	}

	sell := testIntent(base.Add(time.Minute))
	sell.Action = models.ActionSell
	if !d.Admit(sell) {
		t.Error("opposite action is a different key and must be admitted")
	}
}

func TestAdmit_RejectionDoesNotExtendWindow(t *testing.T) {
	d := New(60*time.Minute, zerolog.Nop())
	base := time.Now()

	d.Admit(testIntent(base))
	d.Admit(testIntent(base.Add(50 * time.Minute))) // rejected, must not refresh

	if !d.Admit(testIntent(base.Add(70 * time.Minute))) {
		t.Error("window must be measured from the last admission, not the last attempt")
	}
}

func TestSeed_RehydratesSuppression(t *testing.T) {
	d := New(60*time.Minute, zerolog.Nop())
	base := time.Now()

	intent := testIntent(base)
	d.Seed(intent.Key(), base.Add(-30*time.Minute))

	if d.Admit(testIntent(base)) {
		t.Error("seeded admission inside the window must suppress the repeat")
	}
}

func TestSeed_NeverOverwritesNewer(t *testing.T) {
	d := New(60*time.Minute, zerolog.Nop())
	base := time.Now()

	intent := testIntent(base)
	d.Admit(intent)
	d.Seed(intent.Key(), base.Add(-90*time.Minute))

	if d.Admit(testIntent(base.Add(30 * time.Minute))) {
		t.Error("stale seed must not replace a newer admission")
	}
}

func TestPrune_DropsExpiredRecords(t *testing.T) {
	d := New(60*time.Minute, zerolog.Nop())
	base := time.Now()

	d.Admit(testIntent(base))
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", d.Len())
	}

	late := testIntent(base.Add(2 * time.Hour))
	late.Strike = 25000
	d.Admit(late)

	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after the old record expired", d.Len())
	}
}
