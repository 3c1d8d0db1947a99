package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"dhan-signal-trader/internal/models"
)

func TestTerminal_OrderPlaced(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminal(&buf)

	plan := models.ExecutionPlan{
		Symbol:        "NIFTY 05 DEC 24000 CE",
		Action:        models.ActionBuy,
		OrderType:     models.OrderTypeLimit,
		LimitPrice:    120,
		Quantity:      75,
		StopLossPrice: 80,
		TargetPrice:   1200,
	}
	if err := n.OrderPlaced(context.Background(), plan, "PAPER-0001"); err != nil {
		t.Fatalf("OrderPlaced() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"NIFTY 05 DEC 24000 CE", "120.00", "80.00", "PAPER-0001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestTerminal_SignalDroppedTruncatesOnRuneBoundary(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminal(&buf)

	raw := strings.Repeat("₹", 60) + " BUY NIFTY"
	if err := n.SignalDropped(context.Background(), raw, models.OutcomeRejectedNoise); err != nil {
		t.Fatalf("SignalDropped() error = %v", err)
	}

	out := buf.String()
	if !utf8.ValidString(out) {
		t.Fatalf("output is not valid UTF-8: %q", out)
	}
	if !strings.Contains(out, string(models.OutcomeRejectedNoise)) {
		t.Errorf("output %q missing outcome", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("long message was not truncated: %q", out)
	}
	if strings.Contains(out, string(utf8.RuneError)) {
		t.Errorf("truncation split a multi-byte character: %q", out)
	}
}
