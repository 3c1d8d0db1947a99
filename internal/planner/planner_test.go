package planner

import (
	"math"
	"testing"
	"time"

	"dhan-signal-trader/internal/config"
	"dhan-signal-trader/internal/models"
)

func testPlanner() *Planner {
	return New(
		config.RiskConfig{Intraday: 3500, Positional: 5000},
		config.PlannerConfig{
			SkipThresholdPct: 0.03,
			TargetMultiplier: 10,
			DefaultSLPct:     0.10,
			TrailingPct:      0.05,
		},
	)
}

func niftyInstrument() models.Instrument {
	return models.Instrument{
		SecurityID: "49081",
		Exchange:   models.NSEFNO,
		LotSize:    75,
		TickSize:   0.05,
	}
}

func buyIntent(trigger, stopLoss float64) models.TradeIntent {
	return models.TradeIntent{
		Timestamp:    time.Date(2024, time.December, 2, 10, 30, 0, 0, time.UTC),
		Underlying:   models.Nifty,
		Strike:       24000,
		OptionType:   models.Call,
		Action:       models.ActionBuy,
		EntryTrigger: trigger,
		StopLoss:     stopLoss,
	}
}

func TestPlan_MarketOrderAtOrAboveTrigger(t *testing.T) {
	p := testPlanner()

	verdict := p.Plan(buyIntent(120, 80), 121, niftyInstrument())
	if verdict.Kind != VerdictPlanned {
		t.Fatalf("Kind = %v, want planned (reason %s)", verdict.Kind, verdict.Reason)
	}

	plan := verdict.Plan
	if plan.OrderType != models.OrderTypeMarket {
		t.Errorf("OrderType = %s, want MARKET", plan.OrderType)
	}
	// risk 3500 over a 40-point gap is 87.5 units, one 75-lot.
	if plan.Quantity != 75 {
		t.Errorf("Quantity = %d, want 75", plan.Quantity)
	}
	if plan.StopLossPrice != 80 {
		t.Errorf("StopLossPrice = %v, want 80", plan.StopLossPrice)
	}
	if plan.TargetPrice != 1200 {
		t.Errorf("TargetPrice = %v, want 1200", plan.TargetPrice)
	}
	if plan.TrailingJump != 6 {
		t.Errorf("TrailingJump = %v, want 6", plan.TrailingJump)
	}
	if plan.Product != models.ProductIntraday {
		t.Errorf("Product = %s, want INTRADAY", plan.Product)
	}
}

func TestPlan_LimitOrderBelowTrigger(t *testing.T) {
	p := testPlanner()

	verdict := p.Plan(buyIntent(120, 80), 110, niftyInstrument())
	if verdict.Kind != VerdictPlanned {
		t.Fatalf("Kind = %v, want planned", verdict.Kind)
	}
	if verdict.Plan.OrderType != models.OrderTypeLimit {
		t.Errorf("OrderType = %s, want LIMIT", verdict.Plan.OrderType)
	}
	if verdict.Plan.LimitPrice != 120 {
		t.Errorf("LimitPrice = %v, want the trigger 120", verdict.Plan.LimitPrice)
	}
}

func TestPlan_SkipsWhenPriceRanAway(t *testing.T) {
	p := testPlanner()

	// 3% over a 120 trigger is 123.6; anything above is a missed move.
	verdict := p.Plan(buyIntent(120, 80), 123.7, niftyInstrument())
	if verdict.Kind != VerdictSkipped {
		t.Fatalf("Kind = %v, want skipped", verdict.Kind)
	}
	if verdict.Reason != ReasonPriceMoved {
		t.Errorf("Reason = %s, want %s", verdict.Reason, ReasonPriceMoved)
	}
	if verdict.Outcome() != models.OutcomeSkippedPriceMoved {
		t.Errorf("Outcome = %s, want %s", verdict.Outcome(), models.OutcomeSkippedPriceMoved)
	}
}

func TestPlan_ExactlyAtThresholdStillPlans(t *testing.T) {
	p := testPlanner()

	verdict := p.Plan(buyIntent(100, 80), 103, niftyInstrument())
	if verdict.Kind != VerdictPlanned {
		t.Errorf("price exactly at the threshold must still plan, got %v", verdict.Kind)
	}
}

func TestPlan_FailsWithoutMarketData(t *testing.T) {
	p := testPlanner()

	verdict := p.Plan(buyIntent(120, 80), 0, niftyInstrument())
	if verdict.Kind != VerdictFailed || verdict.Reason != ReasonMissingMarketData {
		t.Errorf("verdict = %v/%s, want failed/%s", verdict.Kind, verdict.Reason, ReasonMissingMarketData)
	}

	noLot := niftyInstrument()
	noLot.LotSize = 0
	verdict = p.Plan(buyIntent(120, 80), 121, noLot)
	if verdict.Kind != VerdictFailed || verdict.Reason != ReasonMissingMarketData {
		t.Errorf("verdict = %v/%s, want failed/%s", verdict.Kind, verdict.Reason, ReasonMissingMarketData)
	}
	if verdict.Outcome() != models.OutcomeFailedMarketData {
		t.Errorf("Outcome = %s, want %s", verdict.Outcome(), models.OutcomeFailedMarketData)
	}
}

func TestPlan_FailsOnDegenerateRisk(t *testing.T) {
	p := New(
		config.RiskConfig{Intraday: 3500, Positional: 5000},
		config.PlannerConfig{SkipThresholdPct: 0.03, TargetMultiplier: 10, DefaultSLPct: 0, TrailingPct: 0.05},
	)

	// No explicit stop and a zero default percentage leaves no gap to
	// size against.
	verdict := p.Plan(buyIntent(120, 0), 121, niftyInstrument())
	if verdict.Kind != VerdictFailed || verdict.Reason != ReasonInvalidRisk {
		t.Errorf("verdict = %v/%s, want failed/%s", verdict.Kind, verdict.Reason, ReasonInvalidRisk)
	}
	if verdict.Outcome() != models.OutcomeFailedInvalidRisk {
		t.Errorf("Outcome = %s, want %s", verdict.Outcome(), models.OutcomeFailedInvalidRisk)
	}
}

func TestPlan_DefaultStopLoss(t *testing.T) {
	p := testPlanner()

	verdict := p.Plan(buyIntent(200, 0), 200, niftyInstrument())
	if verdict.Kind != VerdictPlanned {
		t.Fatalf("Kind = %v, want planned", verdict.Kind)
	}
	if verdict.Plan.StopLossPrice != 180 {
		t.Errorf("BUY default stop = %v, want 180 (10%% under trigger)", verdict.Plan.StopLossPrice)
	}

	sell := buyIntent(200, 0)
	sell.Action = models.ActionSell
	verdict = p.Plan(sell, 200, niftyInstrument())
	if verdict.Kind != VerdictPlanned {
		t.Fatalf("Kind = %v, want planned", verdict.Kind)
	}
	if math.Abs(verdict.Plan.StopLossPrice-220) > 1e-9 {
		t.Errorf("SELL default stop = %v, want 220 (10%% over trigger)", verdict.Plan.StopLossPrice)
	}
}

func TestPlan_ExplicitTargetWins(t *testing.T) {
	p := testPlanner()

	intent := buyIntent(120, 80)
	intent.Target = 180
	verdict := p.Plan(intent, 121, niftyInstrument())
	if verdict.Kind != VerdictPlanned {
		t.Fatalf("Kind = %v, want planned", verdict.Kind)
	}
	if verdict.Plan.TargetPrice != 180 {
		t.Errorf("TargetPrice = %v, want the signal's 180", verdict.Plan.TargetPrice)
	}
}

func TestPlan_PositionalUsesOwnBudgetAndProduct(t *testing.T) {
	p := testPlanner()

	intent := buyIntent(120, 80)
	intent.IsPositional = true
	verdict := p.Plan(intent, 121, niftyInstrument())
	if verdict.Kind != VerdictPlanned {
		t.Fatalf("Kind = %v, want planned", verdict.Kind)
	}
	// 5000 over a 40-point gap is 125 units, two 75-lots.
	if verdict.Plan.Quantity != 150 {
		t.Errorf("Quantity = %d, want 150", verdict.Plan.Quantity)
	}
	if verdict.Plan.Product != models.ProductMargin {
		t.Errorf("Product = %s, want MARGIN", verdict.Plan.Product)
	}
}

func TestPlan_MinimumOneLot(t *testing.T) {
	p := testPlanner()

	// A huge stop gap sizes well under one lot; the floor is one lot.
	verdict := p.Plan(buyIntent(800, 100), 800, niftyInstrument())
	if verdict.Kind != VerdictPlanned {
		t.Fatalf("Kind = %v, want planned", verdict.Kind)
	}
	if verdict.Plan.Quantity != 75 {
		t.Errorf("Quantity = %d, want one lot of 75", verdict.Plan.Quantity)
	}
}
