// Package planner converts admitted trade intents into risk-sized
// execution plans.
package planner

import (
	"math"

	"dhan-signal-trader/internal/config"
	"dhan-signal-trader/internal/models"
)

// VerdictKind classifies the planner's decision.
type VerdictKind int

const (
	VerdictPlanned VerdictKind = iota
	VerdictSkipped
	VerdictFailed
)

// Skip and fail reasons.
const (
	ReasonPriceMoved        = "PRICE_MOVED"
	ReasonMissingMarketData = "MISSING_MARKET_DATA"
	ReasonInvalidRisk       = "INVALID_RISK_CONFIGURATION"
)

// Verdict is the planner's decision for one intent: either a plan or a
// terminal skip/fail reason.
type Verdict struct {
	Kind   VerdictKind
	Reason string
	Plan   *models.ExecutionPlan
}

// Outcome maps the verdict onto the signal lifecycle outcome.
func (v Verdict) Outcome() models.Outcome {
	switch v.Kind {
	case VerdictPlanned:
		return models.OutcomeAdmitted
	case VerdictSkipped:
		return models.OutcomeSkippedPriceMoved
	default:
		if v.Reason == ReasonMissingMarketData {
			return models.OutcomeFailedMarketData
		}
		return models.OutcomeFailedInvalidRisk
	}
}

func skip(reason string) Verdict {
	return Verdict{Kind: VerdictSkipped, Reason: reason}
}

func fail(reason string) Verdict {
	return Verdict{Kind: VerdictFailed, Reason: reason}
}

// Planner sizes orders from risk configuration. It is stateless; Plan
// is a pure function of its inputs and safe to call from any goroutine.
type Planner struct {
	risk config.RiskConfig
	cfg  config.PlannerConfig
}

// New creates a planner.
func New(risk config.RiskConfig, cfg config.PlannerConfig) *Planner {
	return &Planner{risk: risk, cfg: cfg}
}

// Plan builds an execution plan for an admitted intent given the live
// price and the resolved instrument. Missing market data and degenerate
// risk inputs fail fast; no retries happen here.
func (p *Planner) Plan(intent models.TradeIntent, ltp float64, instrument models.Instrument) Verdict {
	if ltp <= 0 || instrument.LotSize <= 0 {
		return fail(ReasonMissingMarketData)
	}

	entry := intent.EntryTrigger

	// Entry decision. A price already beyond the chase threshold means
	// the move was missed; at or above trigger fills immediately; below
	// trigger waits at the trigger.
	var orderType models.OrderType
	var limitPrice float64
	switch {
	case ltp > entry*(1+p.cfg.SkipThresholdPct):
		return skip(ReasonPriceMoved)
	case ltp >= entry:
		orderType = models.OrderTypeMarket
	default:
		orderType = models.OrderTypeLimit
		limitPrice = entry
	}

	stopLoss := p.resolveStopLoss(intent)

	slGap := math.Abs(entry - stopLoss)
	if slGap == 0 {
		return fail(ReasonInvalidRisk)
	}

	riskAmount := p.risk.Amount(intent.IsPositional)
	rawUnits := riskAmount / slGap
	lots := int(math.Round(rawUnits / float64(instrument.LotSize)))
	if lots < 1 {
		lots = 1
	}
	quantity := lots * instrument.LotSize

	target := entry * p.cfg.TargetMultiplier
	if intent.Target > 0 {
		target = intent.Target
	}

	product := models.ProductIntraday
	if intent.IsPositional {
		product = models.ProductMargin
	}

	return Verdict{
		Kind: VerdictPlanned,
		Plan: &models.ExecutionPlan{
			Symbol:        intent.TradingSymbol(),
			SecurityID:    instrument.SecurityID,
			Exchange:      instrument.Exchange,
			Action:        intent.Action,
			OrderType:     orderType,
			LimitPrice:    limitPrice,
			Quantity:      quantity,
			TargetPrice:   target,
			StopLossPrice: stopLoss,
			TrailingJump:  entry * p.cfg.TrailingPct,
			Product:       product,
		},
	}
}

// resolveStopLoss uses the signal's stop loss when given, otherwise a
// percentage of the trigger. SELL intents mirror the default to the
// other side of entry so the gap stays protective.
func (p *Planner) resolveStopLoss(intent models.TradeIntent) float64 {
	if intent.HasStopLoss() {
		return intent.StopLoss
	}
	if intent.Action == models.ActionSell {
		return intent.EntryTrigger * (1 + p.cfg.DefaultSLPct)
	}
	return intent.EntryTrigger * (1 - p.cfg.DefaultSLPct)
}
