package models

// Outcome is the terminal state of a signal in the pipeline. Each raw
// candidate moves RECEIVED → EXTRACTED → VALIDATED → DEDUP_CHECKED →
// PLANNED and finishes in exactly one of these.
type Outcome string

const (
	OutcomeAdmitted           Outcome = "ADMITTED_FOR_EXECUTION"
	OutcomeRejectedDuplicate  Outcome = "REJECTED_DUPLICATE"
	OutcomeRejectedIncomplete Outcome = "REJECTED_INCOMPLETE"
	OutcomeRejectedNoise      Outcome = "REJECTED_NOISE"
	OutcomeSkippedPriceMoved  Outcome = "SKIPPED_PRICE_MOVED"
	OutcomeFailedMarketData   Outcome = "FAILED_MISSING_MARKET_DATA"
	OutcomeFailedInvalidRisk  Outcome = "FAILED_INVALID_RISK"
)
