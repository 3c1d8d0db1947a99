package models

// Instrument is the resolved contract for a trading symbol, supplied by
// the symbol-resolution collaborator.
type Instrument struct {
	SecurityID string
	Exchange   Exchange
	LotSize    int
	TickSize   float64
}

// ExecutionPlan is a concrete, risk-sized order instruction. It is built
// once per admitted intent and handed straight to the submission
// collaborator; the core never stores it.
type ExecutionPlan struct {
	Symbol        string
	SecurityID    string
	Exchange      Exchange
	Action        Action
	OrderType     OrderType
	LimitPrice    float64 // set iff OrderType == LIMIT
	Quantity      int     // positive multiple of lot size
	TargetPrice   float64
	StopLossPrice float64
	TrailingJump  float64
	Product       ProductType
}
