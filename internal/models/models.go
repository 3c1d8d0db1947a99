// Package models provides domain models for the signal trading pipeline.
package models

// Underlying represents a supported index underlying.
type Underlying string

const (
	Nifty     Underlying = "NIFTY"
	BankNifty Underlying = "BANKNIFTY"
	Sensex    Underlying = "SENSEX"
)

// SupportedUnderlyings lists every underlying the pipeline will trade.
// FINNIFTY, MIDCPNIFTY and futures contracts are rejected at parse time.
var SupportedUnderlyings = []Underlying{Nifty, BankNifty, Sensex}

// IsSupported reports whether u is a tradeable underlying.
func (u Underlying) IsSupported() bool {
	switch u {
	case Nifty, BankNifty, Sensex:
		return true
	}
	return false
}

// Exchange returns the F&O segment the underlying trades on.
func (u Underlying) Exchange() Exchange {
	if u == Sensex {
		return BSEFNO
	}
	return NSEFNO
}

// OptionType represents a call or put contract.
type OptionType string

const (
	Call OptionType = "CE"
	Put  OptionType = "PE"
)

// Action represents the side of a signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// OrderType represents the entry order type of an execution plan.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// ProductType represents the broker product an order is placed under.
type ProductType string

const (
	ProductIntraday ProductType = "INTRADAY"
	ProductMargin   ProductType = "MARGIN"
)

// Exchange represents a derivatives exchange segment.
type Exchange string

const (
	NSEFNO Exchange = "NSE_FNO"
	BSEFNO Exchange = "BSE_FNO"
)
