package utils

import "time"

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// MarketStatus represents the trading session state.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// marketOpenMinutes and marketCloseMinutes bound the NSE/BSE cash
// session (09:15–15:30 IST) in minutes after midnight.
const (
	preOpenMinutes     = 9 * 60
	marketOpenMinutes  = 9*60 + 15
	marketCloseMinutes = 15*60 + 30
)

// GetMarketStatus returns the session status at the given instant.
func GetMarketStatus(t time.Time) MarketStatus {
	local := t.In(IndiaLocation)

	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return MarketClosed
	}

	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes >= preOpenMinutes && minutes < marketOpenMinutes:
		return MarketPreOpen
	case minutes >= marketOpenMinutes && minutes < marketCloseMinutes:
		return MarketOpen
	default:
		return MarketClosed
	}
}

// BeforeMarketOpen reports whether the instant falls before the 09:15
// IST open on its own day.
func BeforeMarketOpen(t time.Time) bool {
	local := t.In(IndiaLocation)
	return local.Hour()*60+local.Minute() < marketOpenMinutes
}
