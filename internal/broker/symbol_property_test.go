package broker

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"dhan-signal-trader/internal/models"
)

// Property: any intent's canonical trading symbol parses back to the
// same underlying, strike, option type and expiry date.
func TestProperty_TradingSymbolRoundTrips(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	ref := time.Date(2024, time.December, 2, 0, 0, 0, 0, time.UTC)

	properties.Property("canonical symbol round-trips", prop.ForAll(
		func(underlying models.Underlying, strike int, optionType models.OptionType, daysAhead int) bool {
			expiry := ref.AddDate(0, 0, daysAhead)
			intent := models.TradeIntent{
				Timestamp:    ref,
				Underlying:   underlying,
				Strike:       strike,
				OptionType:   optionType,
				Action:       models.ActionBuy,
				EntryTrigger: 100,
				ExpiryDate:   expiry,
			}

			gotUnderlying, gotExpiry, gotStrike, gotOptType, err := splitSymbol(intent.TradingSymbol(), ref)
			if err != nil {
				return false
			}
			return gotUnderlying == string(underlying) &&
				gotStrike == strike &&
				gotOptType == string(optionType) &&
				gotExpiry.Month() == expiry.Month() &&
				gotExpiry.Day() == expiry.Day()
		},
		gen.OneConstOf(models.Nifty, models.BankNifty, models.Sensex),
		gen.IntRange(100, 99999),
		gen.OneConstOf(models.Call, models.Put),
		gen.IntRange(0, 180),
	))

	properties.TestingRun(t)
}
