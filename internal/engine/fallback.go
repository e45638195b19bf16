package engine

import (
	"github.com/Veraticus/spice-categorizer/internal/config"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/shopspring/decimal"
)

// fallbackMatch applies the amount heuristic. Positive amounts use the income
// bands; zero and negative amounts use the expense bands. Within a direction
// the first band whose threshold |amount| strictly exceeds wins.
func fallbackMatch(income, expense []config.FallbackBand, amount decimal.Decimal) model.CategoryMatch {
	bands := expense
	if amount.IsPositive() {
		bands = income
	}

	abs := amount.Abs()
	for _, band := range bands {
		if band.Above == nil || abs.GreaterThan(*band.Above) {
			return fromBand(band)
		}
	}

	// Validated policies always end with a catch-all band.
	return fromBand(bands[len(bands)-1])
}

func fromBand(band config.FallbackBand) model.CategoryMatch {
	return model.CategoryMatch{
		CategoryID: band.CategoryID,
		Confidence: band.Confidence,
		Method:     model.MethodFallback,
	}
}
