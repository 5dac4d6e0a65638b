package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds to cents, half away from zero. Prices are never negative by
// the time they are rounded, so this is the usual half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// percentOff returns base × (1 − pct/100), rounded once at the end.
func percentOff(base, pct decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(hundred.Sub(pct)).Div(hundred))
}

func amountOff(base, amount decimal.Decimal) decimal.Decimal {
	return clampZero(Round2(base.Sub(amount)))
}

// percentOf reports part as a percentage of whole, or zero for a zero whole.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round2(part.Mul(hundred).Div(whole))
}
