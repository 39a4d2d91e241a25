package ledger

import "github.com/shopspring/decimal"

// DivisionPrecision is the number of fractional digits kept when prorating
// commission. Division is the only operation in the ledger that rounds.
const DivisionPrecision int32 = 32

func isBuy(quantity decimal.Decimal) bool {
	return quantity.Sign() == 1
}

// notional is |price × quantity|.
func notional(price, quantity decimal.Decimal) decimal.Decimal {
	return price.Mul(quantity).Abs()
}

// prorate scales the commission expected for the whole order down to the
// filled quantity: expected × filled ÷ expectedQuantity. An order placed with
// a zero quantity has nothing to scale against, so the full expected
// commission is released.
func prorate(expectedCommission, filled, expectedQuantity decimal.Decimal) decimal.Decimal {
	if expectedQuantity.IsZero() {
		return expectedCommission
	}
	return expectedCommission.Mul(filled).DivRound(expectedQuantity, DivisionPrecision)
}

// extraCommission is max(0, (commission − expected) × commission).
//
// The delta is scaled by the commission itself, not by the filled quantity.
// TestSellFillExtraCommissionFormula pins this.
func extraCommission(commission, expected decimal.Decimal) decimal.Decimal {
	return decimal.Max(commission.Sub(expected).Mul(commission), decimal.Zero)
}
