package valuation

import (
    "github.com/shopspring/decimal"
)

var (
    hundred  = decimal.NewFromInt(100)
    mille    = decimal.NewFromInt(1000)
    fine18k  = decimal.NewFromInt(750)
    karat24k = decimal.NewFromInt(24)
)

// TotalValue computes the monetary value of weight grams of gold at the given
// per-gram price and purity (percent of 24k). Non-positive weight or price
// yields zero; purity is clamped to [0, 100]. Never panics on bad input.
func TotalValue(weight, purity, price decimal.Decimal) decimal.Decimal {
    if weight.Sign() <= 0 || price.Sign() <= 0 { return decimal.Zero }
    p := Clamp(purity, decimal.Zero, hundred)
    return weight.Mul(price).Mul(p).Div(hundred)
}

// CaratWeights is the pure-gold equivalent of a weight at a given fineness.
type CaratWeights struct {
    Weight24K decimal.Decimal `json:"weight24k"`
    Weight18K decimal.Decimal `json:"weight18k"`
}

// CaratToWeights converts weight grams at the given carat to 24k and 18k
// equivalents, each rounded to 3 decimals. Carat here is a millesimal
// fineness value (750 = 18k), not the 24-point karat scale that KaratPercent
// uses; both conventions come from the source UI and are kept distinct.
// Non-positive inputs yield zero weights.
func CaratToWeights(weight, carat decimal.Decimal) CaratWeights {
    if weight.Sign() <= 0 || carat.Sign() <= 0 {
        return CaratWeights{Weight24K: decimal.Zero, Weight18K: decimal.Zero}
    }
    g := carat.Mul(weight)
    return CaratWeights{
        Weight24K: g.Div(mille).Round(3),
        Weight18K: g.Div(fine18k).Round(3),
    }
}

// ConvertCurrency converts an amount in the base currency using rate units of
// base per target (e.g. IRT per USD). A non-positive amount or rate yields
// zero rather than a division error.
func ConvertCurrency(amount, rate decimal.Decimal) decimal.Decimal {
    if amount.Sign() <= 0 || rate.Sign() <= 0 { return decimal.Zero }
    return amount.Div(rate)
}

// KaratPercent maps a karat on the 24-point scale to a purity percent:
// 24 -> 100, 18 -> 75. Values outside [0, 24] are clamped.
func KaratPercent(karat int64) decimal.Decimal {
    k := Clamp(decimal.NewFromInt(karat), decimal.Zero, karat24k)
    return k.Mul(hundred).Div(karat24k)
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
    if v.LessThan(lo) { return lo }
    if v.GreaterThan(hi) { return hi }
    return v
}
