// Package history synthesizes a display-only price series. No real
// historical source exists for the feed, so past days are the current price
// perturbed inside a small band.
package history

import (
    "math/rand"
    "time"

    "github.com/shopspring/decimal"
)

// Point is one synthesized day, date formatted as YYYY-MM-DD.
type Point struct {
    Date  string          `json:"date"`
    Price decimal.Decimal `json:"price"`
}

// Series builds exactly days points ending on now's calendar date, oldest
// first. Each price is base scaled by a uniform factor in [0.95, 1.05) and
// rounded to a whole amount. days <= 0 yields nil. Passing a seeded rnd makes
// the series reproducible; a nil rnd falls back to a time-seeded source.
func Series(base decimal.Decimal, days int, now time.Time, rnd *rand.Rand) []Point {
    if days <= 0 { return nil }
    if rnd == nil {
        rnd = rand.New(rand.NewSource(now.UnixNano()))
    }

    out := make([]Point, 0, days)
    for i := days - 1; i >= 0; i-- {
        f := decimal.NewFromFloat(0.95 + rnd.Float64()*0.1)
        out = append(out, Point{
            Date:  now.AddDate(0, 0, -i).Format("2006-01-02"),
            Price: base.Mul(f).Round(0),
        })
    }
    return out
}
