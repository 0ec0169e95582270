package valuation

import (
    "testing"

    "github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTotalValue_Formula(t *testing.T) {
    // 10g of 18k (75%) at 28,500,000 per gram
    got := TotalValue(d("10"), d("75"), d("28500000"))
    if !got.Equal(d("213750000")) {
        t.Fatalf("want 213750000, got %s", got)
    }

    // 1g of 24k at 1,000,000
    got = TotalValue(d("1"), d("100"), d("1000000"))
    if !got.Equal(d("1000000")) {
        t.Fatalf("want 1000000, got %s", got)
    }
}

func TestTotalValue_ZeroAndNegativeInputs(t *testing.T) {
    cases := []struct{ w, p, c string }{
        {"0", "75", "28500000"},
        {"10", "75", "0"},
        {"-1", "75", "28500000"},
        {"10", "75", "-5"},
    }
    for _, c := range cases {
        if got := TotalValue(d(c.w), d(c.p), d(c.c)); !got.IsZero() {
            t.Fatalf("TotalValue(%s,%s,%s): want 0, got %s", c.w, c.p, c.c, got)
        }
    }
}

func TestTotalValue_PurityClamped(t *testing.T) {
    // purity above 100 behaves as 100, below 0 as 0
    if got := TotalValue(d("2"), d("150"), d("100")); !got.Equal(d("200")) {
        t.Fatalf("purity>100: want 200, got %s", got)
    }
    if got := TotalValue(d("2"), d("-10"), d("100")); !got.IsZero() {
        t.Fatalf("purity<0: want 0, got %s", got)
    }
}

func TestCaratToWeights_MillesimalDivisors(t *testing.T) {
    // 1g at 750 fineness: 0.750 pure-gold grams, exactly 1g of 18k
    got := CaratToWeights(d("1"), d("750"))
    if !got.Weight24K.Equal(d("0.75")) || !got.Weight18K.Equal(d("1")) {
        t.Fatalf("unexpected: %+v", got)
    }

    // 2g at 750: doubles
    got = CaratToWeights(d("2"), d("750"))
    if !got.Weight24K.Equal(d("1.5")) || !got.Weight18K.Equal(d("2")) {
        t.Fatalf("unexpected: %+v", got)
    }
}

func TestCaratToWeights_RoundsToThreeDecimals(t *testing.T) {
    got := CaratToWeights(d("1"), d("333"))
    if !got.Weight24K.Equal(d("0.333")) {
        t.Fatalf("weight24k: want 0.333, got %s", got.Weight24K)
    }
    if !got.Weight18K.Equal(d("0.444")) {
        t.Fatalf("weight18k: want 0.444, got %s", got.Weight18K)
    }
}

func TestCaratToWeights_ZeroInputsAndPurity(t *testing.T) {
    for _, c := range []struct{ w, k string }{{"0", "750"}, {"1", "0"}, {"-2", "750"}, {"1", "-750"}} {
        got := CaratToWeights(d(c.w), d(c.k))
        if !got.Weight24K.IsZero() || !got.Weight18K.IsZero() {
            t.Fatalf("CaratToWeights(%s,%s): want zeros, got %+v", c.w, c.k, got)
        }
    }

    // pure function: identical inputs give identical outputs
    a := CaratToWeights(d("3.3"), d("917"))
    b := CaratToWeights(d("3.3"), d("917"))
    if !a.Weight24K.Equal(b.Weight24K) || !a.Weight18K.Equal(b.Weight18K) {
        t.Fatalf("not idempotent: %+v vs %+v", a, b)
    }
}

func TestConvertCurrency(t *testing.T) {
    got := ConvertCurrency(d("213750000"), d("68000"))
    want := d("213750000").Div(d("68000"))
    if !got.Equal(want) {
        t.Fatalf("want %s, got %s", want, got)
    }

    if got := ConvertCurrency(d("100"), d("0")); !got.IsZero() {
        t.Fatalf("rate=0: want 0, got %s", got)
    }
    if got := ConvertCurrency(d("0"), d("68000")); !got.IsZero() {
        t.Fatalf("amount=0: want 0, got %s", got)
    }
}

func TestKaratPercent(t *testing.T) {
    if got := KaratPercent(24); !got.Equal(d("100")) {
        t.Fatalf("24k: want 100, got %s", got)
    }
    if got := KaratPercent(18); !got.Equal(d("75")) {
        t.Fatalf("18k: want 75, got %s", got)
    }
    if got := KaratPercent(-3); !got.IsZero() {
        t.Fatalf("negative karat: want 0, got %s", got)
    }
    if got := KaratPercent(30); !got.Equal(d("100")) {
        t.Fatalf("karat>24: want 100, got %s", got)
    }
}
