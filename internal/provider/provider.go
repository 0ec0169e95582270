package provider

import (
    "context"

    "github.com/shopspring/decimal"
)

// Quote is the normalized gold price snapshot returned by all providers.
// Price is the 24k per-gram price; the breakdown carries whatever else the
// upstream feed listed.
type Quote struct {
    Price     decimal.Decimal `json:"price"`
    Currency  string          `json:"currency"`
    Timestamp int64           `json:"timestamp"` // epoch milliseconds
    Prices    Breakdown       `json:"prices"`
}

// Breakdown carries the per-entry prices. Gold18K and USD are nil when the
// upstream feed does not list them.
type Breakdown struct {
    Gold24K decimal.Decimal  `json:"gold24k"`
    Gold18K *decimal.Decimal `json:"gold18k"`
    USD     *decimal.Decimal `json:"usd"`
}

type Provider interface {
    Name() string
    Fetch(ctx context.Context) (Quote, error)
}

// Freshness says which path produced a Result.
type Freshness string

const (
    // Fresh is a live quote from the upstream feed.
    Fresh Freshness = "fresh"
    // Stale is a quote recovered from the last-known slot or from mock data.
    Stale Freshness = "stale"
    // Failed means no usable quote at all. Only reachable for sources
    // configured without a mock floor; fallback.Source never returns it.
    Failed Freshness = "failed"
)

// Result is the recovery-aware outcome of a price lookup. Callers and tests
// assert which path was taken instead of inferring it from log output.
type Result struct {
    Quote     Quote     `json:"quote"`
    Freshness Freshness `json:"freshness"`
    Reason    string    `json:"reason,omitempty"`
}
