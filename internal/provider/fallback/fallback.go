package fallback

import (
    "context"
    "log"
    "time"

    "github.com/shopspring/decimal"

    "goldcalc/internal/provider"
    "goldcalc/internal/store"
)

// Mock quote used when neither a live nor a last-known price exists. The
// values are fixed, in IRT per gram; 18k is 75% of 24k.
var (
    mockPrice24K = decimal.NewFromInt(28500000)
    mockUSDRate  = decimal.NewFromInt(68000)
)

var threeQuarters = decimal.RequireFromString("0.75")

// Source wraps a provider chain with value-returning recovery. A failed
// fetch degrades to the last known stored price, then to the fixed mock
// quote. Current never returns an error and never returns Failed: there is
// always a mock floor. On every successful fetch the price is written
// through to the store's last-known slot.
type Source struct {
    P     provider.Provider
    Store *store.FileStore

    now func() time.Time
}

func New(p provider.Provider, st *store.FileStore) *Source {
    return &Source{P: p, Store: st, now: time.Now}
}

// Current returns the best available quote and says which path produced it.
func (s *Source) Current(ctx context.Context) provider.Result {
    q, err := s.P.Fetch(ctx)
    if err == nil {
        if s.Store != nil {
            if perr := s.Store.PutLastKnownPrice(q.Price, q.Timestamp); perr != nil {
                log.Printf("fallback: persist last known price: %v", perr)
            }
        }
        return provider.Result{Quote: q, Freshness: provider.Fresh}
    }

    log.Printf("fallback: %s fetch failed: %v", s.P.Name(), err)
    if s.Store != nil {
        if last, ok := s.Store.LastKnownPrice(); ok {
            return provider.Result{
                Quote:     quoteFromLast(last),
                Freshness: provider.Stale,
                Reason:    "using last known price: " + err.Error(),
            }
        }
    }
    return provider.Result{
        Quote:     s.mockQuote(),
        Freshness: provider.Stale,
        Reason:    "using mock price: " + err.Error(),
    }
}

// quoteFromLast rebuilds a quote around the stored 24k price. The slot keeps
// only price and timestamp, so 18k is derived and the dollar rate is absent.
func quoteFromLast(last store.LastPrice) provider.Quote {
    g18 := last.Price.Mul(threeQuarters)
    return provider.Quote{
        Price:     last.Price,
        Currency:  "IRT",
        Timestamp: last.Timestamp,
        Prices:    provider.Breakdown{Gold24K: last.Price, Gold18K: &g18},
    }
}

func (s *Source) mockQuote() provider.Quote {
    now := time.Now
    if s.now != nil { now = s.now }
    g18 := mockPrice24K.Mul(threeQuarters)
    usd := mockUSDRate
    return provider.Quote{
        Price:     mockPrice24K,
        Currency:  "IRT",
        Timestamp: now().UnixMilli(),
        Prices:    provider.Breakdown{Gold24K: mockPrice24K, Gold18K: &g18, USD: &usd},
    }
}
