package cache

import (
    "context"
    "sync"
    "time"

    "golang.org/x/sync/singleflight"

    "goldcalc/internal/provider"
)

// Provider caches the current quote for a TTL. The feed has a single logical
// symbol, so this is a one-slot cache; concurrent refreshes after expiry are
// coalesced so one upstream call serves every waiter.
type Provider struct {
    P   provider.Provider
    TTL time.Duration

    mu    sync.RWMutex
    quote provider.Quote
    until time.Time

    sf singleflight.Group
}

func (c *Provider) Name() string { return c.P.Name() }

// Fetch returns the cached quote while it is valid, refreshing otherwise.
// Errors from the refresh propagate; the fallback layer decides how a failed
// refresh is surfaced.
func (c *Provider) Fetch(ctx context.Context) (provider.Quote, error) {
    if c.TTL <= 0 {
        return c.P.Fetch(ctx)
    }

    c.mu.RLock()
    q, until := c.quote, c.until
    c.mu.RUnlock()
    if time.Now().Before(until) {
        return q, nil
    }

    v, err, _ := c.sf.Do("quote", func() (any, error) {
        fresh, err := c.P.Fetch(ctx)
        if err != nil { return provider.Quote{}, err }
        c.mu.Lock()
        c.quote = fresh
        c.until = time.Now().Add(c.TTL)
        c.mu.Unlock()
        return fresh, nil
    })
    if err != nil {
        return provider.Quote{}, err
    }
    return v.(provider.Quote), nil
}
