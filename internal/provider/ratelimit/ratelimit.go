package ratelimit

import (
    "context"
    "sync"
    "time"

    "goldcalc/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between feed
// calls. Concurrent calls wait until the interval has elapsed since the last
// call, or return early if the context is canceled.
type MinInterval struct {
    P        provider.Provider
    Interval time.Duration
    mu       sync.Mutex
    last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Fetch(ctx context.Context) (provider.Quote, error) {
    if m.Interval > 0 {
        // simple gate: ensure at least Interval since last
        m.mu.Lock()
        wait := time.Until(m.last.Add(m.Interval))
        m.mu.Unlock()
        if wait > 0 {
            t := time.NewTimer(wait)
            defer t.Stop()
            select {
            case <-ctx.Done():
                return provider.Quote{}, ctx.Err()
            case <-t.C:
            }
        }
    }
    q, err := m.P.Fetch(ctx)
    if m.Interval > 0 {
        m.mu.Lock()
        m.last = time.Now()
        m.mu.Unlock()
    }
    return q, err
}
