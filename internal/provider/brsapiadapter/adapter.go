package brsapiadapter

import (
    "context"
    "fmt"
    "time"

    "github.com/shopspring/decimal"

    "goldcalc/internal/provider"
    "goldcalc/internal/provider/brsapi"
)

type Config struct {
    Name     string // display name, default: Brsapi
    Currency string // quote currency, default: IRT
}

// Adapter normalizes the brsapi feed into a provider.Quote.
type Adapter struct {
    cfg    Config
    client *brsapi.Client

    now func() time.Time
}

func New(cfg Config, client *brsapi.Client) *Adapter {
    if cfg.Name == "" { cfg.Name = "Brsapi" }
    if cfg.Currency == "" { cfg.Currency = "IRT" }
    return &Adapter{cfg: cfg, client: client, now: time.Now}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// Fetch retrieves the feed and builds a quote around the gram-gold entries.
// A feed without the 24k row is an error (brsapi.ErrNo24KEntry); the 18k and
// dollar rows are optional and left nil when absent or unparseable.
func (a *Adapter) Fetch(ctx context.Context) (provider.Quote, error) {
    feed, err := a.client.FetchGoldCurrency(ctx)
    if err != nil { return provider.Quote{}, err }

    g24, ok := brsapi.Find(feed.Gold, brsapi.Name24KGram)
    if !ok { return provider.Quote{}, brsapi.ErrNo24KEntry }
    price24, err := decimal.NewFromString(g24.Price.String())
    if err != nil {
        return provider.Quote{}, fmt.Errorf("parse 24k price %q: %w", g24.Price, err)
    }

    q := provider.Quote{
        Price:     price24,
        Currency:  a.cfg.Currency,
        Timestamp: a.now().UnixMilli(),
        Prices:    provider.Breakdown{Gold24K: price24},
    }
    if g18, ok := brsapi.Find(feed.Gold, brsapi.Name18KGram); ok {
        if p, err := decimal.NewFromString(g18.Price.String()); err == nil { q.Prices.Gold18K = &p }
    }
    if usd, ok := brsapi.Find(feed.Currency, brsapi.NameUSDollar); ok {
        if p, err := decimal.NewFromString(usd.Price.String()); err == nil { q.Prices.USD = &p }
    }
    return q, nil
}
