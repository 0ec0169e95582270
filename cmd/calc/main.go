package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "log"
    "math/rand"
    "net/http"
    "os"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "goldcalc/internal/config"
    "goldcalc/internal/format"
    "goldcalc/internal/history"
    "goldcalc/internal/httpx"
    "goldcalc/internal/provider"
    "goldcalc/internal/provider/brsapi"
    "goldcalc/internal/provider/brsapiadapter"
    "goldcalc/internal/provider/cache"
    "goldcalc/internal/provider/fallback"
    "goldcalc/internal/provider/ratelimit"
    "goldcalc/internal/store"
    "goldcalc/internal/valuation"
)

type output struct {
    Quote         provider.Quote     `json:"quote"`
    Freshness     provider.Freshness `json:"freshness"`
    Reason        string             `json:"reason,omitempty"`
    Weight        decimal.Decimal    `json:"weight"`
    PurityPercent decimal.Decimal    `json:"purity_percent"`
    TotalValue    decimal.Decimal    `json:"total_value"`
    TotalValueUSD *decimal.Decimal   `json:"total_value_usd,omitempty"`
    CaratWeights  *valuation.CaratWeights `json:"carat_weights,omitempty"`
    History       []history.Point    `json:"history,omitempty"`
    ShareText     string             `json:"share_text,omitempty"`
}

func main() {
    var weightStr string
    var karat int
    var customPurity string
    var caratStr string
    var days int
    var share bool
    var save bool
    var timeout int
    var configPath string

    flag.StringVar(&weightStr, "weight", getenv("WEIGHT", "1"), "weight in grams")
    flag.IntVar(&karat, "karat", getenvInt("KARAT", 18), "purity on the 24-point karat scale")
    flag.StringVar(&customPurity, "custom-purity", getenv("CUSTOM_PURITY", ""), "purity percent, overrides -karat when set")
    flag.StringVar(&caratStr, "carat", getenv("CARAT", ""), "millesimal fineness for weight conversion (e.g. 750)")
    flag.IntVar(&days, "days", getenvInt("HISTORY_DAYS", 0), "include a synthesized price history of N days")
    flag.BoolVar(&share, "share", getenvBool("SHARE", false), "include the plain-text share summary")
    flag.BoolVar(&save, "save", getenvBool("SAVE", false), "persist the calculation")
    flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 15), "request timeout seconds")
    flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil { log.Fatalf("config: %v", err) }
    if timeout != 0 { cfg.Server.RequestTimeoutSec = timeout }

    weight, err := decimal.NewFromString(weightStr)
    if err != nil { log.Fatalf("invalid -weight %q: %v", weightStr, err) }

    var percent decimal.Decimal
    if customPurity != "" {
        p, err := decimal.NewFromString(customPurity)
        if err != nil { log.Fatalf("invalid -custom-purity %q: %v", customPurity, err) }
        percent = valuation.Clamp(p, decimal.NewFromInt(1), decimal.NewFromInt(100))
    } else {
        percent = valuation.KaratPercent(int64(karat))
    }

    st, err := store.New(cfg.Store.Dir)
    if err != nil { log.Fatalf("store: %v", err) }

    source := fallback.New(buildProvider(cfg), st)

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
    defer cancel()
    res := source.Current(ctx)

    total := valuation.TotalValue(weight, percent, res.Quote.Price)

    out := output{
        Quote:         res.Quote,
        Freshness:     res.Freshness,
        Reason:        res.Reason,
        Weight:        weight,
        PurityPercent: percent,
        TotalValue:    total,
    }
    if res.Quote.Prices.USD != nil {
        usd := valuation.ConvertCurrency(total, *res.Quote.Prices.USD)
        out.TotalValueUSD = &usd
    }
    if caratStr != "" {
        carat, err := decimal.NewFromString(caratStr)
        if err != nil { log.Fatalf("invalid -carat %q: %v", caratStr, err) }
        cw := valuation.CaratToWeights(weight, carat)
        out.CaratWeights = &cw
    }
    if days > 0 {
        if days > cfg.History.MaxDays { days = cfg.History.MaxDays }
        out.History = history.Series(res.Quote.Price, days, time.Now(), rand.New(rand.NewSource(time.Now().UnixNano())))
    }
    if share {
        out.ShareText = format.ShareText(weight, percent, res.Quote.Price, total)
    }
    if save {
        saved, err := st.SaveCalculation(store.Calculation{
            Weight:     weight,
            Purity:     percent,
            Price:      res.Quote.Price,
            TotalValue: total,
        })
        if err != nil { log.Fatalf("save: %v", err) }
        log.Printf("saved calculation %s", saved.ID)
    }

    b, err := json.MarshalIndent(out, "", "  ")
    if err != nil { log.Fatalf("marshal: %v", err) }
    fmt.Println(string(b))
}

func buildProvider(cfg config.Config) provider.Provider {
    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    client := brsapi.NewClient(
        brsapi.WithBaseURL(cfg.Feed.BaseURL),
        brsapi.WithHTTPClient(httpClient.HTTP),
        brsapi.WithHeader(http.Header{"User-Agent": []string{httpClient.UserAgent}}),
    )

    var p provider.Provider = brsapiadapter.New(brsapiadapter.Config{
        Name:     "Brsapi",
        Currency: cfg.Feed.Currency,
    }, client)

    if cfg.Feed.MaxRequestsPerMinute > 0 {
        rate := float64(cfg.Feed.MaxRequestsPerMinute) / 60.0
        burst := cfg.Feed.Burst
        if burst <= 0 { burst = 1 }
        p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(rate, burst)}
    } else if cfg.Feed.MinRequestIntervalSec > 0 {
        interval := time.Duration(cfg.Feed.MinRequestIntervalSec) * time.Second
        p = &ratelimit.MinInterval{P: p, Interval: interval}
    }
    if cfg.Feed.CacheTTLSeconds > 0 {
        p = &cache.Provider{P: p, TTL: time.Duration(cfg.Feed.CacheTTLSeconds) * time.Second}
    }
    return p
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        var x int
        _, _ = fmt.Sscanf(v, "%d", &x)
        if x != 0 { return x }
    }
    return def
}
func getenvBool(key string, def bool) bool {
    if v := os.Getenv(key); v != "" {
        switch strings.ToLower(v) {
        case "1", "true", "yes", "y": return true
        case "0", "false", "no", "n": return false
        }
    }
    return def
}
