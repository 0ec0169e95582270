package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "io"
    "log"
    "net/http"
    "os"
    "time"

    "goldcalc/internal/config"
    "goldcalc/internal/httpx"
)

// feeddump fetches the raw gold/currency feed and writes it untouched to a
// file. Useful for refreshing test fixtures and for eyeballing what the
// upstream actually lists.

type feedShape struct {
    Gold     []entryShape `json:"gold"`
    Currency []entryShape `json:"currency"`
}

type entryShape struct {
    Name  string      `json:"name"`
    Price json.Number `json:"price"`
}

type httpStatusErr struct {
    code int
    body string
}

func (e *httpStatusErr) Error() string { return fmt.Sprintf("http %d: %s", e.code, e.body) }

func main() {
    var (
        outPath    string
        cfgPath    string
        timeoutSec int
        maxRetries int
    )
    flag.StringVar(&outPath, "out", "gold_currency.json", "output JSON file path")
    flag.StringVar(&cfgPath, "config", "", "path to config.json (optional)")
    flag.IntVar(&timeoutSec, "timeout", 20, "HTTP timeout seconds")
    flag.IntVar(&maxRetries, "retries", 3, "max retries on 429/5xx")
    flag.Parse()

    cfg, err := config.Load(cfgPath)
    if err != nil {
        log.Fatalf("config: %v", err)
    }
    url := fmt.Sprintf("%s/Api_Free_Gold_Currency.json", cfg.Feed.BaseURL)

    hc := httpx.New(time.Duration(timeoutSec) * time.Second)

    var raw []byte
    for attempt := 0; ; attempt++ {
        raw, err = fetchOnce(hc, url)
        if err == nil {
            break
        }
        se, ok := err.(*httpStatusErr)
        retryable := ok && (se.code == http.StatusTooManyRequests || se.code >= 500)
        if !retryable || attempt >= maxRetries {
            log.Fatalf("fetch: %v", err)
        }
        wait := time.Duration(1<<attempt) * time.Second
        log.Printf("attempt %d failed (%v), retrying in %s", attempt+1, err, wait)
        time.Sleep(wait)
    }

    if err := os.WriteFile(outPath, raw, 0o644); err != nil {
        log.Fatalf("write out: %v", err)
    }
    log.Printf("wrote %d bytes to %s", len(raw), outPath)

    var feed feedShape
    if err := json.Unmarshal(raw, &feed); err != nil {
        log.Fatalf("feed does not parse: %v", err)
    }
    log.Printf("gold entries: %d, currency entries: %d", len(feed.Gold), len(feed.Currency))
    for _, e := range feed.Gold {
        fmt.Printf("gold\t%s\t%s\n", e.Name, e.Price)
    }
    for _, e := range feed.Currency {
        fmt.Printf("currency\t%s\t%s\n", e.Name, e.Price)
    }
}

func fetchOnce(hc *httpx.Client, url string) ([]byte, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return nil, err
    }
    resp, err := hc.Do(ctx, req)
    if err != nil {
        return nil, err
    }
    defer resp.Body.Close()
    body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
    if err != nil {
        return nil, err
    }
    if resp.StatusCode != http.StatusOK {
        snippet := body
        if len(snippet) > 200 {
            snippet = snippet[:200]
        }
        return nil, &httpStatusErr{code: resp.StatusCode, body: string(snippet)}
    }
    return body, nil
}
