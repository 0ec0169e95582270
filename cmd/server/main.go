package main

import (
    "compress/gzip"
    "context"
    "io"
    "log"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "sync"
    "syscall"
    "time"

    "goldcalc/internal/config"
    "goldcalc/internal/httpx"
    "goldcalc/internal/provider"
    "goldcalc/internal/provider/brsapi"
    "goldcalc/internal/provider/brsapiadapter"
    "goldcalc/internal/provider/cache"
    "goldcalc/internal/provider/fallback"
    "goldcalc/internal/provider/ratelimit"
    "goldcalc/internal/store"
)

func main() {
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil { log.Fatalf("config: %v", err) }

    st, err := store.New(cfg.Store.Dir)
    if err != nil { log.Fatalf("store: %v", err) }

    source := fallback.New(buildProvider(cfg), st)
    h := &handlers{source: source, store: st, cfg: cfg}

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           withCORS(withGzip(recoverPanic(limitBody(newRouter(h))))),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Printf("server listening on :%s", cfg.Server.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
}

// buildProvider assembles the feed client and its decorators from config:
// rate limiting innermost, then the TTL cache so cache hits never consume
// rate tokens.
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

    // Prefer token bucket with burst if RPM is set, otherwise use min-interval
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

func withCORS(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        // Basic CORS for browser usage; adjust as needed.
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
        if r.Method == http.MethodOptions {
            w.WriteHeader(http.StatusNoContent)
            return
        }
        next.ServeHTTP(w, r)
    })
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
    var gzPool = sync.Pool{New: func() any {
        // Prefer best speed to reduce CPU usage since payloads are JSON
        w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
        return w
    }}
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
            next.ServeHTTP(w, r)
            return
        }
        gz := gzPool.Get().(*gzip.Writer)
        gz.Reset(w)
        defer func() {
            _ = gz.Close()
            gz.Reset(io.Discard)
            gzPool.Put(gz)
        }()
        w.Header().Set("Content-Encoding", "gzip")
        w.Header().Add("Vary", "Accept-Encoding")
        gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
        next.ServeHTTP(gw, r)
    })
}

type gzipResponseWriter struct {
    http.ResponseWriter
    Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
    return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
    const maxBody = 1 << 20 // 1MB
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
            r.Body = http.MaxBytesReader(w, r.Body, maxBody)
        }
        next.ServeHTTP(w, r)
    })
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
                http.Error(w, "internal server error", http.StatusInternalServerError)
            }
        }()
        next.ServeHTTP(w, r)
    })
}
