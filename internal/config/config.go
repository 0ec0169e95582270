package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"

    "github.com/joho/godotenv"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Feed struct {
    BaseURL               string `json:"base_url"`
    Currency              string `json:"currency"`
    CacheTTLSeconds       int    `json:"cache_ttl_sec"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec"`
    Burst                 int    `json:"burst"`
}

type Store struct {
    Dir string `json:"dir"`
}

type History struct {
    DefaultDays int `json:"default_days"`
    MaxDays     int `json:"max_days"`
}

// Limits bound user input; out-of-range values are clamped, not rejected.
// MaxCarat is on the millesimal fineness scale (999 = near-pure).
type Limits struct {
    MaxWeightGrams string `json:"max_weight_grams"`
    MaxCarat       string `json:"max_carat"`
}

type Config struct {
    Server  Server  `json:"server"`
    Feed    Feed    `json:"feed"`
    Store   Store   `json:"store"`
    History History `json:"history"`
    Limits  Limits  `json:"limits"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 10},
        Feed: Feed{
            BaseURL:              "https://brsapi.ir/FreeTsetmcBourseApi",
            Currency:             "IRT",
            CacheTTLSeconds:      60,
            MaxRequestsPerMinute: 30,
            Burst:                2,
        },
        Store:   Store{Dir: "data"},
        History: History{DefaultDays: 7, MaxDays: 90},
        Limits:  Limits{MaxWeightGrams: "10000", MaxCarat: "1000"},
    }
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. A .env file (if present) and environment
// variables override select fields.
func Load(path string) (Config, error) {
    _ = godotenv.Load()

    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("FEED_BASE_URL"); v != "" { cfg.Feed.BaseURL = v }
    if v := os.Getenv("FEED_CURRENCY"); v != "" { cfg.Feed.Currency = v }
    if v := os.Getenv("FEED_CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Feed.CacheTTLSeconds = x }
    }
    if v := os.Getenv("FEED_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Feed.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("FEED_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Feed.MinRequestIntervalSec = x }
    }
    if v := os.Getenv("FEED_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Feed.Burst = x }
    }
    if v := os.Getenv("STORE_DIR"); v != "" { cfg.Store.Dir = v }
    if v := os.Getenv("HISTORY_DEFAULT_DAYS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.History.DefaultDays = x }
    }
    if v := os.Getenv("HISTORY_MAX_DAYS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.History.MaxDays = x }
    }
    if v := os.Getenv("MAX_WEIGHT_GRAMS"); v != "" { cfg.Limits.MaxWeightGrams = v }
    if v := os.Getenv("MAX_CARAT"); v != "" { cfg.Limits.MaxCarat = v }
}
