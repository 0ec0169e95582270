package store

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strconv"
    "sync"
    "time"

    "github.com/shopspring/decimal"
)

// Storage keys, carried over unchanged from the original persisted layout.
// Each key maps to one JSON file under the store directory. There is no
// schema versioning; a value that no longer parses is treated as absent.
const (
    calculationsKey = "tala_abshodeh_saved_calculations"
    lastPriceKey    = "last_known_gold_price"
)

// Calculation is a user-saved valuation. Immutable once stored; removed only
// as a whole by id.
type Calculation struct {
    ID         string          `json:"id"`
    Weight     decimal.Decimal `json:"weight"`     // grams
    Purity     decimal.Decimal `json:"purity"`     // percent of 24k
    Price      decimal.Decimal `json:"price"`      // per gram at save time
    TotalValue decimal.Decimal `json:"totalValue"`
    Timestamp  int64           `json:"timestamp"` // epoch milliseconds
}

// LastPrice is the single-slot offline price cache, overwritten on every
// successful fetch.
type LastPrice struct {
    Price     decimal.Decimal `json:"price"`
    Timestamp int64           `json:"timestamp"`
}

// FileStore persists JSON values under a directory, one file per key, with
// whole-value read-modify-write under a lock. Writers in other processes are
// not coordinated; last write wins.
//
// Read and parse failures never propagate to callers: they are logged and
// degrade to "no data". Write failures are returned.
type FileStore struct {
    dir string
    mu  sync.Mutex

    now func() time.Time
}

func New(dir string) (*FileStore, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return nil, fmt.Errorf("create store dir: %w", err)
    }
    return &FileStore{dir: dir, now: time.Now}, nil
}

// SaveCalculation assigns a fresh id to c, appends it to the persisted list
// and returns the stored record. The caller-provided ID field is ignored.
func (s *FileStore) SaveCalculation(c Calculation) (Calculation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    list := s.readCalculations()
    c.ID = s.nextID(list)
    list = append(list, c)
    if err := s.write(calculationsKey, list); err != nil {
        return Calculation{}, err
    }
    return c, nil
}

// Calculations returns the persisted list in insertion order. An absent or
// corrupt file yields an empty list.
func (s *FileStore) Calculations() []Calculation {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.readCalculations()
}

// DeleteCalculation removes the record with the given id and reports whether
// anything was removed. A missing id is a no-op, not an error.
func (s *FileStore) DeleteCalculation(id string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    list := s.readCalculations()
    kept := make([]Calculation, 0, len(list))
    for _, c := range list {
        if c.ID != id { kept = append(kept, c) }
    }
    if len(kept) == len(list) {
        return false, nil
    }
    if err := s.write(calculationsKey, kept); err != nil {
        return false, err
    }
    return true, nil
}

// PutLastKnownPrice overwrites the offline price slot.
func (s *FileStore) PutLastKnownPrice(price decimal.Decimal, timestamp int64) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.write(lastPriceKey, LastPrice{Price: price, Timestamp: timestamp})
}

// LastKnownPrice returns the offline price slot, if one was ever stored and
// still parses.
func (s *FileStore) LastKnownPrice() (LastPrice, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var lp LastPrice
    if !s.read(lastPriceKey, &lp) {
        return LastPrice{}, false
    }
    return lp, true
}

// nextID derives a time-based id unique within the current list. Saves within
// the same millisecond bump the value until it is free.
func (s *FileStore) nextID(list []Calculation) string {
    taken := make(map[string]struct{}, len(list))
    for _, c := range list { taken[c.ID] = struct{}{} }

    now := time.Now
    if s.now != nil { now = s.now }
    ms := now().UnixMilli()
    for {
        id := strconv.FormatInt(ms, 10)
        if _, dup := taken[id]; !dup {
            return id
        }
        ms++
    }
}

func (s *FileStore) readCalculations() []Calculation {
    var list []Calculation
    if !s.read(calculationsKey, &list) {
        return nil
    }
    return list
}

func (s *FileStore) path(key string) string { return filepath.Join(s.dir, key+".json") }

func (s *FileStore) write(key string, v any) error {
    b, err := json.Marshal(v)
    if err != nil {
        return fmt.Errorf("encode %s: %w", key, err)
    }
    if err := os.WriteFile(s.path(key), b, 0o644); err != nil {
        return fmt.Errorf("write %s: %w", key, err)
    }
    return nil
}

func (s *FileStore) read(key string, v any) bool {
    b, err := os.ReadFile(s.path(key))
    if err != nil {
        if !errors.Is(err, os.ErrNotExist) {
            log.Printf("store: read %s: %v", key, err)
        }
        return false
    }
    if err := json.Unmarshal(b, v); err != nil {
        log.Printf("store: parse %s: %v", key, err)
        return false
    }
    return true
}
