package main

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/shopspring/decimal"

    "goldcalc/internal/config"
    "goldcalc/internal/provider"
    "goldcalc/internal/provider/fallback"
    "goldcalc/internal/store"
)

type fakeProvider struct {
    quote provider.Quote
    err   error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(ctx context.Context) (provider.Quote, error) {
    if f.err != nil { return provider.Quote{}, f.err }
    return f.quote, nil
}

func liveQuote() provider.Quote {
    g18 := decimal.NewFromInt(30297000)
    usd := decimal.NewFromInt(585600)
    return provider.Quote{
        Price:     decimal.NewFromInt(40396000),
        Currency:  "IRT",
        Timestamp: time.Now().UnixMilli(),
        Prices: provider.Breakdown{
            Gold24K: decimal.NewFromInt(40396000),
            Gold18K: &g18,
            USD:     &usd,
        },
    }
}

func newTestRouter(t *testing.T, p provider.Provider) (*handlers, http.Handler) {
    t.Helper()
    st, err := store.New(t.TempDir())
    if err != nil { t.Fatalf("store: %v", err) }
    h := &handlers{source: fallback.New(p, st), store: st, cfg: config.Default()}
    return h, newRouter(h)
}

func TestPriceFresh(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/price", nil))

    if rec.Code != http.StatusOK { t.Fatalf("status = %d", rec.Code) }
    var res provider.Result
    if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil { t.Fatalf("decode: %v", err) }
    if res.Freshness != provider.Fresh { t.Fatalf("freshness = %q", res.Freshness) }
    if res.Quote.Price.String() != "40396000" { t.Fatalf("price = %s", res.Quote.Price) }
}

func TestPriceMockFallback(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{err: errors.New("feed down")})

    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/price", nil))

    if rec.Code != http.StatusOK { t.Fatalf("status = %d", rec.Code) }
    var res provider.Result
    if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil { t.Fatalf("decode: %v", err) }
    if res.Freshness != provider.Stale { t.Fatalf("freshness = %q", res.Freshness) }
    if res.Quote.Price.String() != "28500000" { t.Fatalf("price = %s", res.Quote.Price) }
}

func TestPriceHistoryDays(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/price/history?days=7", nil))

    if rec.Code != http.StatusOK { t.Fatalf("status = %d", rec.Code) }
    var resp historyResponse
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.Days != 7 { t.Fatalf("days = %d", resp.Days) }
    if len(resp.Points) != 7 { t.Fatalf("points = %d", len(resp.Points)) }
    today := time.Now().Format("2006-01-02")
    if resp.Points[6].Date != today { t.Fatalf("last date = %s, want %s", resp.Points[6].Date, today) }
}

func TestPriceHistoryClampsDays(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/price/history?days=5000", nil))

    var resp historyResponse
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.Days != config.Default().History.MaxDays {
        t.Fatalf("days = %d, want %d", resp.Days, config.Default().History.MaxDays)
    }
}

func TestCalculate(t *testing.T) {
    p := &fakeProvider{quote: provider.Quote{
        Price:    decimal.NewFromInt(28500000),
        Currency: "IRT",
        Prices:   provider.Breakdown{Gold24K: decimal.NewFromInt(28500000)},
    }}
    _, r := newTestRouter(t, p)

    body := `{"weight":"10","karat":18}`
    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body)))

    if rec.Code != http.StatusOK { t.Fatalf("status = %d: %s", rec.Code, rec.Body.String()) }
    var resp calculateResponse
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.PurityPercent.String() != "75" { t.Fatalf("purity = %s", resp.PurityPercent) }
    if !resp.TotalValue.Equal(decimal.NewFromInt(213750000)) {
        t.Fatalf("total = %s, want 213750000", resp.TotalValue)
    }
    if resp.TotalValueUSD != nil { t.Fatal("usd value without a usd rate") }
}

func TestCalculateClampsWeight(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    body := `{"weight":"999999","karat":24}`
    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body)))

    var resp calculateResponse
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.Weight.String() != "10000" { t.Fatalf("weight = %s", resp.Weight) }
    if len(resp.Warnings) == 0 { t.Fatal("expected clamp warning") }
}

func TestCalculateCustomPurityWins(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    body := `{"weight":"5","karat":24,"custom_purity":"90"}`
    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body)))

    var resp calculateResponse
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.PurityPercent.String() != "90" { t.Fatalf("purity = %s", resp.PurityPercent) }
}

func TestConvert(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    body := `{"weight":"10","carat":"750"}`
    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body)))

    if rec.Code != http.StatusOK { t.Fatalf("status = %d: %s", rec.Code, rec.Body.String()) }
    var resp convertResponse
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.Weight24K.String() != "7.5" { t.Fatalf("24k weight = %s", resp.Weight24K) }
    if resp.Weight18K.String() != "10" { t.Fatalf("18k weight = %s", resp.Weight18K) }
    want := decimal.NewFromInt(40396000).Mul(decimal.RequireFromString("7.5")).Round(0)
    if !resp.Value24K.Equal(want) { t.Fatalf("value = %s, want %s", resp.Value24K, want) }
}

func TestCalculationsLifecycle(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    save := `{"weight":"10","purity":"75","price":"28500000","totalValue":"213750000"}`
    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calculations", strings.NewReader(save)))
    if rec.Code != http.StatusCreated { t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String()) }
    var saved store.Calculation
    if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil { t.Fatalf("decode: %v", err) }
    if saved.ID == "" { t.Fatal("missing id") }

    rec = httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calculations", nil))
    var listResp map[string][]store.Calculation
    if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil { t.Fatalf("decode: %v", err) }
    if len(listResp["calculations"]) != 1 { t.Fatalf("list = %d entries", len(listResp["calculations"])) }

    path := fmt.Sprintf("/api/calculations/%s", saved.ID)
    rec = httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))
    if rec.Code != http.StatusNoContent { t.Fatalf("delete status = %d", rec.Code) }

    rec = httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))
    if rec.Code != http.StatusNotFound { t.Fatalf("second delete status = %d", rec.Code) }
}

func TestSaveCalculationRejectsNonPositive(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    body := `{"weight":"0","purity":"75","price":"28500000","totalValue":"0"}`
    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calculations", strings.NewReader(body)))
    if rec.Code != http.StatusBadRequest { t.Fatalf("status = %d", rec.Code) }
}

func TestShare(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    body := `{"weight":"10","purity_percent":"75","price":"28500000","total_value":"213750000"}`
    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/share", strings.NewReader(body)))

    if rec.Code != http.StatusOK { t.Fatalf("status = %d", rec.Code) }
    text := rec.Body.String()
    if !strings.HasPrefix(text, "محاسبه ارزش طلای آب شده:") { t.Fatalf("unexpected header: %q", text) }
    if !strings.Contains(text, "وزن: ۱۰ گرم") { t.Fatalf("missing weight line: %q", text) }
    if !strings.Contains(text, "۲۱۳,۷۵۰,۰۰۰ تومان") { t.Fatalf("missing total line: %q", text) }
}

func TestBadJSONBody(t *testing.T) {
    _, r := newTestRouter(t, &fakeProvider{quote: liveQuote()})

    rec := httptest.NewRecorder()
    r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader("{nope")))
    if rec.Code != http.StatusBadRequest { t.Fatalf("status = %d", rec.Code) }
}
