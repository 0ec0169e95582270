package main

import (
    "encoding/json"
    "log"
    "net/http"
    "sort"
    "strconv"
    "time"

    "github.com/gorilla/mux"
    "github.com/shopspring/decimal"

    "goldcalc/internal/config"
    "goldcalc/internal/format"
    "goldcalc/internal/history"
    "goldcalc/internal/provider"
    "goldcalc/internal/provider/fallback"
    "goldcalc/internal/store"
    "goldcalc/internal/valuation"
)

type handlers struct {
    source *fallback.Source
    store  *store.FileStore
    cfg    config.Config
}

func newRouter(h *handlers) *mux.Router {
    r := mux.NewRouter()
    r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
    r.HandleFunc("/api/price", h.price).Methods(http.MethodGet)
    r.HandleFunc("/api/price/history", h.priceHistory).Methods(http.MethodGet)
    r.HandleFunc("/api/calculate", h.calculate).Methods(http.MethodPost)
    r.HandleFunc("/api/convert", h.convert).Methods(http.MethodPost)
    r.HandleFunc("/api/calculations", h.listCalculations).Methods(http.MethodGet)
    r.HandleFunc("/api/calculations", h.saveCalculation).Methods(http.MethodPost)
    r.HandleFunc("/api/calculations/{id}", h.deleteCalculation).Methods(http.MethodDelete)
    r.HandleFunc("/api/share", h.share).Methods(http.MethodPost)
    return r
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write([]byte("ok"))
}

func (h *handlers) price(w http.ResponseWriter, r *http.Request) {
    res := h.source.Current(r.Context())
    respondJSON(w, http.StatusOK, res)
}

type historyResponse struct {
    Days   int             `json:"days"`
    Points []history.Point `json:"points"`
}

func (h *handlers) priceHistory(w http.ResponseWriter, r *http.Request) {
    days := h.cfg.History.DefaultDays
    if v := r.URL.Query().Get("days"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil {
            http.Error(w, "days must be an integer", http.StatusBadRequest)
            return
        }
        days = n
    }
    if days < 1 { days = 1 }
    if days > h.cfg.History.MaxDays { days = h.cfg.History.MaxDays }

    res := h.source.Current(r.Context())
    points := history.Series(res.Quote.Price, days, time.Now(), nil)
    respondJSON(w, http.StatusOK, historyResponse{Days: days, Points: points})
}

type calculateRequest struct {
    Weight       decimal.Decimal  `json:"weight"`
    Karat        int64            `json:"karat"`
    CustomPurity *decimal.Decimal `json:"custom_purity,omitempty"`
}

type calculateResponse struct {
    Weight        decimal.Decimal    `json:"weight"`
    PurityPercent decimal.Decimal    `json:"purity_percent"`
    Price         decimal.Decimal    `json:"price"`
    TotalValue    decimal.Decimal    `json:"total_value"`
    TotalValueUSD *decimal.Decimal   `json:"total_value_usd,omitempty"`
    Freshness     provider.Freshness `json:"freshness"`
    Reason        string             `json:"reason,omitempty"`
    Warnings      []string           `json:"warnings,omitempty"`
}

func (h *handlers) calculate(w http.ResponseWriter, r *http.Request) {
    var req calculateRequest
    if !decodeBody(w, r, &req) { return }

    var warnings []string
    maxWeight, err := decimal.NewFromString(h.cfg.Limits.MaxWeightGrams)
    if err != nil { maxWeight = decimal.NewFromInt(10000) }
    weight := req.Weight
    if weight.GreaterThan(maxWeight) {
        weight = maxWeight
        warnings = append(warnings, "weight clamped to "+maxWeight.String()+" grams")
    }
    if weight.IsNegative() {
        weight = decimal.Zero
        warnings = append(warnings, "negative weight treated as zero")
    }

    var percent decimal.Decimal
    if req.CustomPurity != nil {
        p := *req.CustomPurity
        clamped := valuation.Clamp(p, decimal.NewFromInt(1), decimal.NewFromInt(100))
        if !clamped.Equal(p) {
            warnings = append(warnings, "purity clamped to 1-100 percent")
        }
        percent = clamped
    } else {
        percent = valuation.KaratPercent(req.Karat)
    }

    res := h.source.Current(r.Context())
    total := valuation.TotalValue(weight, percent, res.Quote.Price)

    resp := calculateResponse{
        Weight:        weight,
        PurityPercent: percent,
        Price:         res.Quote.Price,
        TotalValue:    total,
        Freshness:     res.Freshness,
        Reason:        res.Reason,
        Warnings:      warnings,
    }
    if res.Quote.Prices.USD != nil {
        usd := valuation.ConvertCurrency(total, *res.Quote.Prices.USD)
        resp.TotalValueUSD = &usd
    }
    respondJSON(w, http.StatusOK, resp)
}

type convertRequest struct {
    Weight decimal.Decimal `json:"weight"`
    Carat  decimal.Decimal `json:"carat"`
}

type convertResponse struct {
    Weight24K  decimal.Decimal `json:"weight_24k"`
    Weight18K  decimal.Decimal `json:"weight_18k"`
    Value24K   decimal.Decimal `json:"value_24k"`
    Freshness  provider.Freshness `json:"freshness"`
    Warnings   []string        `json:"warnings,omitempty"`
}

func (h *handlers) convert(w http.ResponseWriter, r *http.Request) {
    var req convertRequest
    if !decodeBody(w, r, &req) { return }

    var warnings []string
    maxCarat, err := decimal.NewFromString(h.cfg.Limits.MaxCarat)
    if err != nil { maxCarat = decimal.NewFromInt(1000) }
    carat := req.Carat
    if carat.GreaterThan(maxCarat) {
        carat = maxCarat
        warnings = append(warnings, "carat clamped to "+maxCarat.String())
    }

    weights := valuation.CaratToWeights(req.Weight, carat)
    res := h.source.Current(r.Context())
    value := weights.Weight24K.Mul(res.Quote.Prices.Gold24K).Round(0)

    respondJSON(w, http.StatusOK, convertResponse{
        Weight24K: weights.Weight24K,
        Weight18K: weights.Weight18K,
        Value24K:  value,
        Freshness: res.Freshness,
        Warnings:  warnings,
    })
}

func (h *handlers) listCalculations(w http.ResponseWriter, r *http.Request) {
    list := h.store.Calculations()
    sort.Slice(list, func(i, j int) bool { return list[i].Timestamp > list[j].Timestamp })
    respondJSON(w, http.StatusOK, map[string][]store.Calculation{"calculations": list})
}

type saveCalculationRequest struct {
    Weight     decimal.Decimal `json:"weight"`
    Purity     decimal.Decimal `json:"purity"`
    Price      decimal.Decimal `json:"price"`
    TotalValue decimal.Decimal `json:"totalValue"`
}

func (h *handlers) saveCalculation(w http.ResponseWriter, r *http.Request) {
    var req saveCalculationRequest
    if !decodeBody(w, r, &req) { return }
    if !req.Weight.IsPositive() || !req.Price.IsPositive() {
        http.Error(w, "weight and price must be positive", http.StatusBadRequest)
        return
    }
    saved, err := h.store.SaveCalculation(store.Calculation{
        Weight:     req.Weight,
        Purity:     req.Purity,
        Price:      req.Price,
        TotalValue: req.TotalValue,
    })
    if err != nil {
        log.Printf("save calculation: %v", err)
        http.Error(w, "could not persist calculation", http.StatusInternalServerError)
        return
    }
    respondJSON(w, http.StatusCreated, saved)
}

func (h *handlers) deleteCalculation(w http.ResponseWriter, r *http.Request) {
    id := mux.Vars(r)["id"]
    removed, err := h.store.DeleteCalculation(id)
    if err != nil {
        log.Printf("delete calculation %s: %v", id, err)
        http.Error(w, "could not persist deletion", http.StatusInternalServerError)
        return
    }
    if !removed {
        http.Error(w, "calculation not found", http.StatusNotFound)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

type shareRequest struct {
    Weight        decimal.Decimal `json:"weight"`
    PurityPercent decimal.Decimal `json:"purity_percent"`
    Price         decimal.Decimal `json:"price"`
    TotalValue    decimal.Decimal `json:"total_value"`
}

func (h *handlers) share(w http.ResponseWriter, r *http.Request) {
    var req shareRequest
    if !decodeBody(w, r, &req) { return }
    text := format.ShareText(req.Weight, req.PurityPercent, req.Price, req.TotalValue)
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write([]byte(text))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(v); err != nil {
        http.Error(w, "invalid JSON body", http.StatusBadRequest)
        return false
    }
    return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json; charset=utf-8")
    w.WriteHeader(status)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}
