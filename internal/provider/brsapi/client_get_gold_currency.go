package brsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Feed entry names used for lookup. The upstream keys rows by their Persian
// display names, so a rename upstream breaks the lookup; that is why the
// required-entry miss is an explicit error instead of a silent zero.
const (
	Name24KGram  = "گرم طلای 24 عیار"
	Name18KGram  = "گرم طلای 18 عیار"
	NameUSDollar = "دلار"
)

// ErrNo24KEntry reports that the feed did not contain the required
// 24-karat-per-gram entry.
var ErrNo24KEntry = errors.New("no 24k gram entry in feed")

// Entry is one named price row in the feed. Unknown row fields (change
// values, timestamps) are ignored.
type Entry struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// Feed is the decoded shape of Api_Free_Gold_Currency.json.
type Feed struct {
	Gold     []Entry `json:"gold"`
	Currency []Entry `json:"currency"`
}

// Find returns the first entry with the given name.
func Find(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// FetchGoldCurrency retrieves the current gold/currency feed.
func (c *Client) FetchGoldCurrency(ctx context.Context, opts ...ClientOption) (Feed, error) {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
	}
	for _, opt := range opts {
		opt(override)
	}

	url := fmt.Sprintf("%s/Api_Free_Gold_Currency.json", override.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Feed{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return Feed{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusTooManyRequests:
		return Feed{}, fmt.Errorf("rate limited")

	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return Feed{}, fmt.Errorf("unexpected status code: %d: %s", res.StatusCode, string(b))
	}

	var feed Feed
	if err := json.NewDecoder(res.Body).Decode(&feed); err != nil {
		return Feed{}, fmt.Errorf("decoding feed response: %w", err)
	}
	if len(feed.Gold) == 0 && len(feed.Currency) == 0 {
		return Feed{}, fmt.Errorf("empty feed response")
	}
	return feed, nil
}
