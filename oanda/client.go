// Package oanda is a pricing.QuoteSource over the OANDA v3 REST API.
package oanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/stockwatch/pricing"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"
)

// Granularity is the candle time frame.
type Granularity string

const (
	S5  Granularity = "S5"
	S30 Granularity = "S30"
	M1  Granularity = "M1"
	M5  Granularity = "M5"
	M15 Granularity = "M15"
	H1  Granularity = "H1"
	D   Granularity = "D"
)

var granularities = map[Granularity]struct{}{
	S5: {}, S30: {}, M1: {}, M5: {}, M15: {}, H1: {}, D: {},
}

// ParseGranularity accepts one of the supported candle time frames,
// case-insensitively. An empty string means M1.
func ParseGranularity(s string) (Granularity, error) {
	if s == "" {
		return M1, nil
	}
	g := Granularity(strings.ToUpper(s))
	if _, ok := granularities[g]; !ok {
		return "", fmt.Errorf("unsupported granularity %q", s)
	}
	return g, nil
}

// MaxCandles is the most candles OANDA returns per request.
const MaxCandles = 5000

// Client represents an OANDA API client
type Client struct {
	baseURL     string
	token       string
	accountID   string
	seriesCount int
	granularity Granularity
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. LiveURL or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithSeries makes Fetch also load the last n candle closes as the quote's
// series. Zero disables it.
func WithSeries(n int) Option {
	return func(c *Client) { c.seriesCount = n }
}

// WithGranularity sets the candle time frame of the series. The default is M1.
func WithGranularity(g Granularity) Option {
	return func(c *Client) {
		if g != "" {
			c.granularity = g
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client against the practice environment.
func NewClient(token, accountID string, opts ...Option) *Client {
	c := &Client{
		baseURL:     PracticeURL,
		token:       token,
		accountID:   accountID,
		granularity: M1,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type priceBucket struct {
	Price string `json:"price"`
}

type clientPrice struct {
	Instrument string        `json:"instrument"`
	Time       string        `json:"time"`
	Tradeable  bool          `json:"tradeable"`
	Bids       []priceBucket `json:"bids"`
	Asks       []priceBucket `json:"asks"`
}

type pricingResponse struct {
	Prices []clientPrice `json:"prices"`
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool       `json:"complete"`
	Volume   int        `json:"volume"`
	Time     string     `json:"time"`
	Mid      candleData `json:"mid,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// Fetch implements pricing.QuoteSource. The price is the mid of the best bid
// and ask. A series failure is returned as an error for the whole quote so
// the cache never pairs a fresh price with a stale series.
func (c *Client) Fetch(ctx context.Context, symbol string) (pricing.Quote, error) {
	q, err := c.LatestPrice(ctx, symbol)
	if err != nil {
		return pricing.Quote{}, err
	}
	if c.seriesCount > 0 {
		series, err := c.Closes(ctx, symbol, c.granularity, c.seriesCount)
		if err != nil {
			return pricing.Quote{}, err
		}
		q.Series = series
	}
	return q, nil
}

// LatestPrice returns the current mid price for one instrument.
func (c *Client) LatestPrice(ctx context.Context, instrument string) (pricing.Quote, error) {
	if c.accountID == "" {
		return pricing.Quote{}, fmt.Errorf("oanda: missing account id")
	}

	params := url.Values{}
	params.Set("instruments", instrument)
	apiURL := fmt.Sprintf("%s/v3/accounts/%s/pricing?%s", c.baseURL, url.PathEscape(c.accountID), params.Encode())

	var resp pricingResponse
	if err := c.get(ctx, apiURL, &resp); err != nil {
		return pricing.Quote{}, err
	}

	for _, p := range resp.Prices {
		if p.Instrument != instrument {
			continue
		}
		if len(p.Bids) == 0 || len(p.Asks) == 0 {
			return pricing.Quote{}, fmt.Errorf("oanda %s: empty book", instrument)
		}
		bid, err := decimal.NewFromString(p.Bids[0].Price)
		if err != nil {
			return pricing.Quote{}, fmt.Errorf("parse bid %q: %w", p.Bids[0].Price, err)
		}
		ask, err := decimal.NewFromString(p.Asks[0].Price)
		if err != nil {
			return pricing.Quote{}, fmt.Errorf("parse ask %q: %w", p.Asks[0].Price, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, p.Time)
		if err != nil {
			return pricing.Quote{}, fmt.Errorf("parse time %s: %w", p.Time, err)
		}
		mid := bid.Add(ask).Div(decimal.NewFromInt(2))
		return pricing.Quote{Symbol: instrument, Price: mid.InexactFloat64(), Time: ts.UTC()}, nil
	}
	return pricing.Quote{}, fmt.Errorf("oanda %s: %w", instrument, pricing.ErrUnknownSymbol)
}

// Closes returns the close of the last count complete mid candles, oldest first.
func (c *Client) Closes(ctx context.Context, instrument string, g Granularity, count int) ([]pricing.Sample, error) {
	if instrument == "" {
		return nil, fmt.Errorf("instrument is required")
	}
	if count <= 0 || count > MaxCandles {
		return nil, fmt.Errorf("count must be between 1 and %d", MaxCandles)
	}
	if g == "" {
		g = M1
	}

	params := url.Values{}
	params.Set("price", "M")
	params.Set("granularity", string(g))
	params.Set("count", strconv.Itoa(count))
	apiURL := fmt.Sprintf("%s/v3/instruments/%s/candles?%s", c.baseURL, url.PathEscape(instrument), params.Encode())

	var resp candlesResponse
	if err := c.get(ctx, apiURL, &resp); err != nil {
		return nil, err
	}

	out := make([]pricing.Sample, 0, len(resp.Candles))
	for _, ac := range resp.Candles {
		// Skip incomplete candles
		if !ac.Complete {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("parse time %s: %w", ac.Time, err)
		}
		closePx, err := decimal.NewFromString(ac.Mid.C)
		if err != nil {
			return nil, fmt.Errorf("parse close price: %w", err)
		}
		out = append(out, pricing.Sample{Time: t.UTC(), Price: closePx.InexactFloat64()})
	}
	return out, nil
}

// APIError is a non-200 answer from OANDA.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

func (c *Client) get(ctx context.Context, apiURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept-Datetime-Format", "RFC3339")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var msg struct {
			ErrorMessage string `json:"errorMessage"`
		}
		if json.Unmarshal(body, &msg) == nil && msg.ErrorMessage != "" {
			apiErr.Message = msg.ErrorMessage
		}
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", pricing.ErrUnknownSymbol, apiErr)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsAuthError reports whether err is an OANDA 401/403.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

var _ pricing.QuoteSource = (*Client)(nil)
