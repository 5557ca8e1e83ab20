package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client is the Binance-backed implementation of the Data port. It combines
// the spot REST API, the USD-M futures API and the P2P advert search, with an
// optional websocket ticker table consulted before any spot REST call.
type Client struct {
	spotHost    string
	futuresHost string
	p2pHost     string

	httpClient *http.Client
	logger     *zap.Logger

	ticker *Ticker
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, spotHost, futuresHost, p2pHost string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if spotHost == "" {
		spotHost = "https://api.binance.com"
	}
	if futuresHost == "" {
		futuresHost = "https://fapi.binance.com"
	}
	if p2pHost == "" {
		p2pHost = "https://p2p.binance.com"
	}
	return &Client{
		spotHost:    strings.TrimRight(spotHost, "/"),
		futuresHost: strings.TrimRight(futuresHost, "/"),
		p2pHost:     strings.TrimRight(p2pHost, "/"),
		httpClient:  httpClient,
		logger:      logger,
	}
}

// WithTicker attaches a streamed last-price table that SpotPrice consults
// before hitting REST.
func (c *Client) WithTicker(t *Ticker) *Client {
	c.ticker = t
	return c
}

func (c *Client) SpotPrice(ctx context.Context, symbol string) (float64, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, false
	}
	if c.ticker != nil {
		if p, ok := c.ticker.Price(symbol); ok {
			return p, true
		}
	}
	query := url.Values{"symbol": []string{symbol}}
	body, err := c.doGet(ctx, c.spotHost, "/api/v3/ticker/price", query)
	if err != nil {
		c.warn("spot price fetch failed", symbol, err)
		return 0, false
	}
	var parsed struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.warn("spot price decode failed", symbol, err)
		return 0, false
	}
	p, err := strconv.ParseFloat(parsed.Price, 64)
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}

func (c *Client) FundingRate(ctx context.Context, symbol string) (Funding, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Funding{}, false
	}
	query := url.Values{"symbol": []string{symbol}}
	body, err := c.doGet(ctx, c.futuresHost, "/fapi/v1/premiumIndex", query)
	if err != nil {
		c.warn("funding fetch failed", symbol, err)
		return Funding{}, false
	}
	var parsed struct {
		Symbol          string `json:"symbol"`
		MarkPrice       string `json:"markPrice"`
		LastFundingRate string `json:"lastFundingRate"`
		NextFundingTime int64  `json:"nextFundingTime"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.warn("funding decode failed", symbol, err)
		return Funding{}, false
	}
	mark, err := strconv.ParseFloat(parsed.MarkPrice, 64)
	if err != nil || mark <= 0 {
		return Funding{}, false
	}
	rate, err := strconv.ParseFloat(parsed.LastFundingRate, 64)
	if err != nil {
		return Funding{}, false
	}
	out := Funding{Rate: rate, MarkPrice: mark}
	if parsed.NextFundingTime > 0 {
		out.NextFundingTime = time.UnixMilli(parsed.NextFundingTime).UTC()
	}
	return out, true
}

func (c *Client) BestP2PPrice(ctx context.Context, asset, fiat string, side P2PSide) (float64, bool) {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	fiat = strings.ToUpper(strings.TrimSpace(fiat))
	if asset == "" || fiat == "" {
		return 0, false
	}
	reqBody := map[string]any{
		"asset":     asset,
		"fiat":      fiat,
		"tradeType": string(side),
		"page":      1,
		"rows":      1,
	}
	raw, _ := json.Marshal(reqBody)
	body, err := c.doPost(ctx, c.p2pHost, "/bapi/c2c/v2/friendly/c2c/adv/search", raw)
	if err != nil {
		c.warn("p2p fetch failed", asset+"/"+fiat, err)
		return 0, false
	}
	var parsed struct {
		Data []struct {
			Adv struct {
				Price string `json:"price"`
			} `json:"adv"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Data) == 0 {
		return 0, false
	}
	p, err := strconv.ParseFloat(parsed.Data[0].Adv.Price, 64)
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}

func (c *Client) HistoricalPrices(ctx context.Context, symbol string, days int) []float64 {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || days <= 0 {
		return nil
	}
	query := url.Values{
		"symbol":   []string{symbol},
		"interval": []string{"1d"},
		"limit":    []string{strconv.Itoa(days)},
	}
	body, err := c.doGet(ctx, c.spotHost, "/api/v3/klines", query)
	if err != nil {
		c.warn("klines fetch failed", symbol, err)
		return nil
	}
	// Kline rows are positional arrays; index 4 is the close, as a string.
	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		c.warn("klines decode failed", symbol, err)
		return nil
	}
	closes := make([]float64, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		s, ok := row[4].(string)
		if !ok {
			continue
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil || p <= 0 {
			continue
		}
		closes = append(closes, p)
	}
	return closes
}

func (c *Client) doGet(ctx context.Context, host, path string, query url.Values) ([]byte, error) {
	fullURL := host + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) doPost(ctx context.Context, host, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) warn(msg, subject string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, zap.String("subject", subject), zap.Error(err))
}
