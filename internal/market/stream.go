package market

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Ticker maintains a last-price table fed by the Binance mini-ticker stream.
// Prices older than MaxAge are not served, forcing callers back to REST.
type Ticker struct {
	URL    string
	MaxAge time.Duration
	Logger *zap.Logger

	mu     sync.RWMutex
	prices map[string]streamPrice
}

type streamPrice struct {
	price float64
	at    time.Time
}

// miniTicker is one element of the "!miniTicker@arr" payload.
type miniTicker struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

// Price returns the streamed last price for a symbol if fresh enough.
func (t *Ticker) Price(symbol string) (float64, bool) {
	maxAge := t.MaxAge
	if maxAge <= 0 {
		maxAge = 10 * time.Second
	}
	t.mu.RLock()
	entry, ok := t.prices[symbol]
	t.mu.RUnlock()
	if !ok || entry.price <= 0 {
		return 0, false
	}
	if time.Since(entry.at) > maxAge {
		return 0, false
	}
	return entry.price, true
}

// Run connects to the stream and keeps the table updated until ctx is done,
// reconnecting with a fixed backoff on any read or dial failure.
func (t *Ticker) Run(ctx context.Context) error {
	if t.URL == "" {
		return nil
	}
	backoff := 2 * time.Second
	for {
		if err := t.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if t.Logger != nil {
				t.Logger.Warn("ticker stream disconnected", zap.Error(err))
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func (t *Ticker) consume(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, t.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(1 << 22)

	if t.Logger != nil {
		t.Logger.Info("ticker stream connected", zap.String("url", t.URL))
	}
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		t.apply(data)
	}
}

func (t *Ticker) apply(data []byte) {
	var events []miniTicker
	if err := json.Unmarshal(data, &events); err != nil {
		// Single-object frames arrive on per-symbol streams.
		var one miniTicker
		if err := json.Unmarshal(data, &one); err != nil || one.Symbol == "" {
			return
		}
		events = []miniTicker{one}
	}
	now := time.Now().UTC()
	t.mu.Lock()
	if t.prices == nil {
		t.prices = map[string]streamPrice{}
	}
	for _, ev := range events {
		p, err := strconv.ParseFloat(ev.Close, 64)
		if err != nil || p <= 0 || ev.Symbol == "" {
			continue
		}
		t.prices[ev.Symbol] = streamPrice{price: p, at: now}
	}
	t.mu.Unlock()
}
