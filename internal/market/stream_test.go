package market

import (
	"testing"
	"time"
)

func TestTickerApplyArrayFrame(t *testing.T) {
	ticker := &Ticker{MaxAge: time.Minute}
	ticker.apply([]byte(`[{"s":"BTCUSDT","c":"50000.5"},{"s":"ETHUSDT","c":"3000"}]`))

	if p, ok := ticker.Price("BTCUSDT"); !ok || p != 50000.5 {
		t.Fatalf("BTCUSDT = %v/%v", p, ok)
	}
	if p, ok := ticker.Price("ETHUSDT"); !ok || p != 3000 {
		t.Fatalf("ETHUSDT = %v/%v", p, ok)
	}
	if _, ok := ticker.Price("XRPUSDT"); ok {
		t.Fatalf("unknown symbol should miss")
	}
}

func TestTickerApplySingleObjectFrame(t *testing.T) {
	ticker := &Ticker{MaxAge: time.Minute}
	ticker.apply([]byte(`{"s":"BTCUSDT","c":"42000"}`))
	if p, ok := ticker.Price("BTCUSDT"); !ok || p != 42000 {
		t.Fatalf("BTCUSDT = %v/%v", p, ok)
	}
}

func TestTickerIgnoresBadFrames(t *testing.T) {
	ticker := &Ticker{MaxAge: time.Minute}
	ticker.apply([]byte(`not json`))
	ticker.apply([]byte(`[{"s":"BTCUSDT","c":"zero"}]`))
	ticker.apply([]byte(`[{"s":"BTCUSDT","c":"-5"}]`))
	if _, ok := ticker.Price("BTCUSDT"); ok {
		t.Fatalf("bad frames must not populate the table")
	}
}

func TestTickerExpiresStalePrices(t *testing.T) {
	ticker := &Ticker{MaxAge: 10 * time.Millisecond}
	ticker.apply([]byte(`[{"s":"BTCUSDT","c":"50000"}]`))
	ticker.mu.Lock()
	entry := ticker.prices["BTCUSDT"]
	entry.at = time.Now().Add(-time.Second)
	ticker.prices["BTCUSDT"] = entry
	ticker.mu.Unlock()

	if _, ok := ticker.Price("BTCUSDT"); ok {
		t.Fatalf("stale price served")
	}
}
