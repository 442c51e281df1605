package market

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestToExchangeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BTC/USDT", "BTCUSDT"},
		{"eth/usdt", "ETHUSDT"},
		{"SOLUSDT", "SOLUSDT"},
	}
	for _, tt := range tests {
		if got := toExchangeSymbol(tt.in); got != tt.want {
			t.Fatalf("toExchangeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToExchangeInterval(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1m", "1"},
		{"15m", "15"},
		{"1h", "60"},
		{"4h", "240"},
		{"1d", "D"},
		{"unknown", "60"},
	}
	for _, tt := range tests {
		if got := toExchangeInterval(tt.in); got != tt.want {
			t.Fatalf("toExchangeInterval(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseKlineRow(t *testing.T) {
	candle, err := parseKlineRow("BTC/USDT", []string{"1767225600000", "100", "110", "90", "105", "1234.5", "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candle.Symbol != "BTC/USDT" || candle.Open != 100 || candle.Close != 105 || candle.Volume != 1234.5 {
		t.Fatalf("unexpected candle: %+v", candle)
	}
	if candle.Timestamp != time.UnixMilli(1767225600000).UTC() {
		t.Fatalf("unexpected timestamp: %v", candle.Timestamp)
	}

	if _, err := parseKlineRow("BTC/USDT", []string{"1767225600000", "100"}); err == nil {
		t.Fatalf("expected error for short row")
	}
	if _, err := parseKlineRow("BTC/USDT", []string{"x", "100", "110", "90", "105", "1"}); err == nil {
		t.Fatalf("expected error for bad timestamp")
	}
}

func TestFetchCandlesSortsAndSkipsBadRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/kline" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			t.Fatalf("unexpected symbol %s", r.URL.Query().Get("symbol"))
		}
		// Новые вперёд, одна строка битая
		fmt.Fprint(w, `{"retCode":0,"retMsg":"OK","result":{"symbol":"BTCUSDT","list":[
			["2000","101","102","100","101","10","0"],
			["bad","x","x","x","x","x","0"],
			["1000","100","101","99","100","10","0"]
		]}}`)
	}))
	defer server.Close()

	fetcher := NewBybitFetcher(server.URL, "spot", time.Second)
	candles, err := fetcher.FetchCandles("BTC/USDT", "1h", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles after skipping bad row, got %d", len(candles))
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Fatalf("candles must be sorted ascending")
	}
}

func TestFetchCandlesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retCode":10001,"retMsg":"params error","result":{}}`)
	}))
	defer server.Close()

	fetcher := NewBybitFetcher(server.URL, "spot", time.Second)
	if _, err := fetcher.FetchCandles("BTC/USDT", "1h", 200); err == nil {
		t.Fatalf("expected error for non-zero retCode")
	}
}

func TestFetchPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"retCode":0,"retMsg":"OK","result":{"list":[
			{"symbol":"BTCUSDT","lastPrice":"50000.5"},
			{"symbol":"ETHUSDT","lastPrice":"3000"},
			{"symbol":"XRPUSDT","lastPrice":"2"}
		]}}`)
	}))
	defer server.Close()

	fetcher := NewBybitFetcher(server.URL, "spot", time.Second)
	prices, err := fetcher.FetchPrices([]string{"BTC/USDT", "ETH/USDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected prices only for requested symbols, got %v", prices)
	}
	if prices["BTC/USDT"] != 50000.5 || prices["ETH/USDT"] != 3000 {
		t.Fatalf("unexpected prices: %v", prices)
	}
}

func TestFromExchangeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BTCUSDT", "BTC/USDT"},
		{"SHIBUSDT", "SHIB/USDT"},
		{"BTCEUR", "BTCEUR"},
	}
	for _, tt := range tests {
		if got := fromExchangeSymbol(tt.in); got != tt.want {
			t.Fatalf("fromExchangeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
