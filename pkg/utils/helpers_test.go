package utils

import (
	"testing"
	"time"
)

func TestSplitSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		base   string
		quote  string
	}{
		{"BTC/USDT", "BTC", "USDT"},
		{"eth/usdt", "ETH", "USDT"},
		{" sol / usdt ", "SOL", "USDT"},
		{"BTC", "BTC", "USDT"},
	}

	for _, tt := range tests {
		base, quote := SplitSymbol(tt.symbol)
		if base != tt.base || quote != tt.quote {
			t.Fatalf("SplitSymbol(%q) = %s/%s, want %s/%s", tt.symbol, base, quote, tt.base, tt.quote)
		}
	}
}

func TestBaseCurrency(t *testing.T) {
	if got := BaseCurrency("BTC/USDT"); got != "BTC" {
		t.Fatalf("BaseCurrency = %q, want BTC", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Minute, "1ч 30м"},
		{45 * time.Minute, "45м"},
		{25 * time.Hour, "25ч 0м"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(1.5); got != "+1.50%" {
		t.Fatalf("positive percent = %q", got)
	}
	if got := FormatPercent(-1.5); got != "-1.50%" {
		t.Fatalf("negative percent = %q", got)
	}
	if got := FormatPercent(0); got != "0.00%" {
		t.Fatalf("zero percent = %q", got)
	}
}
