package sentiment

import (
	"math"
	"testing"

	"crypto-signal-trading-bot/internal/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  float64
	}{
		{"empty input", "", "", 0},
		{"no keywords", "Exchange lists new token", "trading opens tomorrow", 0},
		{"all positive", "bullish rally", "", 1},
		{"all negative", "", "crash scam", -1},
		{"balanced", "", "bullish crash", 0},
		// Заголовок считается дважды: 2 позитивных против 1 негативного
		{"title doubled", "bullish", "crash", 1.0 / 3.0},
		{"case insensitive", "BULLISH Rally", "", 1},
	}

	for _, tt := range tests {
		got := Score(tt.title, tt.body)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("%s: Score(%q, %q) = %.4f, want %.4f", tt.name, tt.title, tt.body, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1, "positive"},
		{0.6, "positive"},
		{0.59, "slightly positive"},
		{0.2, "slightly positive"},
		{0.19, "neutral"},
		{0, "neutral"},
		{-0.2, "neutral"},
		{-0.21, "slightly negative"},
		{-0.6, "slightly negative"},
		{-0.61, "negative"},
		{-1, "negative"},
	}

	for _, tt := range tests {
		if got := Label(tt.score); got != tt.want {
			t.Fatalf("Label(%.2f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestAggregateByCurrency(t *testing.T) {
	items := []types.NewsItem{
		{SentimentScore: 1, RelatedCoins: []string{"BTC"}},
		{SentimentScore: 0, RelatedCoins: []string{"btc", "ETH"}},
		{SentimentScore: -1, RelatedCoins: []string{" eth ", ""}},
	}

	averages := AggregateByCurrency(items)
	if len(averages) != 2 {
		t.Fatalf("expected 2 currencies, got %v", averages)
	}
	if math.Abs(averages["BTC"]-0.5) > 1e-9 {
		t.Fatalf("BTC average = %.4f, want 0.5", averages["BTC"])
	}
	if math.Abs(averages["ETH"]+0.5) > 1e-9 {
		t.Fatalf("ETH average = %.4f, want -0.5", averages["ETH"])
	}
}

func TestAggregateByCurrencyEmpty(t *testing.T) {
	if averages := AggregateByCurrency(nil); len(averages) != 0 {
		t.Fatalf("expected empty map, got %v", averages)
	}
}
