// internal/analysis/sentiment/scorer.go
package sentiment

import (
	"strings"

	"crypto-signal-trading-bot/internal/types"
)

// Фиксированные наборы ключевых слов. Подсчёт вхождений подстрок,
// заголовок учитывается с двойным весом.
var positiveKeywords = []string{
	"bullish", "surge", "soar", "gain", "rally", "jump", "rise", "up", "high", "growth",
	"positive", "profit", "success", "win", "good", "strong", "boost", "improve", "recover",
	"breakthrough", "milestone", "partnership", "adoption", "launch", "upgrade",
}

var negativeKeywords = []string{
	"bearish", "crash", "plunge", "drop", "fall", "down", "low", "decline", "negative",
	"loss", "fail", "bad", "weak", "poor", "worse", "struggle", "problem", "issue",
	"concern", "risk", "threat", "hack", "scam", "fraud", "ban", "regulate", "investigation",
}

// Score оценивает сентимент текста по ключевым словам.
// Результат в [-1, 1]; 0.0 — нейтрально либо ни одного совпадения.
func Score(title, body string) float64 {
	if title == "" && body == "" {
		return 0.0
	}

	combined := body
	if title != "" {
		combined = title + " " + title + " " + body
	}
	combined = strings.ToLower(combined)

	positiveCount := 0
	for _, word := range positiveKeywords {
		positiveCount += strings.Count(combined, word)
	}

	negativeCount := 0
	for _, word := range negativeKeywords {
		negativeCount += strings.Count(combined, word)
	}

	total := positiveCount + negativeCount
	if total == 0 {
		return 0.0
	}

	return float64(positiveCount-negativeCount) / float64(total)
}

// Label возвращает текстовую метку сентимента. Границы включают
// нижнее значение и проверяются сверху вниз.
func Label(score float64) string {
	switch {
	case score >= 0.6:
		return "positive"
	case score >= 0.2:
		return "slightly positive"
	case score >= -0.2:
		return "neutral"
	case score >= -0.6:
		return "slightly negative"
	default:
		return "negative"
	}
}

// AggregateByCurrency считает средний сентимент по каждой валюте
// из related_coins всех новостей. Коды валют приводятся к верхнему регистру.
func AggregateByCurrency(items []types.NewsItem) map[string]float64 {
	scores := make(map[string][]float64)
	for _, item := range items {
		for _, coin := range item.RelatedCoins {
			code := strings.ToUpper(strings.TrimSpace(coin))
			if code == "" {
				continue
			}
			scores[code] = append(scores[code], item.SentimentScore)
		}
	}

	averages := make(map[string]float64, len(scores))
	for coin, values := range scores {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		averages[coin] = sum / float64(len(values))
	}
	return averages
}
