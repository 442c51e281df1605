// internal/infrastructure/persistence/postgres/models/news.go
package models

import (
	"strings"
	"time"

	"crypto-signal-trading-bot/internal/types"
)

// NewsItem — строка таблицы news_items.
// Связанные валюты хранятся одной строкой через запятую.
type NewsItem struct {
	ID             int64     `db:"id"`
	Timestamp      time.Time `db:"timestamp"`
	Source         string    `db:"source"`
	Headline       string    `db:"headline"`
	Snippet        string    `db:"snippet"`
	URL            string    `db:"url"`
	SentimentScore float64   `db:"sentiment_score"`
	SentimentLabel string    `db:"sentiment_label"`
	RelatedCoins   string    `db:"related_coins"`
	CreatedAt      time.Time `db:"created_at"`
}

// FromNewsItem конвертирует доменную новость в модель хранения
func FromNewsItem(n types.NewsItem) NewsItem {
	return NewsItem{
		Timestamp:      n.Timestamp,
		Source:         n.Source,
		Headline:       n.Headline,
		Snippet:        n.Snippet,
		URL:            n.URL,
		SentimentScore: n.SentimentScore,
		SentimentLabel: n.SentimentLabel,
		RelatedCoins:   strings.Join(n.RelatedCoins, ","),
	}
}

// ToNewsItem конвертирует модель хранения обратно в доменную новость
func (m NewsItem) ToNewsItem() types.NewsItem {
	var coins []string
	if m.RelatedCoins != "" {
		for _, part := range strings.Split(m.RelatedCoins, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				coins = append(coins, trimmed)
			}
		}
	}

	return types.NewsItem{
		Timestamp:      m.Timestamp,
		Source:         m.Source,
		Headline:       m.Headline,
		Snippet:        m.Snippet,
		URL:            m.URL,
		SentimentScore: m.SentimentScore,
		SentimentLabel: m.SentimentLabel,
		RelatedCoins:   coins,
	}
}
