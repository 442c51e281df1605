// internal/types/news.go
package types

import "time"

// NewsItem — новостной заголовок с оценкой сентимента.
// Дедупликация по URL, ряды отсортированы по времени по убыванию.
type NewsItem struct {
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
	Headline       string    `json:"headline"`
	Snippet        string    `json:"snippet"`
	URL            string    `json:"url"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
	RelatedCoins   []string  `json:"related_coins"`
}
