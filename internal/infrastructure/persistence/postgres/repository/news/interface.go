// internal/infrastructure/persistence/postgres/repository/news/interface.go
package news_repo

import "crypto-signal-trading-bot/internal/types"

// NewsRepository — хранилище новостей с оценкой сентимента
type NewsRepository interface {
	Store(items []types.NewsItem) error
	QueryRecent(hours int) ([]types.NewsItem, error)
}
