// internal/infrastructure/persistence/postgres/repository/news/repository.go
package news_repo

import (
	"fmt"

	"crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/models"
	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

type newsRepoImpl struct {
	db *sqlx.DB
}

// NewNewsRepository создаёт реализацию NewsRepository
func NewNewsRepository(db *sqlx.DB) NewsRepository {
	return &newsRepoImpl{db: db}
}

// Store сохраняет новости; дубликаты по URL игнорируются
func (r *newsRepoImpl) Store(items []types.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO news_items
			(timestamp, source, headline, snippet, url, sentiment_score, sentiment_label, related_coins)
		VALUES
			(:timestamp, :source, :headline, :snippet, :url, :sentiment_score, :sentiment_label, :related_coins)
		ON CONFLICT (url) DO NOTHING
	`
	for _, item := range items {
		if _, err := r.db.NamedExec(query, models.FromNewsItem(item)); err != nil {
			return fmt.Errorf("NewsRepo.Store: %w", err)
		}
	}

	logger.Info("💾 Сохранено новостей в БД: %d", len(items))
	return nil
}

// QueryRecent возвращает новости за последние hours часов, новые первыми
func (r *newsRepoImpl) QueryRecent(hours int) ([]types.NewsItem, error) {
	query := `
		SELECT id, timestamp, source, headline, snippet, url,
		       sentiment_score, sentiment_label, related_coins, created_at
		FROM news_items
		WHERE timestamp >= NOW() - make_interval(hours => $1)
		ORDER BY timestamp DESC
	`
	var rows []models.NewsItem
	if err := r.db.Select(&rows, query, hours); err != nil {
		return nil, fmt.Errorf("NewsRepo.QueryRecent: %w", err)
	}

	result := make([]types.NewsItem, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ToNewsItem())
	}
	return result, nil
}
