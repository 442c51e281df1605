// internal/infrastructure/persistence/postgres/repository/market/repository.go
package market_repo

import (
	"fmt"

	"crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/models"
	"crypto-signal-trading-bot/internal/types"

	"github.com/jmoiron/sqlx"
)

// MarketRepository — хранилище OHLCV-свечей
type MarketRepository interface {
	Store(candles []types.Candle, timeframe string) error
	QueryRecent(symbol, timeframe string, limit int) ([]types.Candle, error)
}

type marketRepoImpl struct {
	db *sqlx.DB
}

// NewMarketRepository создаёт реализацию MarketRepository
func NewMarketRepository(db *sqlx.DB) MarketRepository {
	return &marketRepoImpl{db: db}
}

// Store сохраняет свечи; уже сохранённые (символ+таймфрейм+время) пропускаются
func (r *marketRepoImpl) Store(candles []types.Candle, timeframe string) error {
	if len(candles) == 0 {
		return nil
	}

	query := `
		INSERT INTO market_data (timestamp, symbol, timeframe, open, high, low, close, volume)
		VALUES (:timestamp, :symbol, :timeframe, :open, :high, :low, :close, :volume)
		ON CONFLICT (symbol, timeframe, timestamp) DO NOTHING
	`
	for _, candle := range candles {
		if _, err := r.db.NamedExec(query, models.FromCandle(candle, timeframe)); err != nil {
			return fmt.Errorf("MarketRepo.Store: %w", err)
		}
	}
	return nil
}

// QueryRecent возвращает последние свечи символа по возрастанию времени
func (r *marketRepoImpl) QueryRecent(symbol, timeframe string, limit int) ([]types.Candle, error) {
	query := `
		SELECT * FROM (
			SELECT id, timestamp, symbol, timeframe, open, high, low, close, volume, created_at
			FROM market_data
			WHERE symbol = $1 AND timeframe = $2
			ORDER BY timestamp DESC
			LIMIT $3
		) recent
		ORDER BY timestamp ASC
	`
	var rows []models.MarketData
	if err := r.db.Select(&rows, query, symbol, timeframe, limit); err != nil {
		return nil, fmt.Errorf("MarketRepo.QueryRecent: %w", err)
	}

	candles := make([]types.Candle, 0, len(rows))
	for _, row := range rows {
		candles = append(candles, row.ToCandle())
	}
	return candles, nil
}
