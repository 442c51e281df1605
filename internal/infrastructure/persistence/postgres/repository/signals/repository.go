// internal/infrastructure/persistence/postgres/repository/signals/repository.go
package signals_repo

import (
	"fmt"

	"crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/models"
	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

type signalRepoImpl struct {
	db *sqlx.DB
}

// NewSignalRepository создаёт реализацию SignalRepository
func NewSignalRepository(db *sqlx.DB) SignalRepository {
	return &signalRepoImpl{db: db}
}

// Store сохраняет пакет сигналов одной транзакцией
func (r *signalRepoImpl) Store(signals []types.FusedSignal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("SignalRepo.Store: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO trading_signals
			(id, timestamp, symbol, signal, price, technical_score, indicators, confidence,
			 sentiment_score, take_profit, stop_loss, pattern, trade_status, expiry_time)
		VALUES
			(:id, :timestamp, :symbol, :signal, :price, :technical_score, :indicators, :confidence,
			 :sentiment_score, :take_profit, :stop_loss, :pattern, :trade_status, :expiry_time)
	`
	for _, signal := range signals {
		if _, err := tx.NamedExec(query, models.FromFusedSignal(signal)); err != nil {
			return fmt.Errorf("SignalRepo.Store: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SignalRepo.Store: %w", err)
	}

	logger.Info("💾 Сохранено сигналов в БД: %d", len(signals))
	return nil
}

// QueryRecent возвращает последние сигналы, новые первыми
func (r *signalRepoImpl) QueryRecent(limit int) ([]types.FusedSignal, error) {
	query := `
		SELECT id, timestamp, symbol, signal, price, technical_score, indicators, confidence,
		       sentiment_score, take_profit, stop_loss, pattern, trade_status, expiry_time, created_at
		FROM trading_signals
		ORDER BY timestamp DESC
		LIMIT $1
	`
	var rows []models.TradingSignal
	if err := r.db.Select(&rows, query, limit); err != nil {
		return nil, fmt.Errorf("SignalRepo.QueryRecent: %w", err)
	}

	result := make([]types.FusedSignal, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ToFusedSignal())
	}
	return result, nil
}
