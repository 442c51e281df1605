// internal/infrastructure/persistence/postgres/repository/signals/interface.go
package signals_repo

import "crypto-signal-trading-bot/internal/types"

// SignalRepository — хранилище итоговых торговых сигналов
type SignalRepository interface {
	Store(signals []types.FusedSignal) error
	QueryRecent(limit int) ([]types.FusedSignal, error)
}
