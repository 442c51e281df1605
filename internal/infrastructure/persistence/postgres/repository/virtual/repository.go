// internal/infrastructure/persistence/postgres/repository/virtual/repository.go
package virtual_repo

import (
	"fmt"

	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// Repository — Postgres-зеркало виртуального счёта.
// Реализует virtual.Storage: ордера и сделки append-only, балансы
// хранятся снапшотом с заменой (последний снапшот побеждает).
type Repository struct {
	db *sqlx.DB
}

// NewVirtualRepository создаёт Postgres-зеркало виртуального счёта
func NewVirtualRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// StoreBalances заменяет снапшот балансов на переданный
func (r *Repository) StoreBalances(records []types.BalanceRecord) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("VirtualRepo.StoreBalances: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM virtual_balances`); err != nil {
		return fmt.Errorf("VirtualRepo.StoreBalances: %w", err)
	}

	query := `
		INSERT INTO virtual_balances (timestamp, currency, amount)
		VALUES (:timestamp, :currency, :amount)
	`
	for _, record := range records {
		if _, err := tx.NamedExec(query, record); err != nil {
			return fmt.Errorf("VirtualRepo.StoreBalances: %w", err)
		}
	}

	return tx.Commit()
}

// StoreOrder добавляет ордер в историю
func (r *Repository) StoreOrder(order types.Order) error {
	query := `
		INSERT INTO virtual_orders (id, timestamp, symbol, type, amount, price, status, cost, fee)
		VALUES (:id, :timestamp, :symbol, :type, :amount, :price, :status, :cost, :fee)
	`
	if _, err := r.db.NamedExec(query, order); err != nil {
		return fmt.Errorf("VirtualRepo.StoreOrder: %w", err)
	}
	return nil
}

// StoreTrade добавляет сделку в историю
func (r *Repository) StoreTrade(trade types.Trade) error {
	query := `
		INSERT INTO virtual_trades (id, order_id, timestamp, symbol, type, amount, price, cost, fee)
		VALUES (:id, :order_id, :timestamp, :symbol, :type, :amount, :price, :cost, :fee)
	`
	if _, err := r.db.NamedExec(query, trade); err != nil {
		return fmt.Errorf("VirtualRepo.StoreTrade: %w", err)
	}
	return nil
}

// QueryBalances возвращает текущий снапшот балансов
func (r *Repository) QueryBalances() ([]types.BalanceRecord, error) {
	query := `SELECT timestamp, currency, amount FROM virtual_balances`

	var records []types.BalanceRecord
	if err := r.db.Select(&records, query); err != nil {
		return nil, fmt.Errorf("VirtualRepo.QueryBalances: %w", err)
	}
	return records, nil
}

// QueryOrders возвращает ордера, новые первыми. limit <= 0 — без ограничения.
func (r *Repository) QueryOrders(limit int) ([]types.Order, error) {
	query := `
		SELECT id, timestamp, symbol, type, amount, price, status, cost, fee
		FROM virtual_orders
		ORDER BY timestamp DESC
	`
	var orders []types.Order
	var err error
	if limit > 0 {
		err = r.db.Select(&orders, query+` LIMIT $1`, limit)
	} else {
		err = r.db.Select(&orders, query)
	}
	if err != nil {
		return nil, fmt.Errorf("VirtualRepo.QueryOrders: %w", err)
	}
	return orders, nil
}

// QueryTrades возвращает сделки, новые первыми. limit <= 0 — без ограничения.
func (r *Repository) QueryTrades(limit int) ([]types.Trade, error) {
	query := `
		SELECT id, order_id, timestamp, symbol, type, amount, price, cost, fee
		FROM virtual_trades
		ORDER BY timestamp DESC
	`
	var trades []types.Trade
	var err error
	if limit > 0 {
		err = r.db.Select(&trades, query+` LIMIT $1`, limit)
	} else {
		err = r.db.Select(&trades, query)
	}
	if err != nil {
		return nil, fmt.Errorf("VirtualRepo.QueryTrades: %w", err)
	}
	return trades, nil
}

// ClearVirtualTradingData атомарно удаляет все данные виртуального счёта
func (r *Repository) ClearVirtualTradingData() error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("VirtualRepo.Clear: %w", err)
	}
	defer tx.Rollback()

	// Сначала сделки: они ссылаются на ордера
	for _, table := range []string{"virtual_trades", "virtual_orders", "virtual_balances"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("VirtualRepo.Clear: %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("VirtualRepo.Clear: %w", err)
	}

	logger.Info("🗑️ Данные виртуального счёта очищены")
	return nil
}
