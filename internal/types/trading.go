// internal/types/trading.go
package types

import "time"

// Статус ордера. Виртуальные ордера исполняются синхронно,
// поэтому состояние всегда одно.
const OrderStatusExecuted = "EXECUTED"

// Order — виртуальный ордер. Создаётся один раз и не изменяется.
type Order struct {
	ID        string    `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Symbol    string    `json:"symbol" db:"symbol"`
	Type      string    `json:"type" db:"type"`
	Amount    float64   `json:"amount" db:"amount"`
	Price     float64   `json:"price" db:"price"`
	Status    string    `json:"status" db:"status"`
	Cost      float64   `json:"cost" db:"cost"`
	Fee       float64   `json:"fee" db:"fee"`
}

// Trade — сделка, созданная при исполнении ордера. Ровно одна на ордер.
type Trade struct {
	ID        string    `json:"id" db:"id"`
	OrderID   string    `json:"order_id" db:"order_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Symbol    string    `json:"symbol" db:"symbol"`
	Type      string    `json:"type" db:"type"`
	Amount    float64   `json:"amount" db:"amount"`
	Price     float64   `json:"price" db:"price"`
	Cost      float64   `json:"cost" db:"cost"`
	Fee       float64   `json:"fee" db:"fee"`
}

// OrderResult — структурированный результат размещения ордера.
// Ошибки валидации и нехватки баланса возвращаются здесь, не как error.
type OrderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}

// Holding — одна позиция портфеля в не-USDT валюте
type Holding struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
}

// PortfolioValue — оценка портфеля по текущим ценам
type PortfolioValue struct {
	TotalValue    float64   `json:"total_value"`
	Holdings      []Holding `json:"holdings"`
	USDTBalance   float64   `json:"usdt_balance"`
	ProfitLoss    float64   `json:"profit_loss"`
	ProfitLossPct float64   `json:"profit_loss_pct"`
	InitialValue  float64   `json:"initial_value"`
}

// BalanceRecord — строка снапшота балансов для зеркала в хранилище
type BalanceRecord struct {
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Currency  string    `json:"currency" db:"currency"`
	Amount    float64   `json:"amount" db:"amount"`
}
