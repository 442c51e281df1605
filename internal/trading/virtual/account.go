// internal/trading/virtual/account.go
package virtual

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"
	"crypto-signal-trading-bot/pkg/utils"

	"github.com/google/uuid"
)

// Storage — зеркало состояния счёта во внешнем хранилище.
// Зеркало best-effort: ошибки записи логируются и не откатывают
// уже зафиксированные изменения в памяти.
type Storage interface {
	StoreBalances(records []types.BalanceRecord) error
	StoreOrder(order types.Order) error
	StoreTrade(trade types.Trade) error
	QueryBalances() ([]types.BalanceRecord, error)
	QueryOrders(limit int) ([]types.Order, error)
	QueryTrades(limit int) ([]types.Trade, error)
	ClearVirtualTradingData() error
}

// Лимит выборки истории по умолчанию
const defaultHistoryLimit = 50

// Account — виртуальный торговый счёт: балансы по валютам и неизменяемая
// история ордеров и сделок. Источник истины — память процесса; внешнее
// хранилище — лишь зеркало. Все операции потокобезопасны: проверка баланса
// и его изменение выполняются как одна критическая секция.
type Account struct {
	mu             sync.Mutex
	initialBalance float64
	feeRate        float64
	storage        Storage // nil — работа без зеркала

	balances     map[string]float64
	orderHistory []types.Order
	trades       []types.Trade

	now func() time.Time
}

// NewAccount создаёт счёт со стартовым балансом в USDT.
// Если передано хранилище, ранее сохранённое состояние загружается из него.
func NewAccount(initialBalance, feeRate float64, storage Storage) *Account {
	a := &Account{
		initialBalance: initialBalance,
		feeRate:        feeRate,
		storage:        storage,
		balances:       map[string]float64{"USDT": initialBalance},
		now:            time.Now,
	}
	a.loadAccountData()
	return a
}

// loadAccountData восстанавливает состояние счёта из зеркала.
// Любая ошибка загрузки не фатальна — счёт стартует с начальным балансом.
func (a *Account) loadAccountData() {
	if a.storage == nil {
		return
	}

	balances, err := a.storage.QueryBalances()
	if err != nil {
		logger.Error("❌ Не удалось загрузить балансы из хранилища: %v", err)
		return
	}
	if len(balances) > 0 {
		a.balances = make(map[string]float64, len(balances))
		for _, b := range balances {
			a.balances[b.Currency] = b.Amount
		}
	}

	if orders, err := a.storage.QueryOrders(0); err != nil {
		logger.Error("❌ Не удалось загрузить историю ордеров: %v", err)
	} else {
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].Timestamp.Before(orders[j].Timestamp)
		})
		a.orderHistory = orders
	}

	if trades, err := a.storage.QueryTrades(0); err != nil {
		logger.Error("❌ Не удалось загрузить историю сделок: %v", err)
	} else {
		sort.SliceStable(trades, func(i, j int) bool {
			return trades[i].Timestamp.Before(trades[j].Timestamp)
		})
		a.trades = trades
	}

	logger.Info("📥 Состояние счёта загружено: валют %d, ордеров %d, сделок %d",
		len(a.balances), len(a.orderHistory), len(a.trades))
}

// PlaceOrder размещает виртуальный ордер. Ордер исполняется синхронно:
// при успехе создаются один Order и одна Trade, балансы обеих валют
// изменяются атомарно. Ошибки валидации и нехватки баланса возвращаются
// в OrderResult, не как error.
//
// Для BUY проверяется только стоимость (amount*price): комиссия в проверку
// не входит и может увести котируемый баланс в минус на величину комиссии.
func (a *Account) PlaceOrder(symbol, orderType string, amount, price float64) types.OrderResult {
	base, quote := utils.SplitSymbol(symbol)

	if orderType != types.DirectionBuy && orderType != types.DirectionSell {
		return types.OrderResult{Success: false, Message: "Invalid order type. Use 'BUY' or 'SELL'."}
	}
	if amount <= 0 {
		return types.OrderResult{Success: false, Message: "Amount must be positive."}
	}
	if price <= 0 {
		return types.OrderResult{Success: false, Message: "Price is required for virtual trading."}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if orderType == types.DirectionBuy {
		required := amount * price
		if a.balances[quote] < required {
			return types.OrderResult{Success: false, Message: fmt.Sprintf("Insufficient %s balance.", quote)}
		}
	} else {
		if a.balances[base] < amount {
			return types.OrderResult{Success: false, Message: fmt.Sprintf("Insufficient %s balance.", base)}
		}
	}

	timestamp := a.now()
	cost := amount * price
	fee := cost * a.feeRate

	order := types.Order{
		ID:        uuid.New().String(),
		Timestamp: timestamp,
		Symbol:    symbol,
		Type:      orderType,
		Amount:    amount,
		Price:     price,
		Status:    types.OrderStatusExecuted,
		Cost:      cost,
		Fee:       fee,
	}

	if orderType == types.DirectionBuy {
		a.balances[quote] -= cost + fee
		a.balances[base] += amount
	} else {
		a.balances[base] -= amount
		a.balances[quote] += cost - fee
	}

	trade := types.Trade{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		Timestamp: timestamp,
		Symbol:    symbol,
		Type:      orderType,
		Amount:    amount,
		Price:     price,
		Cost:      cost,
		Fee:       fee,
	}

	a.orderHistory = append(a.orderHistory, order)
	a.trades = append(a.trades, trade)

	a.mirror(order, trade, timestamp)

	logger.Order(symbol, orderType, amount, price, fee)
	return types.OrderResult{
		Success: true,
		Message: fmt.Sprintf("%s order executed successfully.", orderType),
		Order:   &order,
	}
}

// mirror сохраняет ордер, сделку и снапшот балансов во внешнее хранилище.
// Вызывается под мьютексом; ошибки только логируются.
func (a *Account) mirror(order types.Order, trade types.Trade, timestamp time.Time) {
	if a.storage == nil {
		return
	}

	if err := a.storage.StoreOrder(order); err != nil {
		logger.Error("❌ Ошибка сохранения ордера: %v", err)
	}
	if err := a.storage.StoreTrade(trade); err != nil {
		logger.Error("❌ Ошибка сохранения сделки: %v", err)
	}
	if err := a.storage.StoreBalances(a.balanceSnapshot(timestamp)); err != nil {
		logger.Error("❌ Ошибка сохранения балансов: %v", err)
	}
}

// balanceSnapshot — снапшот текущих балансов. Вызывается под мьютексом.
func (a *Account) balanceSnapshot(timestamp time.Time) []types.BalanceRecord {
	records := make([]types.BalanceRecord, 0, len(a.balances))
	for currency, amount := range a.balances {
		records = append(records, types.BalanceRecord{
			Timestamp: timestamp,
			Currency:  currency,
			Amount:    amount,
		})
	}
	return records
}

// GetBalance возвращает баланс валюты. Неизвестная валюта — 0.0, не ошибка.
func (a *Account) GetBalance(currency string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balances[currency]
}

// GetAllBalances возвращает копию всех балансов
func (a *Account) GetAllBalances() map[string]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := make(map[string]float64, len(a.balances))
	for currency, amount := range a.balances {
		result[currency] = amount
	}
	return result
}

// GetPortfolioValue оценивает портфель по переданным текущим ценам.
// Отсутствующая цена считается нулевой. Повторный вызов с теми же ценами
// на неизменённом счёте даёт идентичный результат.
func (a *Account) GetPortfolioValue(currentPrices map[string]float64) types.PortfolioValue {
	a.mu.Lock()
	defer a.mu.Unlock()

	totalValue := a.balances["USDT"]
	holdings := make([]types.Holding, 0, len(a.balances))

	// Детерминированный порядок позиций в отчёте
	currencies := make([]string, 0, len(a.balances))
	for currency := range a.balances {
		if currency != "USDT" {
			currencies = append(currencies, currency)
		}
	}
	sort.Strings(currencies)

	for _, currency := range currencies {
		amount := a.balances[currency]
		price := currentPrices[currency+"/USDT"]
		value := amount * price
		totalValue += value

		holdings = append(holdings, types.Holding{
			Currency: currency,
			Amount:   amount,
			Price:    price,
			Value:    value,
		})
	}

	profitLoss := totalValue - a.initialBalance
	profitLossPct := 0.0
	if a.initialBalance > 0 {
		profitLossPct = profitLoss / a.initialBalance * 100
	}

	return types.PortfolioValue{
		TotalValue:    totalValue,
		Holdings:      holdings,
		USDTBalance:   a.balances["USDT"],
		ProfitLoss:    profitLoss,
		ProfitLossPct: profitLossPct,
		InitialValue:  a.initialBalance,
	}
}

// GetOrderHistory возвращает историю ордеров, новые первыми.
// symbol — необязательный фильтр точного совпадения, limit <= 0 — лимит
// по умолчанию.
func (a *Account) GetOrderHistory(symbol string, limit int) []types.Order {
	a.mu.Lock()
	defer a.mu.Unlock()

	filtered := make([]types.Order, 0, len(a.orderHistory))
	for _, order := range a.orderHistory {
		if symbol == "" || order.Symbol == symbol {
			filtered = append(filtered, order)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	return truncateOrders(filtered, limit)
}

// GetTrades возвращает историю сделок, новые первыми
func (a *Account) GetTrades(symbol string, limit int) []types.Trade {
	a.mu.Lock()
	defer a.mu.Unlock()

	filtered := make([]types.Trade, 0, len(a.trades))
	for _, trade := range a.trades {
		if symbol == "" || trade.Symbol == symbol {
			filtered = append(filtered, trade)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	return truncateTrades(filtered, limit)
}

// Reset атомарно возвращает счёт к начальному состоянию: балансы
// {USDT: начальный}, история пуста, данные в зеркале очищены.
func (a *Account) Reset() types.OrderResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.balances = map[string]float64{"USDT": a.initialBalance}
	a.orderHistory = nil
	a.trades = nil

	if a.storage != nil {
		if err := a.storage.ClearVirtualTradingData(); err != nil {
			logger.Error("❌ Ошибка очистки данных счёта: %v", err)
		}
		if err := a.storage.StoreBalances(a.balanceSnapshot(a.now())); err != nil {
			logger.Error("❌ Ошибка сохранения начального баланса: %v", err)
		}
	}

	logger.Info("🔄 Счёт сброшен к начальному балансу %.2f USDT", a.initialBalance)
	return types.OrderResult{Success: true, Message: "Account reset successfully."}
}

// InitialBalance возвращает стартовый баланс счёта
func (a *Account) InitialBalance() float64 {
	return a.initialBalance
}

func truncateOrders(orders []types.Order, limit int) []types.Order {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if len(orders) > limit {
		return orders[:limit]
	}
	return orders
}

func truncateTrades(trades []types.Trade, limit int) []types.Trade {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if len(trades) > limit {
		return trades[:limit]
	}
	return trades
}
