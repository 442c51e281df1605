package virtual

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"crypto-signal-trading-bot/internal/types"
)

// stubStorage — зеркало в памяти для тестов. failWrites включает
// ошибки записи, чтобы проверить best-effort поведение.
type stubStorage struct {
	mu         sync.Mutex
	failWrites bool

	balances []types.BalanceRecord
	orders   []types.Order
	trades   []types.Trade
	cleared  bool
}

func (s *stubStorage) StoreBalances(records []types.BalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("storage down")
	}
	s.balances = records
	return nil
}

func (s *stubStorage) StoreOrder(order types.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("storage down")
	}
	s.orders = append(s.orders, order)
	return nil
}

func (s *stubStorage) StoreTrade(trade types.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("storage down")
	}
	s.trades = append(s.trades, trade)
	return nil
}

func (s *stubStorage) QueryBalances() ([]types.BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances, nil
}

func (s *stubStorage) QueryOrders(limit int) ([]types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders, nil
}

func (s *stubStorage) QueryTrades(limit int) ([]types.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades, nil
}

func (s *stubStorage) ClearVirtualTradingData() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = true
	s.balances = nil
	s.orders = nil
	s.trades = nil
	return nil
}

func TestPlaceOrderBuyRoundTrip(t *testing.T) {
	account := NewAccount(10000, 0.001, nil)

	result := account.PlaceOrder("BTC/USDT", "BUY", 0.01, 50000)
	if !result.Success {
		t.Fatalf("unexpected buy failure: %s", result.Message)
	}
	if result.Order == nil {
		t.Fatalf("executed order missing from result")
	}
	if result.Order.Cost != 500 || result.Order.Fee != 0.5 {
		t.Fatalf("expected cost=500 fee=0.5, got cost=%.4f fee=%.4f",
			result.Order.Cost, result.Order.Fee)
	}

	if usdt := account.GetBalance("USDT"); math.Abs(usdt-9499.5) > 1e-9 {
		t.Fatalf("expected USDT 9499.5, got %.4f", usdt)
	}
	if btc := account.GetBalance("BTC"); math.Abs(btc-0.01) > 1e-12 {
		t.Fatalf("expected BTC 0.01, got %.8f", btc)
	}

	orders := account.GetOrderHistory("", 0)
	trades := account.GetTrades("", 0)
	if len(orders) != 1 || len(trades) != 1 {
		t.Fatalf("expected 1 order and 1 trade, got %d/%d", len(orders), len(trades))
	}
	if trades[0].OrderID != orders[0].ID {
		t.Fatalf("trade does not reference its order: %s != %s", trades[0].OrderID, orders[0].ID)
	}
	if orders[0].Status != types.OrderStatusExecuted {
		t.Fatalf("expected EXECUTED status, got %s", orders[0].Status)
	}
}

func TestPlaceOrderSellProceeds(t *testing.T) {
	account := NewAccount(10000, 0.001, nil)

	if r := account.PlaceOrder("BTC/USDT", "BUY", 0.01, 50000); !r.Success {
		t.Fatalf("setup buy failed: %s", r.Message)
	}
	r := account.PlaceOrder("BTC/USDT", "SELL", 0.01, 60000)
	if !r.Success {
		t.Fatalf("unexpected sell failure: %s", r.Message)
	}

	// 9499.5 + (600 - 0.6)
	if usdt := account.GetBalance("USDT"); math.Abs(usdt-10098.9) > 1e-9 {
		t.Fatalf("expected USDT 10098.9, got %.4f", usdt)
	}
	if btc := account.GetBalance("BTC"); btc != 0 {
		t.Fatalf("expected BTC 0, got %.8f", btc)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	account := NewAccount(10000, 0.001, nil)

	tests := []struct {
		name      string
		orderType string
		amount    float64
		price     float64
		message   string
	}{
		{"unknown type", "HOLD", 1, 100, "Invalid order type. Use 'BUY' or 'SELL'."},
		{"zero amount", "BUY", 0, 100, "Amount must be positive."},
		{"negative amount", "BUY", -1, 100, "Amount must be positive."},
		{"zero price", "BUY", 1, 0, "Price is required for virtual trading."},
	}

	for _, tt := range tests {
		result := account.PlaceOrder("BTC/USDT", tt.orderType, tt.amount, tt.price)
		if result.Success {
			t.Fatalf("%s: expected rejection", tt.name)
		}
		if result.Message != tt.message {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.message, result.Message)
		}
	}

	if len(account.GetOrderHistory("", 0)) != 0 {
		t.Fatalf("rejected orders must not appear in history")
	}
}

func TestPlaceOrderInsufficientBalance(t *testing.T) {
	account := NewAccount(100, 0.001, nil)

	buy := account.PlaceOrder("BTC/USDT", "BUY", 1, 50000)
	if buy.Success || buy.Message != "Insufficient USDT balance." {
		t.Fatalf("expected quote balance rejection, got %+v", buy)
	}

	sell := account.PlaceOrder("BTC/USDT", "SELL", 1, 50000)
	if sell.Success || sell.Message != "Insufficient BTC balance." {
		t.Fatalf("expected base balance rejection, got %+v", sell)
	}

	if usdt := account.GetBalance("USDT"); usdt != 100 {
		t.Fatalf("balance changed by rejected order: %.4f", usdt)
	}
}

// Для BUY проверяется только стоимость, без комиссии: ордер на всю
// котируемую валюту проходит и уводит баланс в минус на размер комиссии.
func TestPlaceOrderBuyFeeOverdraw(t *testing.T) {
	account := NewAccount(1000, 0.001, nil)

	result := account.PlaceOrder("BTC/USDT", "BUY", 0.02, 50000)
	if !result.Success {
		t.Fatalf("cost-only check should allow this order: %s", result.Message)
	}
	if usdt := account.GetBalance("USDT"); math.Abs(usdt+1) > 1e-9 {
		t.Fatalf("expected USDT -1 (fee overdraw), got %.4f", usdt)
	}
}

func TestGetBalanceUnknownCurrency(t *testing.T) {
	account := NewAccount(1000, 0.001, nil)
	if v := account.GetBalance("DOGE"); v != 0 {
		t.Fatalf("unknown currency should be 0, got %.4f", v)
	}
}

func TestGetPortfolioValueIdempotent(t *testing.T) {
	account := NewAccount(10000, 0.001, nil)
	if r := account.PlaceOrder("BTC/USDT", "BUY", 0.01, 50000); !r.Success {
		t.Fatalf("setup buy failed: %s", r.Message)
	}

	prices := map[string]float64{"BTC/USDT": 55000}
	first := account.GetPortfolioValue(prices)
	second := account.GetPortfolioValue(prices)

	if first.TotalValue != second.TotalValue || first.ProfitLoss != second.ProfitLoss {
		t.Fatalf("portfolio value not idempotent: %+v vs %+v", first, second)
	}
	expected := 9499.5 + 0.01*55000
	if math.Abs(first.TotalValue-expected) > 1e-9 {
		t.Fatalf("expected total %.4f, got %.4f", expected, first.TotalValue)
	}
	if len(first.Holdings) != 1 || first.Holdings[0].Currency != "BTC" {
		t.Fatalf("expected single BTC holding, got %+v", first.Holdings)
	}
}

func TestGetPortfolioValueMissingPrice(t *testing.T) {
	account := NewAccount(10000, 0.001, nil)
	if r := account.PlaceOrder("BTC/USDT", "BUY", 0.01, 50000); !r.Success {
		t.Fatalf("setup buy failed: %s", r.Message)
	}

	value := account.GetPortfolioValue(nil)
	if math.Abs(value.TotalValue-9499.5) > 1e-9 {
		t.Fatalf("missing price must value holding at 0, got %.4f", value.TotalValue)
	}
}

func TestGetOrderHistoryFilterAndOrder(t *testing.T) {
	account := NewAccount(100000, 0.001, nil)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	account.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	account.PlaceOrder("BTC/USDT", "BUY", 0.01, 50000)
	account.PlaceOrder("ETH/USDT", "BUY", 0.1, 3000)
	account.PlaceOrder("BTC/USDT", "BUY", 0.02, 51000)

	all := account.GetOrderHistory("", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
	if !all[0].Timestamp.After(all[1].Timestamp) || !all[1].Timestamp.After(all[2].Timestamp) {
		t.Fatalf("orders must be newest first")
	}

	btc := account.GetOrderHistory("BTC/USDT", 0)
	if len(btc) != 2 {
		t.Fatalf("expected 2 BTC orders, got %d", len(btc))
	}
	for _, order := range btc {
		if order.Symbol != "BTC/USDT" {
			t.Fatalf("filter leaked symbol %s", order.Symbol)
		}
	}

	limited := account.GetOrderHistory("", 1)
	if len(limited) != 1 || limited[0].Amount != 0.02 {
		t.Fatalf("limit must keep the newest order, got %+v", limited)
	}
}

func TestReset(t *testing.T) {
	storage := &stubStorage{}
	account := NewAccount(10000, 0.001, storage)

	account.PlaceOrder("BTC/USDT", "BUY", 0.01, 50000)
	result := account.Reset()
	if !result.Success || result.Message != "Account reset successfully." {
		t.Fatalf("unexpected reset result: %+v", result)
	}

	balances := account.GetAllBalances()
	if len(balances) != 1 || balances["USDT"] != 10000 {
		t.Fatalf("expected {USDT: 10000}, got %v", balances)
	}
	if len(account.GetOrderHistory("", 0)) != 0 || len(account.GetTrades("", 0)) != 0 {
		t.Fatalf("history must be empty after reset")
	}
	if !storage.cleared {
		t.Fatalf("mirror must be cleared on reset")
	}
}

func TestMirrorBestEffort(t *testing.T) {
	storage := &stubStorage{failWrites: true}
	account := NewAccount(10000, 0.001, storage)

	result := account.PlaceOrder("BTC/USDT", "BUY", 0.01, 50000)
	if !result.Success {
		t.Fatalf("storage failure must not fail the order: %s", result.Message)
	}
	if usdt := account.GetBalance("USDT"); math.Abs(usdt-9499.5) > 1e-9 {
		t.Fatalf("in-memory state must be committed, got USDT %.4f", usdt)
	}
}

func TestLoadAccountDataFromStorage(t *testing.T) {
	storage := &stubStorage{}
	seed := NewAccount(10000, 0.001, storage)
	seed.PlaceOrder("BTC/USDT", "BUY", 0.01, 50000)

	restored := NewAccount(10000, 0.001, storage)
	if usdt := restored.GetBalance("USDT"); math.Abs(usdt-9499.5) > 1e-9 {
		t.Fatalf("expected restored USDT 9499.5, got %.4f", usdt)
	}
	if btc := restored.GetBalance("BTC"); math.Abs(btc-0.01) > 1e-12 {
		t.Fatalf("expected restored BTC 0.01, got %.8f", btc)
	}
	if len(restored.GetOrderHistory("", 0)) != 1 {
		t.Fatalf("expected restored order history")
	}
}

// Параллельные покупки на весь баланс: проверка и списание атомарны,
// поэтому пройти может ровно один ордер.
func TestConcurrentOrdersNoOverdraw(t *testing.T) {
	account := NewAccount(1000, 0, nil)

	const workers = 16
	var wg sync.WaitGroup
	results := make([]types.OrderResult, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = account.PlaceOrder("BTC/USDT", "BUY", 0.02, 50000)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful order, got %d", succeeded)
	}
	if usdt := account.GetBalance("USDT"); usdt != 0 {
		t.Fatalf("expected USDT 0 after the single fill, got %.4f", usdt)
	}
}
