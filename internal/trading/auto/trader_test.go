package auto

import (
	"math"
	"testing"

	"crypto-signal-trading-bot/internal/trading/virtual"
	"crypto-signal-trading-bot/internal/types"
)

func fusedSignal(symbol, direction string, price, confidence float64) types.FusedSignal {
	return types.FusedSignal{
		TechnicalSignal: types.TechnicalSignal{
			Symbol:     symbol,
			Direction:  direction,
			Price:      price,
			Confidence: confidence,
		},
	}
}

func TestExecuteSignalsDisabled(t *testing.T) {
	account := virtual.NewAccount(10000, 0.001, nil)
	trader := NewTrader(account, 100, false)

	executed := trader.ExecuteSignals([]types.FusedSignal{
		fusedSignal("BTC/USDT", types.DirectionBuy, 50000, 0.5),
	})
	if executed != nil {
		t.Fatalf("disabled trader must not place orders, got %v", executed)
	}
	if usdt := account.GetBalance("USDT"); usdt != 10000 {
		t.Fatalf("balance changed while disabled: %.2f", usdt)
	}
}

func TestExecuteSignalsSizesByConfidence(t *testing.T) {
	account := virtual.NewAccount(10000, 0.001, nil)
	trader := NewTrader(account, 100, true)

	executed := trader.ExecuteSignals([]types.FusedSignal{
		fusedSignal("BTC/USDT", types.DirectionBuy, 50000, 0.5),
	})
	if len(executed) != 1 {
		t.Fatalf("expected 1 executed order, got %d", len(executed))
	}

	// $100 * 0.5 уверенности / цена
	wantAmount := 100 * 0.5 / 50000.0
	if math.Abs(executed[0].Amount-wantAmount) > 1e-12 {
		t.Fatalf("amount = %.8f, want %.8f", executed[0].Amount, wantAmount)
	}
	if math.Abs(account.GetBalance("BTC")-wantAmount) > 1e-12 {
		t.Fatalf("account BTC balance mismatch")
	}
}

func TestExecuteSignalsSkipsBadSignals(t *testing.T) {
	account := virtual.NewAccount(10000, 0.001, nil)
	trader := NewTrader(account, 100, true)

	executed := trader.ExecuteSignals([]types.FusedSignal{
		fusedSignal("BTC/USDT", "HOLD", 50000, 0.5),
		fusedSignal("ETH/USDT", types.DirectionBuy, 0, 0.5),
		fusedSignal("SOL/USDT", types.DirectionBuy, 100, 0.5),
	})
	if len(executed) != 1 || executed[0].Symbol != "SOL/USDT" {
		t.Fatalf("expected only the valid signal to execute, got %v", executed)
	}
}

func TestExecuteSignalsRejectionDoesNotStopBatch(t *testing.T) {
	// SELL без позиции отклоняется счётом, следующий сигнал исполняется
	account := virtual.NewAccount(10000, 0.001, nil)
	trader := NewTrader(account, 100, true)

	executed := trader.ExecuteSignals([]types.FusedSignal{
		fusedSignal("BTC/USDT", types.DirectionSell, 50000, 0.5),
		fusedSignal("ETH/USDT", types.DirectionBuy, 3000, 0.5),
	})
	if len(executed) != 1 || executed[0].Symbol != "ETH/USDT" {
		t.Fatalf("rejected signal must not stop the batch, got %v", executed)
	}
}
