// internal/trading/auto/trader.go
package auto

import (
	"crypto-signal-trading-bot/internal/trading/virtual"
	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"
)

// Trader исполняет итоговые сигналы на виртуальном счёте.
// Размер позиции пропорционален уверенности сигнала.
type Trader struct {
	account        *virtual.Account
	tradeAmountUSD float64
	enabled        bool
}

// NewTrader создаёт трейдера. tradeAmountUSD — базовый размер позиции
// в долларах при уверенности 1.0.
func NewTrader(account *virtual.Account, tradeAmountUSD float64, enabled bool) *Trader {
	return &Trader{
		account:        account,
		tradeAmountUSD: tradeAmountUSD,
		enabled:        enabled,
	}
}

// ExecuteSignals исполняет пакет сигналов и возвращает успешно
// размещённые ордера. Ошибки отдельных сигналов логируются
// и не прерывают обработку остальных.
func (t *Trader) ExecuteSignals(signals []types.FusedSignal) []types.Order {
	if !t.enabled {
		logger.Info("ℹ️ Торговля выключена, сигналов к исполнению: %d", len(signals))
		return nil
	}
	if len(signals) == 0 {
		logger.Info("ℹ️ Нет сигналов к исполнению")
		return nil
	}

	var executed []types.Order
	for _, signal := range signals {
		if signal.Direction != types.DirectionBuy && signal.Direction != types.DirectionSell {
			continue
		}
		if signal.Price <= 0 {
			logger.Warn("⚠️ Сигнал %s без цены, пропущен", signal.Symbol)
			continue
		}

		// Размер позиции масштабируется уверенностью
		sized := t.tradeAmountUSD * signal.Confidence
		amount := sized / signal.Price

		result := t.account.PlaceOrder(signal.Symbol, signal.Direction, amount, signal.Price)
		if !result.Success {
			logger.Warn("⚠️ Ордер по сигналу %s %s отклонён: %s",
				signal.Direction, signal.Symbol, result.Message)
			continue
		}
		executed = append(executed, *result.Order)
	}

	logger.Info("✅ Исполнено ордеров: %d из %d сигналов", len(executed), len(signals))
	return executed
}
