// internal/analysis/fusion/generator.go
package fusion

import (
	"fmt"
	"math/rand"
	"time"

	"crypto-signal-trading-bot/internal/analysis/sentiment"
	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"
	"crypto-signal-trading-bot/pkg/utils"

	"github.com/google/uuid"
)

// Границы уверенности итогового сигнала
const (
	minConfidence = 0.05
	maxConfidence = 0.95
)

// Вес сентимента при корректировке уверенности
const sentimentWeight = 0.2

// Множители уровней риска
const (
	buyTakeProfitMul  = 1.05
	buyStopLossMul    = 0.97
	sellTakeProfitMul = 0.95
	sellStopLossMul   = 1.03
)

// Срок действия сигнала
const signalTTL = 24 * time.Hour

// Словари паттернов — косметическая заглушка, реального детектора
// паттернов нет. Выбор случайный через инжектируемый источник.
var (
	buyPatterns  = []string{"Bullish Engulfing", "Morning Star", "Hammer", "Double Bottom", "Ascending Triangle"}
	sellPatterns = []string{"Bearish Engulfing", "Evening Star", "Shooting Star", "Double Top", "Descending Triangle"}
)

// Generator объединяет технические сигналы с агрегированным сентиментом
// новостей в итоговые торговые сигналы. Не хранит состояния между вызовами,
// кроме источника случайности для полей-заглушек.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator создаёт генератор. rng используется только для полей-заглушек
// (паттерн и статус); nil — источник со случайным зерном.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate формирует по одному итоговому сигналу на каждый технический.
// Сигналы не отбрасываются и не объединяются. Отсутствие новостей —
// не ошибка: сентимент остаётся 0.0, уверенность не меняется.
func (g *Generator) Generate(signals []types.TechnicalSignal, news []types.NewsItem) []types.FusedSignal {
	if len(signals) == 0 {
		logger.Warn("⚠️ Нет технических сигналов для слияния с сентиментом")
		return nil
	}

	avgSentiment := sentiment.AggregateByCurrency(news)
	if len(news) == 0 {
		logger.Warn("⚠️ Нет новостей для анализа сентимента")
	}

	result := make([]types.FusedSignal, 0, len(signals))
	for _, ts := range signals {
		fused := types.FusedSignal{
			TechnicalSignal: ts,
			ID:              uuid.New().String(),
			ExpiryTime:      ts.Timestamp.Add(signalTTL),
		}
		// Копируем метки, чтобы не трогать исходный сигнал
		fused.Indicators = append([]string(nil), ts.Indicators...)

		base := utils.BaseCurrency(ts.Symbol)
		if avg, ok := avgSentiment[base]; ok {
			fused.SentimentScore = avg
			fused.Confidence = adjustConfidence(ts.Direction, ts.Confidence, avg)
			fused.Indicators = append(fused.Indicators, fmt.Sprintf("Sentiment: %.2f", avg))

			logger.Debug("Сентимент %.2f применён к %s, новая уверенность: %.2f",
				avg, ts.Symbol, fused.Confidence)
		}

		// Уровни риска зависят только от цены и направления
		if ts.Direction == types.DirectionBuy {
			fused.TakeProfit = ts.Price * buyTakeProfitMul
			fused.StopLoss = ts.Price * buyStopLossMul
		} else {
			fused.TakeProfit = ts.Price * sellTakeProfitMul
			fused.StopLoss = ts.Price * sellStopLossMul
		}

		g.enrichPlaceholders(&fused)

		logger.Signal(fused.Symbol, fused.Direction, fused.Price, fused.Confidence, fused.SentimentScore)
		result = append(result, fused)
	}
	return result
}

// adjustConfidence корректирует уверенность по согласию направления
// с сентиментом. Результат всегда в [0.05, 0.95]; нулевой сентимент
// оставляет уверенность без изменений.
func adjustConfidence(direction string, confidence, avg float64) float64 {
	agrees := (direction == types.DirectionBuy && avg > 0) ||
		(direction == types.DirectionSell && avg < 0)
	disagrees := (direction == types.DirectionBuy && avg < 0) ||
		(direction == types.DirectionSell && avg > 0)

	delta := abs(avg) * sentimentWeight
	switch {
	case agrees:
		return minFloat(maxConfidence, confidence+delta)
	case disagrees:
		return maxFloat(minConfidence, confidence-delta)
	default:
		return confidence
	}
}

// enrichPlaceholders заполняет поля-заглушки: косметический паттерн
// и статус по фиксированному распределению Active 0.7 / Pending 0.2 /
// Expired 0.1. Не связано с реальным детектированием паттернов.
func (g *Generator) enrichPlaceholders(fused *types.FusedSignal) {
	vocab := buyPatterns
	if fused.Direction == types.DirectionSell {
		vocab = sellPatterns
	}
	fused.Pattern = vocab[g.rng.Intn(len(vocab))]

	roll := g.rng.Float64()
	switch {
	case roll < 0.7:
		fused.TradeStatus = types.TradeStatusActive
	case roll < 0.9:
		fused.TradeStatus = types.TradeStatusPending
	default:
		fused.TradeStatus = types.TradeStatusExpired
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
