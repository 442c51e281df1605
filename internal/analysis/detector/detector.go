// internal/analysis/detector/detector.go
package detector

import (
	"strings"

	"crypto-signal-trading-bot/internal/types"
)

// Минимальная длина ряда индикаторов для анализа.
// Более короткий вход — не ошибка, сигнал просто не формируется.
const minRows = 20

// Пороги условий
const (
	rsiOversold    = 30.0
	rsiOverbought  = 70.0
	stochLow       = 20.0
	stochHigh      = 80.0
	volumeSpikeMul = 1.5
	volumeWindow   = 20
)

// Detector сканирует последние строки индикаторов и формирует
// дискретный сигнал BUY/SELL со шкалой силы 0-4.
// Детектор не хранит состояния и безопасен для конкурентного вызова.
type Detector struct {
	smallCaps []string
}

// NewDetector создаёт детектор. smallCaps — коды валют с малой капитализацией,
// для которых действует смягчённый тай-брейк и бонус к оценке.
func NewDetector(smallCaps []string) *Detector {
	caps := make([]string, len(smallCaps))
	for i, s := range smallCaps {
		caps[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return &Detector{smallCaps: caps}
}

// Detect анализирует ряд индикаторов одного символа и возвращает ровно один
// сигнал. Возвращает nil, если строк меньше 20. Условия с отсутствующими
// входами пропускаются и не считаются ни в одну сторону.
func (d *Detector) Detect(rows []types.IndicatorRow) *types.TechnicalSignal {
	if len(rows) < minRows {
		return nil
	}

	latest := rows[len(rows)-1]
	prev := rows[len(rows)-2]

	var bullish []string

	// RSI в зоне перепроданности
	if latest.RSI14 != nil && *latest.RSI14 < rsiOversold {
		bullish = append(bullish, "RSI Oversold")
	}

	// Гистограмма MACD пересекла ноль снизу вверх
	if prev.MACDHist != nil && latest.MACDHist != nil &&
		*prev.MACDHist < 0 && *latest.MACDHist > 0 {
		bullish = append(bullish, "MACD Bullish Crossover")
	}

	// Цена выше SMA20
	if latest.SMA20 != nil && latest.Close > *latest.SMA20 {
		bullish = append(bullish, "Price > SMA20")
	}

	// Отскок от нижней полосы Боллинджера
	if prev.BBLower != nil && latest.BBLower != nil &&
		prev.Close < *prev.BBLower && latest.Close > *latest.BBLower {
		bullish = append(bullish, "BB Bounce")
	}

	// %K пересёк 20 снизу вверх
	if prev.StochK != nil && latest.StochK != nil &&
		*prev.StochK < stochLow && *latest.StochK > stochLow {
		bullish = append(bullish, "Stochastic Bullish Crossover")
	}

	// Всплеск объёма относительно предыдущих 20 свечей
	if mean, ok := meanVolume(rows[:len(rows)-1], volumeWindow); ok &&
		latest.Volume > mean*volumeSpikeMul {
		bullish = append(bullish, "Volume Spike")
	}

	var bearish []string

	// RSI в зоне перекупленности
	if latest.RSI14 != nil && *latest.RSI14 > rsiOverbought {
		bearish = append(bearish, "RSI Overbought")
	}

	// Гистограмма MACD пересекла ноль сверху вниз
	if prev.MACDHist != nil && latest.MACDHist != nil &&
		*prev.MACDHist > 0 && *latest.MACDHist < 0 {
		bearish = append(bearish, "MACD Bearish Crossover")
	}

	// Цена ниже SMA20
	if latest.SMA20 != nil && latest.Close < *latest.SMA20 {
		bearish = append(bearish, "Price < SMA20")
	}

	// Цена выше верхней полосы Боллинджера
	if latest.BBUpper != nil && latest.Close > *latest.BBUpper {
		bearish = append(bearish, "BB Upper Breach")
	}

	// %K пересёк 80 сверху вниз
	if prev.StochK != nil && latest.StochK != nil &&
		*prev.StochK > stochHigh && *latest.StochK < stochHigh {
		bearish = append(bearish, "Stochastic Bearish Crossover")
	}

	isSmallCap := d.isSmallCap(latest.Symbol)

	var direction string
	var score float64

	switch {
	case len(bullish) > len(bearish) ||
		(isSmallCap && len(bullish) >= len(bearish) && len(bullish) > 0):
		direction = types.DirectionBuy
		score = minFloat(4.0, 2.0+float64(len(bullish)-len(bearish))*0.5)
		if isSmallCap {
			score = minFloat(4.0, score+0.5)
		}
	case len(bearish) > len(bullish):
		direction = types.DirectionSell
		score = minFloat(4.0, 2.0+float64(len(bearish)-len(bullish))*0.5)
	default:
		// Ничья — решает положение цены относительно тренда SMA50
		if latest.SMA50 != nil && latest.Close > *latest.SMA50 {
			direction = types.DirectionBuy
		} else {
			direction = types.DirectionSell
		}
		score = 2.0
	}

	labels := make([]string, 0, len(bullish)+len(bearish))
	labels = append(labels, bullish...)
	labels = append(labels, bearish...)

	return &types.TechnicalSignal{
		Timestamp:      latest.Timestamp,
		Symbol:         latest.Symbol,
		Direction:      direction,
		Price:          latest.Close,
		TechnicalScore: score,
		Indicators:     labels,
		Confidence:     score / 4.0,
	}
}

func (d *Detector) isSmallCap(symbol string) bool {
	upper := strings.ToUpper(symbol)
	for _, c := range d.smallCaps {
		if c != "" && strings.Contains(upper, c) {
			return true
		}
	}
	return false
}

// meanVolume — средний объём последних window строк ряда
func meanVolume(rows []types.IndicatorRow, window int) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	start := len(rows) - window
	if start < 0 {
		start = 0
	}
	sum := 0.0
	count := 0
	for _, r := range rows[start:] {
		sum += r.Volume
		count++
	}
	return sum / float64(count), true
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
