// internal/analysis/indicators/engine.go
package indicators

import (
	"math"

	"crypto-signal-trading-bot/internal/types"
)

// Периоды индикаторов
const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	bbPeriod         = 20
	bbStdDev         = 2.0
	stochPeriod      = 14
	stochSmooth      = 3
	atrPeriod        = 14
)

// Calculate рассчитывает полный набор технических индикаторов по ряду свечей.
// Результат выровнен 1:1 со входом; значения nil в период прогрева,
// пока недостаточно предыдущих свечей для соответствующего периода.
func Calculate(candles []types.Candle) []types.IndicatorRow {
	if len(candles) == 0 {
		return nil
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	rsi := rsiSeries(closes, rsiPeriod)
	macd, macdSignal, macdHist := macdSeries(closes)
	sma20 := smaSeries(closes, 20)
	sma50 := smaSeries(closes, 50)
	sma200 := smaSeries(closes, 200)
	ema12 := emaSeries(closes, macdFastPeriod)
	ema26 := emaSeries(closes, macdSlowPeriod)
	bbUpper, bbMiddle, bbLower, bbWidth := bollingerSeries(closes, bbPeriod, bbStdDev)
	stochK, stochD := stochasticSeries(highs, lows, closes, stochPeriod, stochSmooth)
	atr := atrSeries(highs, lows, closes, atrPeriod)
	obv := obvSeries(closes, volumes)

	rows := make([]types.IndicatorRow, len(candles))
	for i := range candles {
		rows[i] = types.IndicatorRow{
			Candle:     candles[i],
			RSI14:      rsi[i],
			MACD:       macd[i],
			MACDSignal: macdSignal[i],
			MACDHist:   macdHist[i],
			SMA20:      sma20[i],
			SMA50:      sma50[i],
			SMA200:     sma200[i],
			EMA12:      ema12[i],
			EMA26:      ema26[i],
			BBUpper:    bbUpper[i],
			BBMiddle:   bbMiddle[i],
			BBLower:    bbLower[i],
			BBWidth:    bbWidth[i],
			StochK:     stochK[i],
			StochD:     stochD[i],
			ATR:        atr[i],
			OBV:        obv[i],
		}
	}
	return rows
}

func fl(v float64) *float64 { return &v }

// smaSeries — простая скользящая средняя. Значение появляется
// с индекса period-1.
func smaSeries(values []float64, period int) []*float64 {
	result := make([]*float64, len(values))
	if period <= 0 || len(values) < period {
		return result
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			result[i] = fl(sum / float64(period))
		}
	}
	return result
}

// emaSeries — экспоненциальная скользящая средняя,
// стартовое значение — SMA первых period точек.
func emaSeries(values []float64, period int) []*float64 {
	result := make([]*float64, len(values))
	if period <= 0 || len(values) < period {
		return result
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	seed /= float64(period)
	result[period-1] = fl(seed)

	multiplier := 2.0 / float64(period+1)
	prev := seed
	for i := period; i < len(values); i++ {
		ema := (values[i]-prev)*multiplier + prev
		result[i] = fl(ema)
		prev = ema
	}
	return result
}

// rsiSeries — RSI по сглаживанию Уайлдера. Первое значение на индексе period.
func rsiSeries(values []float64, period int) []*float64 {
	result := make([]*float64, len(values))
	if len(values) < period+1 {
		return result
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	result[period] = fl(rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		result[i] = fl(rsiValue(avgGain, avgLoss))
	}
	return result
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0 // Нет движения
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// macdSeries — MACD(12,26,9): линия, сигнальная линия и гистограмма
func macdSeries(values []float64) (macd, signal, hist []*float64) {
	n := len(values)
	macd = make([]*float64, n)
	signal = make([]*float64, n)
	hist = make([]*float64, n)

	fast := emaSeries(values, macdFastPeriod)
	slow := emaSeries(values, macdSlowPeriod)

	macdValues := make([]float64, 0, n)
	macdStart := -1
	for i := 0; i < n; i++ {
		if fast[i] == nil || slow[i] == nil {
			continue
		}
		if macdStart < 0 {
			macdStart = i
		}
		v := *fast[i] - *slow[i]
		macd[i] = fl(v)
		macdValues = append(macdValues, v)
	}
	if macdStart < 0 {
		return macd, signal, hist
	}

	signalValues := emaSeries(macdValues, macdSignalPeriod)
	for j, sv := range signalValues {
		if sv == nil {
			continue
		}
		i := macdStart + j
		signal[i] = sv
		hist[i] = fl(*macd[i] - *sv)
	}
	return macd, signal, hist
}

// bollingerSeries — полосы Боллинджера на SMA(period) ± stdDev сигм
func bollingerSeries(values []float64, period int, stdDev float64) (upper, middle, lower, width []*float64) {
	n := len(values)
	upper = make([]*float64, n)
	middle = smaSeries(values, period)
	lower = make([]*float64, n)
	width = make([]*float64, n)

	for i := period - 1; i < n; i++ {
		mean := *middle[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			diff := values[j] - mean
			variance += diff * diff
		}
		sigma := math.Sqrt(variance / float64(period))

		u := mean + stdDev*sigma
		l := mean - stdDev*sigma
		upper[i] = fl(u)
		lower[i] = fl(l)
		if mean != 0 {
			width[i] = fl((u - l) / mean)
		}
	}
	return upper, middle, lower, width
}

// stochasticSeries — стохастический осциллятор: быстрый %K сглаживается
// SMA(smooth) в медленный %K, %D — SMA(smooth) от медленного %K
func stochasticSeries(highs, lows, closes []float64, period, smooth int) (k, d []*float64) {
	n := len(closes)
	k = make([]*float64, n)
	d = make([]*float64, n)
	if n < period {
		return k, d
	}

	fastK := make([]*float64, n)
	for i := period - 1; i < n; i++ {
		highest := highs[i]
		lowest := lows[i]
		for j := i - period + 1; j <= i; j++ {
			if highs[j] > highest {
				highest = highs[j]
			}
			if lows[j] < lowest {
				lowest = lows[j]
			}
		}
		if highest == lowest {
			fastK[i] = fl(50.0) // Плоский диапазон
		} else {
			fastK[i] = fl(100.0 * (closes[i] - lowest) / (highest - lowest))
		}
	}

	k = smaOfSeries(fastK, smooth)
	d = smaOfSeries(k, smooth)
	return k, d
}

// smaOfSeries — SMA поверх ряда с возможными nil в начале
func smaOfSeries(values []*float64, period int) []*float64 {
	result := make([]*float64, len(values))
	for i := range values {
		if values[i] == nil {
			continue
		}
		sum := 0.0
		count := 0
		for j := i; j > i-period && j >= 0; j-- {
			if values[j] == nil {
				break
			}
			sum += *values[j]
			count++
		}
		if count == period {
			result[i] = fl(sum / float64(period))
		}
	}
	return result
}

// atrSeries — средний истинный диапазон по сглаживанию Уайлдера
func atrSeries(highs, lows, closes []float64, period int) []*float64 {
	n := len(closes)
	result := make([]*float64, n)
	if n < period+1 {
		return result
	}

	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		highLow := highs[i] - lows[i]
		highClose := math.Abs(highs[i] - closes[i-1])
		lowClose := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	result[period] = fl(atr)

	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		result[i] = fl(atr)
	}
	return result
}

// obvSeries — накопительный балансовый объём
func obvSeries(closes, volumes []float64) []*float64 {
	result := make([]*float64, len(closes))
	if len(closes) == 0 {
		return result
	}

	obv := 0.0
	result[0] = fl(obv)
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv += volumes[i]
		case closes[i] < closes[i-1]:
			obv -= volumes[i]
		}
		result[i] = fl(obv)
	}
	return result
}
