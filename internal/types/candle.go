// internal/types/candle.go
package types

import "time"

// Candle — одна OHLCV-свеча. Неизменяема после получения,
// ряды свечей упорядочены по времени по возрастанию.
type Candle struct {
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Symbol    string    `json:"symbol" db:"symbol"`
	Open      float64   `json:"open" db:"open"`
	High      float64   `json:"high" db:"high"`
	Low       float64   `json:"low" db:"low"`
	Close     float64   `json:"close" db:"close"`
	Volume    float64   `json:"volume" db:"volume"`
}

// IndicatorRow — свеча плюс рассчитанные технические индикаторы.
// Указатели nil в период прогрева, пока недостаточно предыдущих свечей
// (например, первые 199 строк не имеют SMA200).
type IndicatorRow struct {
	Candle

	RSI14      *float64 `json:"rsi_14"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	MACDHist   *float64 `json:"macd_hist"`
	SMA20      *float64 `json:"sma_20"`
	SMA50      *float64 `json:"sma_50"`
	SMA200     *float64 `json:"sma_200"`
	EMA12      *float64 `json:"ema_12"`
	EMA26      *float64 `json:"ema_26"`
	BBUpper    *float64 `json:"bb_upper"`
	BBMiddle   *float64 `json:"bb_middle"`
	BBLower    *float64 `json:"bb_lower"`
	BBWidth    *float64 `json:"bb_width"`
	StochK     *float64 `json:"stoch_k"`
	StochD     *float64 `json:"stoch_d"`
	ATR        *float64 `json:"atr"`
	OBV        *float64 `json:"obv"`
}
