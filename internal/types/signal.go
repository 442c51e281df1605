// internal/types/signal.go
package types

import "time"

// Направления сигналов и ордеров
const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

// Статусы жизненного цикла сигнала
const (
	TradeStatusActive  = "Active"
	TradeStatusPending = "Pending"
	TradeStatusExpired = "Expired"
)

// TechnicalSignal — дискретный сигнал по одному символу,
// выведенный из последней строки индикаторов. Шкала TechnicalScore 0-4,
// Confidence = TechnicalScore / 4.
type TechnicalSignal struct {
	Timestamp      time.Time `json:"timestamp"`
	Symbol         string    `json:"symbol"`
	Direction      string    `json:"signal"`
	Price          float64   `json:"price"`
	TechnicalScore float64   `json:"technical_score"`
	Indicators     []string  `json:"indicators"`
	Confidence     float64   `json:"confidence"`
}

// FusedSignal — итоговый сигнал после слияния технического анализа
// с агрегированным сентиментом новостей. Confidence всегда в [0.05, 0.95].
// После создания меняться может только TradeStatus.
type FusedSignal struct {
	TechnicalSignal

	ID             string    `json:"id"`
	SentimentScore float64   `json:"sentiment_score"`
	TakeProfit     float64   `json:"take_profit"`
	StopLoss       float64   `json:"stop_loss"`
	Pattern        string    `json:"pattern"`
	TradeStatus    string    `json:"trade_status"`
	ExpiryTime     time.Time `json:"expiry_time"`
}
