// internal/infrastructure/persistence/postgres/models/signal.go
package models

import (
	"strings"
	"time"

	"crypto-signal-trading-bot/internal/types"
)

// TradingSignal — строка таблицы trading_signals.
// Метки индикаторов хранятся одной строкой через запятую.
type TradingSignal struct {
	ID             string    `db:"id"`
	Timestamp      time.Time `db:"timestamp"`
	Symbol         string    `db:"symbol"`
	Signal         string    `db:"signal"`
	Price          float64   `db:"price"`
	TechnicalScore float64   `db:"technical_score"`
	Indicators     string    `db:"indicators"`
	Confidence     float64   `db:"confidence"`
	SentimentScore float64   `db:"sentiment_score"`
	TakeProfit     float64   `db:"take_profit"`
	StopLoss       float64   `db:"stop_loss"`
	Pattern        string    `db:"pattern"`
	TradeStatus    string    `db:"trade_status"`
	ExpiryTime     time.Time `db:"expiry_time"`
	CreatedAt      time.Time `db:"created_at"`
}

// FromFusedSignal конвертирует доменный сигнал в модель хранения
func FromFusedSignal(s types.FusedSignal) TradingSignal {
	return TradingSignal{
		ID:             s.ID,
		Timestamp:      s.Timestamp,
		Symbol:         s.Symbol,
		Signal:         s.Direction,
		Price:          s.Price,
		TechnicalScore: s.TechnicalScore,
		Indicators:     strings.Join(s.Indicators, ", "),
		Confidence:     s.Confidence,
		SentimentScore: s.SentimentScore,
		TakeProfit:     s.TakeProfit,
		StopLoss:       s.StopLoss,
		Pattern:        s.Pattern,
		TradeStatus:    s.TradeStatus,
		ExpiryTime:     s.ExpiryTime,
	}
}

// ToFusedSignal конвертирует модель хранения обратно в доменный сигнал
func (m TradingSignal) ToFusedSignal() types.FusedSignal {
	var labels []string
	if m.Indicators != "" {
		for _, part := range strings.Split(m.Indicators, ",") {
			labels = append(labels, strings.TrimSpace(part))
		}
	}

	return types.FusedSignal{
		TechnicalSignal: types.TechnicalSignal{
			Timestamp:      m.Timestamp,
			Symbol:         m.Symbol,
			Direction:      m.Signal,
			Price:          m.Price,
			TechnicalScore: m.TechnicalScore,
			Indicators:     labels,
			Confidence:     m.Confidence,
		},
		ID:             m.ID,
		SentimentScore: m.SentimentScore,
		TakeProfit:     m.TakeProfit,
		StopLoss:       m.StopLoss,
		Pattern:        m.Pattern,
		TradeStatus:    m.TradeStatus,
		ExpiryTime:     m.ExpiryTime,
	}
}
