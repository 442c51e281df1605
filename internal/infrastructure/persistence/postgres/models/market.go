// internal/infrastructure/persistence/postgres/models/market.go
package models

import (
	"time"

	"crypto-signal-trading-bot/internal/types"
)

// MarketData — строка таблицы market_data
type MarketData struct {
	ID        int64     `db:"id"`
	Timestamp time.Time `db:"timestamp"`
	Symbol    string    `db:"symbol"`
	Timeframe string    `db:"timeframe"`
	Open      float64   `db:"open"`
	High      float64   `db:"high"`
	Low       float64   `db:"low"`
	Close     float64   `db:"close"`
	Volume    float64   `db:"volume"`
	CreatedAt time.Time `db:"created_at"`
}

// FromCandle конвертирует свечу в модель хранения
func FromCandle(c types.Candle, timeframe string) MarketData {
	return MarketData{
		Timestamp: c.Timestamp,
		Symbol:    c.Symbol,
		Timeframe: timeframe,
		Open:      c.Open,
		High:      c.High,
		Low:       c.Low,
		Close:     c.Close,
		Volume:    c.Volume,
	}
}

// ToCandle конвертирует модель хранения обратно в свечу
func (m MarketData) ToCandle() types.Candle {
	return types.Candle{
		Timestamp: m.Timestamp,
		Symbol:    m.Symbol,
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		Volume:    m.Volume,
	}
}
