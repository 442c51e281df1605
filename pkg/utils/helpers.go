// pkg/utils/helpers.go
package utils

import (
	"fmt"
	"strings"
	"time"
)

// SplitSymbol разбирает торговую пару вида "BTC/USDT" на базовую и котируемую валюты.
// Если разделителя нет, весь символ считается базовой валютой с котировкой USDT.
func SplitSymbol(symbol string) (base, quote string) {
	parts := strings.SplitN(symbol, "/", 2)
	if len(parts) == 2 {
		return strings.ToUpper(strings.TrimSpace(parts[0])), strings.ToUpper(strings.TrimSpace(parts[1]))
	}
	return strings.ToUpper(strings.TrimSpace(symbol)), "USDT"
}

// BaseCurrency возвращает базовую валюту символа ("BTC" для "BTC/USDT")
func BaseCurrency(symbol string) string {
	base, _ := SplitSymbol(symbol)
	return base
}

// FormatDuration форматирует продолжительность в читаемый вид
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dч %dм", hours, minutes)
	}
	return fmt.Sprintf("%dм", minutes)
}

// FormatPrice форматирует цену с заданной точностью
func FormatPrice(price float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, price)
}

// FormatPercent форматирует процентное значение
func FormatPercent(value float64) string {
	if value > 0 {
		return fmt.Sprintf("+%.2f%%", value)
	}
	return fmt.Sprintf("%.2f%%", value)
}
