// internal/adapters/market/bybit_fetcher.go
package market

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"
)

// BybitFetcher - клиент публичного API Bybit для получения свечей и тикеров
type BybitFetcher struct {
	httpClient *http.Client
	baseURL    string
	category   string // "spot" или "linear"
}

// NewBybitFetcher создает новый клиент публичного API Bybit
func NewBybitFetcher(baseURL, category string, timeout time.Duration) *BybitFetcher {
	if category == "" {
		category = "spot"
	}
	return &BybitFetcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		category:   category,
	}
}

// Ответ Bybit API v5
type bybitResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

type bybitKlineResult struct {
	Symbol string     `json:"symbol"`
	List   [][]string `json:"list"`
}

type bybitTickerResult struct {
	List []struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"list"`
}

// FetchCandles загружает свечи символа, упорядоченные по времени
// по возрастанию. Любая ошибка возвращается вызывающему; на границе
// конвейера она превращается в пустой ряд с предупреждением.
func (f *BybitFetcher) FetchCandles(symbol, timeframe string, limit int) ([]types.Candle, error) {
	params := url.Values{}
	params.Set("category", f.category)
	params.Set("symbol", toExchangeSymbol(symbol))
	params.Set("interval", toExchangeInterval(timeframe))
	params.Set("limit", strconv.Itoa(limit))

	body, err := f.sendPublicRequest("/v5/market/kline", params)
	if err != nil {
		return nil, fmt.Errorf("BybitFetcher.FetchCandles: %w", err)
	}

	var result bybitKlineResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("BybitFetcher.FetchCandles: разбор ответа: %w", err)
	}

	candles := make([]types.Candle, 0, len(result.List))
	for _, row := range result.List {
		candle, err := parseKlineRow(symbol, row)
		if err != nil {
			logger.Warn("⚠️ Пропущена некорректная свеча %s: %v", symbol, err)
			continue
		}
		candles = append(candles, candle)
	}

	// Bybit отдаёт свечи новыми вперёд
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	return candles, nil
}

// FetchPrices возвращает последние цены для набора символов
func (f *BybitFetcher) FetchPrices(symbols []string) (map[string]float64, error) {
	params := url.Values{}
	params.Set("category", f.category)

	body, err := f.sendPublicRequest("/v5/market/tickers", params)
	if err != nil {
		return nil, fmt.Errorf("BybitFetcher.FetchPrices: %w", err)
	}

	var result bybitTickerResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("BybitFetcher.FetchPrices: разбор ответа: %w", err)
	}

	wanted := make(map[string]string, len(symbols)) // биржевой символ -> наш
	for _, s := range symbols {
		wanted[toExchangeSymbol(s)] = s
	}

	prices := make(map[string]float64, len(symbols))
	for _, ticker := range result.List {
		symbol, ok := wanted[ticker.Symbol]
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(ticker.LastPrice, 64)
		if err != nil {
			continue
		}
		prices[symbol] = price
	}
	return prices, nil
}

// sendPublicRequest отправляет публичный запрос к API
func (f *BybitFetcher) sendPublicRequest(endpoint string, params url.Values) (json.RawMessage, error) {
	apiURL := f.baseURL + endpoint
	if len(params) > 0 {
		apiURL = apiURL + "?" + params.Encode()
	}

	resp, err := f.httpClient.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("запрос %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("запрос %s: статус %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("чтение ответа %s: %w", endpoint, err)
	}

	var envelope bybitResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("разбор ответа %s: %w", endpoint, err)
	}
	if envelope.RetCode != 0 {
		return nil, fmt.Errorf("API ошибка %s: %s (код %d)", endpoint, envelope.RetMsg, envelope.RetCode)
	}

	return envelope.Result, nil
}

// parseKlineRow разбирает одну строку свечи формата Bybit:
// [startTime, open, high, low, close, volume, turnover]
func parseKlineRow(symbol string, row []string) (types.Candle, error) {
	if len(row) < 6 {
		return types.Candle{}, fmt.Errorf("неполная строка свечи: %d полей", len(row))
	}

	ms, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("метка времени: %w", err)
	}

	values := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return types.Candle{}, fmt.Errorf("поле %d: %w", i, err)
		}
		values[i-1] = v
	}

	return types.Candle{
		Timestamp: time.UnixMilli(ms).UTC(),
		Symbol:    symbol,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

// toExchangeSymbol приводит "BTC/USDT" к биржевому виду "BTCUSDT"
func toExchangeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// toExchangeInterval приводит таймфрейм к формату Bybit v5
func toExchangeInterval(timeframe string) string {
	switch strings.ToLower(timeframe) {
	case "1m":
		return "1"
	case "5m":
		return "5"
	case "15m":
		return "15"
	case "30m":
		return "30"
	case "1h":
		return "60"
	case "4h":
		return "240"
	case "1d":
		return "D"
	case "1w":
		return "W"
	default:
		return "60"
	}
}
