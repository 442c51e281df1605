// internal/adapters/market/ticker_watcher.go
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"crypto-signal-trading-bot/pkg/logger"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	pingInterval  = 20 * time.Second
	maxRetryDelay = 60 * time.Second
)

// PriceCacheSetter — узкий интерфейс записи актуальных цен.
// Реализуется Redis-кэшем.
type PriceCacheSetter interface {
	SetPrice(symbol string, price float64)
}

// TickerWatcher подписывается на публичный WebSocket биржи и держит
// кэш цен тёплым между циклами обработки.
type TickerWatcher struct {
	wsURL   string
	symbols []string
	cache   PriceCacheSetter

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewTickerWatcher создаёт наблюдатель тикеров для набора символов
func NewTickerWatcher(wsURL string, symbols []string, cache PriceCacheSetter) *TickerWatcher {
	return &TickerWatcher{
		wsURL:   wsURL,
		symbols: symbols,
		cache:   cache,
		stopCh:  make(chan struct{}),
	}
}

// Start запускает горутину WS-соединения с авто-переподключением
func (w *TickerWatcher) Start() {
	w.wg.Add(1)
	go w.connectLoop()

	logger.Info("🌊 TickerWatcher: запущен, символов для подписки: %d", len(w.symbols))
}

// Stop останавливает наблюдатель и ждёт завершения горутин
func (w *TickerWatcher) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	logger.Info("🛑 TickerWatcher: остановлен")
}

// connectLoop — WS-соединение с экспоненциальным backoff при переподключении
func (w *TickerWatcher) connectLoop() {
	defer w.wg.Done()

	retryDelay := 2 * time.Second

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		if err := w.runConnection(); err != nil {
			logger.Warn("⚠️ TickerWatcher: соединение разорвано: %v, повтор через %s", err, retryDelay)
		}

		select {
		case <-w.stopCh:
			return
		case <-time.After(retryDelay):
		}

		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

// runConnection устанавливает соединение, подписывается на тикеры
// и читает сообщения до разрыва или остановки
func (w *TickerWatcher) runConnection() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, _, err := websocket.Dial(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Подписка на тикеры всех символов
	topics := make([]string, 0, len(w.symbols))
	for _, s := range w.symbols {
		topics = append(topics, "tickers."+toExchangeSymbol(s))
	}
	subscribe := map[string]interface{}{
		"op":   "subscribe",
		"args": topics,
	}
	if err := wsjson.Write(ctx, conn, subscribe); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	logger.Info("📡 TickerWatcher: подписка на %d тикеров", len(topics))

	// Останавливаем чтение при сигнале остановки
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Периодический ping, чтобы биржа не закрыла соединение
	go w.pingLoop(ctx, conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			select {
			case <-w.stopCh:
				return nil
			default:
				return fmt.Errorf("read: %w", err)
			}
		}
		w.handleMessage(data)
	}
}

func (w *TickerWatcher) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wsjson.Write(ctx, conn, map[string]string{"op": "ping"}); err != nil {
				return
			}
		}
	}
}

// Сообщение тикера Bybit v5
type tickerMessage struct {
	Topic string `json:"topic"`
	Data  struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"data"`
}

// handleMessage разбирает сообщение тикера и обновляет кэш цен
func (w *TickerWatcher) handleMessage(data []byte) {
	var msg tickerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !strings.HasPrefix(msg.Topic, "tickers.") || msg.Data.LastPrice == "" {
		return
	}

	price, err := strconv.ParseFloat(msg.Data.LastPrice, 64)
	if err != nil {
		return
	}

	w.cache.SetPrice(fromExchangeSymbol(msg.Data.Symbol), price)
}

// fromExchangeSymbol восстанавливает "BTC/USDT" из биржевого "BTCUSDT".
// Распознаются только пары с котировкой USDT, прочие возвращаются как есть.
func fromExchangeSymbol(symbol string) string {
	if strings.HasSuffix(symbol, "USDT") && len(symbol) > 4 {
		return symbol[:len(symbol)-4] + "/USDT"
	}
	return symbol
}
