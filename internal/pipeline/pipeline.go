// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-signal-trading-bot/internal/adapters/market"
	"crypto-signal-trading-bot/internal/adapters/news"
	"crypto-signal-trading-bot/internal/analysis/detector"
	"crypto-signal-trading-bot/internal/analysis/fusion"
	"crypto-signal-trading-bot/internal/analysis/indicators"
	"crypto-signal-trading-bot/internal/config"
	"crypto-signal-trading-bot/internal/infrastructure/cache/redis"
	market_repo "crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/repository/market"
	news_repo "crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/repository/news"
	signals_repo "crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/repository/signals"
	"crypto-signal-trading-bot/internal/trading/auto"
	"crypto-signal-trading-bot/internal/trading/virtual"
	"crypto-signal-trading-bot/internal/types"
	"crypto-signal-trading-bot/pkg/logger"
	"crypto-signal-trading-bot/pkg/utils"
)

// Сколько новостей запрашиваем на цикл
const newsLimitPerCycle = 50

// Deps - зависимости пайплайна. Репозитории и кэш могут быть nil,
// если соответствующая инфраструктура выключена в конфигурации.
type Deps struct {
	Fetcher     *market.BybitFetcher
	NewsFetcher *news.Fetcher
	Detector    *detector.Detector
	Generator   *fusion.Generator
	Account     *virtual.Account
	Trader      *auto.Trader
	MarketRepo  market_repo.MarketRepository
	NewsRepo    news_repo.NewsRepository
	SignalRepo  signals_repo.SignalRepository
	Cache       *redis.Cache
}

// Pipeline выполняет один цикл обработки: свечи → индикаторы →
// сигналы → новости → слияние → виртуальная торговля → сохранение.
type Pipeline struct {
	cfg  *config.Config
	deps Deps
}

func NewPipeline(cfg *config.Config, deps Deps) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps}
}

// RunCycle выполняет полный цикл обработки по всем символам
func (p *Pipeline) RunCycle(ctx context.Context) error {
	started := time.Now()
	logger.Info("🔄 Начало цикла обработки (%d символов, %d таймфреймов)",
		len(p.cfg.Symbols), len(p.cfg.Timeframes))

	technicalSignals := p.collectTechnicalSignals(ctx)

	newsItems := p.collectNews()

	fusedSignals := p.deps.Generator.Generate(technicalSignals, newsItems)

	if len(fusedSignals) > 0 {
		if p.deps.SignalRepo != nil {
			if err := p.deps.SignalRepo.Store(fusedSignals); err != nil {
				logger.Error("❌ Ошибка сохранения сигналов: %v", err)
			}
		}
		if p.deps.Cache != nil {
			if err := p.deps.Cache.SetLatestSignals(ctx, fusedSignals); err != nil {
				logger.Warn("⚠️ Не удалось закэшировать сигналы: %v", err)
			}
		}
	}

	executed := p.deps.Trader.ExecuteSignals(fusedSignals)

	p.logPortfolio(ctx)

	logger.Cycle(map[string]string{
		"длительность": utils.FormatDuration(time.Since(started)),
		"тех_сигналов": fmt.Sprintf("%d", len(technicalSignals)),
		"новостей":     fmt.Sprintf("%d", len(newsItems)),
		"сигналов":     fmt.Sprintf("%d", len(fusedSignals)),
		"ордеров":      fmt.Sprintf("%d", len(executed)),
	})
	return nil
}

// collectTechnicalSignals проходит по всем символам и таймфреймам
func (p *Pipeline) collectTechnicalSignals(ctx context.Context) []types.TechnicalSignal {
	var signals []types.TechnicalSignal

	for _, symbol := range p.cfg.Symbols {
		for _, timeframe := range p.cfg.Timeframes {
			select {
			case <-ctx.Done():
				return signals
			default:
			}

			candles, err := p.deps.Fetcher.FetchCandles(symbol, timeframe, p.cfg.CandleLimit)
			if err != nil {
				logger.Error("❌ Ошибка загрузки свечей %s %s: %v", symbol, timeframe, err)
				continue
			}

			if p.deps.MarketRepo != nil {
				if err := p.deps.MarketRepo.Store(candles, timeframe); err != nil {
					logger.Error("❌ Ошибка сохранения свечей %s %s: %v", symbol, timeframe, err)
				}
			}

			rows := indicators.Calculate(candles)
			signal := p.deps.Detector.Detect(rows)
			if signal == nil {
				continue
			}

			logger.Debug("📊 %s %s: %s (score %.1f)",
				symbol, timeframe, signal.Direction, signal.TechnicalScore)
			signals = append(signals, *signal)
		}
	}
	return signals
}

// collectNews загружает новости по базовым валютам отслеживаемых пар
func (p *Pipeline) collectNews() []types.NewsItem {
	currencies := make([]string, 0, len(p.cfg.Symbols))
	for _, symbol := range p.cfg.Symbols {
		currencies = append(currencies, utils.BaseCurrency(symbol))
	}

	items, err := p.deps.NewsFetcher.FetchNews(strings.Join(currencies, ","), newsLimitPerCycle)
	if err != nil {
		logger.Error("❌ Ошибка загрузки новостей: %v", err)
		return nil
	}

	if p.deps.NewsRepo != nil {
		if err := p.deps.NewsRepo.Store(items); err != nil {
			logger.Error("❌ Ошибка сохранения новостей: %v", err)
		}
	}
	return items
}

// logPortfolio выводит текущую стоимость портфеля по рыночным ценам
func (p *Pipeline) logPortfolio(ctx context.Context) {
	prices, err := p.deps.Fetcher.FetchPrices(p.cfg.Symbols)
	if err != nil {
		logger.Warn("⚠️ Не удалось получить цены для оценки портфеля: %v", err)
		return
	}

	if p.deps.Cache != nil {
		if err := p.deps.Cache.SetPrices(ctx, prices); err != nil {
			logger.Warn("⚠️ Не удалось закэшировать цены: %v", err)
		}
	}

	value := p.deps.Account.GetPortfolioValue(prices)
	logger.Info("💼 Портфель: $%.2f (P&L %s, USDT %.2f)",
		value.TotalValue, utils.FormatPercent(value.ProfitLossPct), value.USDTBalance)
}

// Run запускает цикл обработки по таймеру до отмены контекста
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.FetchInterval)
	defer ticker.Stop()

	if err := p.RunCycle(ctx); err != nil {
		logger.Error("❌ Ошибка цикла обработки: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("🛑 Пайплайн остановлен")
			return
		case <-ticker.C:
			if err := p.RunCycle(ctx); err != nil {
				logger.Error("❌ Ошибка цикла обработки: %v", err)
			}
		}
	}
}
