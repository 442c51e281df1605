package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crypto-signal-trading-bot/internal/adapters/market"
	"crypto-signal-trading-bot/internal/adapters/news"
	"crypto-signal-trading-bot/internal/analysis/detector"
	"crypto-signal-trading-bot/internal/analysis/fusion"
	"crypto-signal-trading-bot/internal/config"
	"crypto-signal-trading-bot/internal/infrastructure/cache/redis"
	"crypto-signal-trading-bot/internal/infrastructure/persistence/postgres"
	market_repo "crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/repository/market"
	news_repo "crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/repository/news"
	signals_repo "crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/repository/signals"
	virtual_repo "crypto-signal-trading-bot/internal/infrastructure/persistence/postgres/repository/virtual"
	"crypto-signal-trading-bot/internal/pipeline"
	"crypto-signal-trading-bot/internal/trading/auto"
	"crypto-signal-trading-bot/internal/trading/virtual"
	"crypto-signal-trading-bot/pkg/logger"
	"crypto-signal-trading-bot/pkg/utils"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	if err := logger.InitGlobal(cfg.LogFile, cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}

	printHeader("ГЕНЕРАТОР ТОРГОВЫХ СИГНАЛОВ - ВИРТУАЛЬНАЯ ТОРГОВЛЯ")
	fmt.Printf("🔧 Конфигурация:\n")
	fmt.Printf("   Биржа: %s (%s)\n", cfg.BaseURL, cfg.Category)
	fmt.Printf("   Символы: %s\n", strings.Join(cfg.Symbols, ", "))
	fmt.Printf("   Таймфреймы: %s\n", strings.Join(cfg.Timeframes, ", "))
	fmt.Printf("   Интервал цикла: %s\n", cfg.FetchInterval)
	fmt.Printf("   Стартовый баланс: $%.2f\n", cfg.InitialBalance)
	fmt.Printf("   Комиссия: %.3f%%\n", cfg.FeeRate*100)
	if cfg.TradingEnabled {
		fmt.Printf("   Автоторговля: ВКЛ ($%.0f на сигнал)\n", cfg.TradeAmountUSD)
	} else {
		fmt.Printf("   Автоторговля: ВЫКЛ\n")
	}
	fmt.Println()

	deps := pipeline.Deps{
		Fetcher:     market.NewBybitFetcher(cfg.BaseURL, cfg.Category, cfg.RequestTimeout),
		NewsFetcher: news.NewFetcher(cfg.NewsBaseURL, cfg.NewsAPIKey, cfg.RequestTimeout),
		Detector:    detector.NewDetector(cfg.SmallCapSymbols),
		Generator:   fusion.NewGenerator(nil),
	}

	// PostgreSQL: опциональное зеркало данных
	var accountStorage virtual.Storage
	if cfg.DB.Enabled {
		db, err := postgres.Connect(&cfg.DB)
		if err != nil {
			logger.Error("❌ PostgreSQL недоступен, работаем без БД: %v", err)
		} else {
			defer db.Close()
			deps.MarketRepo = market_repo.NewMarketRepository(db)
			deps.NewsRepo = news_repo.NewNewsRepository(db)
			deps.SignalRepo = signals_repo.NewSignalRepository(db)
			accountStorage = virtual_repo.NewVirtualRepository(db)
			fmt.Println("🗄️  PostgreSQL подключен")
		}
	}

	// Redis: кэш цен и последних сигналов
	if cfg.RedisEnabled {
		cache := redis.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx); err != nil {
			logger.Error("❌ Redis недоступен, работаем без кэша: %v", err)
		} else {
			defer cache.Close()
			deps.Cache = cache
			fmt.Println("⚡ Redis подключен")
		}
		cancel()
	}

	deps.Account = virtual.NewAccount(cfg.InitialBalance, cfg.FeeRate, accountStorage)
	deps.Trader = auto.NewTrader(deps.Account, cfg.TradeAmountUSD, cfg.TradingEnabled)

	// WebSocket-поток тикеров для кэша цен
	var watcher *market.TickerWatcher
	if cfg.WSEnabled && deps.Cache != nil {
		watcher = market.NewTickerWatcher(cfg.WSBaseURL, cfg.Symbols, deps.Cache)
		watcher.Start()
		fmt.Println("📡 WebSocket-поток тикеров запущен")
	}
	fmt.Println()

	p := pipeline.NewPipeline(cfg, deps)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	startTime := time.Now()
	fmt.Println("🚀 Бот запущен")
	fmt.Println("🎮 Управление:")
	fmt.Println("   Ctrl+C - Остановить бота")
	fmt.Println()

	// Ожидание сигнала остановки
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan

	fmt.Println()
	printHeader("Завершение работы")
	cancel()
	if watcher != nil {
		watcher.Stop()
	}

	fmt.Printf("⏱️  Время работы: %s\n", utils.FormatDuration(time.Since(startTime)))
	value := deps.Account.GetPortfolioValue(nil)
	fmt.Printf("💼 Баланс USDT: %.2f (старт $%.2f)\n", value.USDTBalance, cfg.InitialBalance)
	fmt.Printf("📜 Ордеров за сессию: %d\n", len(deps.Account.GetOrderHistory("", 0)))

	logger.GetLogger().Close()
	fmt.Println("✅ Бот остановлен корректно")
}

func printHeader(text string) {
	width := 80
	padding := (width - len(text)) / 2
	if padding < 0 {
		padding = 0
	}

	fmt.Println(strings.Repeat("═", width))
	fmt.Printf("%s%s\n", strings.Repeat(" ", padding), text)
	fmt.Println(strings.Repeat("═", width))
}
