// config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура конфигурации приложения
type Config struct {
	// Exchange API
	BaseURL  string
	Category string // "spot" или "linear"

	// News API
	NewsBaseURL string
	NewsAPIKey  string

	// Symbols
	Symbols         []string
	SmallCapSymbols []string
	Timeframes      []string
	CandleLimit     int

	// Virtual Trading
	InitialBalance float64
	FeeRate        float64
	TradingEnabled bool
	TradeAmountUSD float64

	// Database
	DB DBConfig

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisEnabled  bool

	// Live ticker stream
	WSEnabled bool
	WSBaseURL string

	// Logging
	LogLevel string
	LogFile  string
	Debug    bool

	// Pipeline
	FetchInterval  time.Duration
	RequestTimeout time.Duration
}

// DBConfig - настройки подключения к PostgreSQL
type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	SSLMode        string
	MaxConns       int
	MaxIdle        int
	MigrationsPath string
	Enabled        bool
}

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(envPath string) (*Config, error) {
	// Загружаем .env файл
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
	}

	config := &Config{
		// Exchange
		BaseURL:  getEnvString("EXCHANGE_API_URL", "https://api.bybit.com"),
		Category: getEnvString("EXCHANGE_CATEGORY", "spot"),

		// News
		NewsBaseURL: getEnvString("NEWS_API_URL", "https://cryptopanic.com/api/v1"),
		NewsAPIKey:  getEnvString("CRYPTOPANIC_API_KEY", ""),

		// Symbols
		Symbols:         parseList(getEnvString("SYMBOLS", "BTC/USDT,ETH/USDT,SOL/USDT,XRP/USDT,ADA/USDT")),
		SmallCapSymbols: parseList(getEnvString("SMALL_CAP_SYMBOLS", "SHIB,MATIC")),
		Timeframes:      parseList(getEnvString("TIMEFRAMES", "1h,4h,1d")),
		CandleLimit:     getEnvInt("CANDLE_LIMIT", 250),

		// Virtual Trading
		InitialBalance: getEnvFloat("INITIAL_BALANCE", 10000.0),
		FeeRate:        getEnvFloat("FEE_RATE", 0.001),
		TradingEnabled: getEnvBool("TRADING_ENABLED", false),
		TradeAmountUSD: getEnvFloat("TRADE_AMOUNT_USD", 100.0),

		// Database
		DB: DBConfig{
			Host:           getEnvString("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnvString("DB_USER", "cryptobot"),
			Password:       getEnvString("DB_PASSWORD", "password"),
			Database:       getEnvString("DB_NAME", "cryptobot_db"),
			SSLMode:        getEnvString("DB_SSLMODE", "disable"),
			MaxConns:       getEnvInt("DB_MAX_CONNS", 25),
			MaxIdle:        getEnvInt("DB_MAX_IDLE", 10),
			MigrationsPath: getEnvString("DB_MIGRATIONS_PATH", "internal/infrastructure/persistence/postgres/migrations"),
			Enabled:        getEnvBool("DB_ENABLED", true),
		},

		// Redis
		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),

		// Live ticker stream
		WSEnabled: getEnvBool("WS_ENABLED", false),
		WSBaseURL: getEnvString("WS_BASE_URL", "wss://stream.bybit.com/v5/public/spot"),

		// Logging
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		LogFile:  getEnvString("LOG_FILE", "logs/bot.log"),
		Debug:    getEnvBool("DEBUG", false),

		// Pipeline
		FetchInterval:  time.Duration(getEnvInt("FETCH_INTERVAL_MINUTES", 60)) * time.Minute,
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT", 30)) * time.Second,
	}

	return config, nil
}

// Вспомогательные функции для чтения переменных окружения

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}

// parseList разбирает список значений, разделённых запятыми
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
