// internal/infrastructure/persistence/postgres/connection.go
package postgres

import (
	"fmt"
	"path/filepath"
	"time"

	"crypto-signal-trading-bot/internal/config"
	"crypto-signal-trading-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect открывает пул соединений к PostgreSQL и применяет миграции
func Connect(cfg *config.DBConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Настройки пула соединений
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Проверка подключения
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("✅ Подключение к PostgreSQL установлено")

	// Выполняем миграции
	if cfg.MigrationsPath != "" {
		if err := RunMigrations(db, cfg.MigrationsPath); err != nil {
			// Не падаем, если миграции не удались, но логируем ошибку
			logger.Error("❌ Не удалось применить миграции: %v", err)
		}
	}

	return db, nil
}

// RunMigrations применяет все миграции из директории
func RunMigrations(db *sqlx.DB, migrationsPath string) error {
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	logger.Info("📂 Применение миграций из: %s", absPath)

	migrator := NewMigrator(db)

	if err := migrator.Init(); err != nil {
		return fmt.Errorf("failed to init migrations table: %w", err)
	}
	if err := migrator.LoadMigrations(absPath); err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrator.Migrate(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("✅ Миграции базы данных применены")
	return nil
}
