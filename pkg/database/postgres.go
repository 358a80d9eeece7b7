package database

import (
	"context"
	"fmt"
	"misikaMarket/domain"
	"misikaMarket/pkg/config"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func PostgresDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

// InitPostgres opens the primary schema and migrates it.
func InitPostgres(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.IsProduction() {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(PostgresDSN(cfg)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.OTPVerification{},
		&domain.Category{},
		&domain.Product{},
		&domain.Address{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Payment{},
		&domain.Contact{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

const legacySchema = `
CREATE TABLE IF NOT EXISTS userquery (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	mobile_number TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	city          TEXT NOT NULL DEFAULT '',
	password      TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS legacy_otp (
	email      TEXT NOT NULL,
	purpose    TEXT NOT NULL,
	code       TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	payload    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (email, purpose)
);`

// InitLegacyPool opens the raw-SQL pool for the userquery store. It reuses the
// primary database when no separate URL is configured.
func InitLegacyPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := cfg.Legacy.URL
	if dsn == "" {
		dsn = PostgresDSN(cfg)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid legacy database config: %w", err)
	}
	if cfg.Legacy.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Legacy.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach legacy database: %w", err)
	}

	if _, err := pool.Exec(ctx, legacySchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to prepare legacy schema: %w", err)
	}

	return pool, nil
}
