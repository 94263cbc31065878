package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Ledger   LedgerConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	SeedDemo bool
}

type DatabaseConfig struct {
	Driver          string
	SQLitePath      string
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// LedgerConfig tunes the reconciliation engine and the aggregation scans.
type LedgerConfig struct {
	PendingReturnTTL time.Duration
	ScanBatchSize    int
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* parts.
func (p DatabaseConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode, p.TimeZone,
	)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	ttl, err := time.ParseDuration(v.GetString("LEDGER_PENDING_RETURN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_PENDING_RETURN_TTL -> %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("PORT"),
			SeedDemo: v.GetBool("SEED_DEMO"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DB_DRIVER"),
			SQLitePath:      v.GetString("DB_SQLITE_PATH"),
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			TimeZone:        v.GetString("DB_TIMEZONE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Logger: LoggerConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Encoding: v.GetString("LOG_ENCODING"),
		},
		Ledger: LedgerConfig{
			PendingReturnTTL: ttl,
			ScanBatchSize:    v.GetInt("LEDGER_SCAN_BATCH_SIZE"),
		},
	}

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Ledger.ScanBatchSize <= 0 {
		return nil, fmt.Errorf("LEDGER_SCAN_BATCH_SIZE must be positive, got %d", cfg.Ledger.ScanBatchSize)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Promoter Inventory v1.0")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PORT", "3000")
	v.SetDefault("SEED_DEMO", false)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_SQLITE_PATH", "inventory.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "promoter_inventory")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")

	v.SetDefault("LEDGER_PENDING_RETURN_TTL", "10m")
	v.SetDefault("LEDGER_SCAN_BATCH_SIZE", 500)
}
