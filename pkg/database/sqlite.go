package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectSQLite opens a local SQLite store. SQLite has a single writer, so the
// pool is pinned to one connection and every ledger transaction runs serially.
func ConnectSQLite(path string, l *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: NewGormLogger(l, logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open sqlite -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	l.Info("database connection established", zap.String("driver", "sqlite"), zap.String("path", path))
	return db, nil
}

// InMemorySQLiteDSN names a private in-memory database that lives as long as
// its single pooled connection.
func InMemorySQLiteDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
}
