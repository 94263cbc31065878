package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-promoter-inventory/internal/config"
	"go-promoter-inventory/internal/repository"
	"go-promoter-inventory/internal/service"
	"go-promoter-inventory/pkg/database"
	"go-promoter-inventory/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// audit compares every size's in_circulation counter with the promoter
// holdings derived from the ledger and prints the report as JSON. It exits
// with status 2 when the two disagree.
func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: "console"})
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer zl.Sync()

	// 2. Setup Database
	var db *gorm.DB
	if cfg.Database.Driver == "sqlite" {
		db, err = database.ConnectSQLite(cfg.Database.SQLitePath, zl)
	} else {
		db, err = database.ConnectPostgres(database.Options{
			DSN:          cfg.Database.DSN(),
			MaxOpenConns: 2,
			MaxIdleConns: 1,
			LogLevel:     gormlogger.Warn,
		}, zl)
	}
	if err != nil {
		zl.Fatal("❌ database connection failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Run audit
	audit := service.NewAuditService(
		repository.NewCatalogRepo(db),
		repository.NewTransactionRepo(db),
		cfg.Ledger.ScanBatchSize,
		zl,
	)
	report, err := audit.Circulation(ctx)
	if err != nil {
		zl.Fatal("❌ audit failed", zap.Error(err))
	}

	// 4. Print report
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		zl.Fatal("❌ failed to write report", zap.Error(err))
	}

	if !report.Consistent {
		zl.Warn("❌ circulation does not match ledger holdings",
			zap.Int("mismatches", len(report.Mismatches)),
			zap.Int("negative_holdings", len(report.NegativeHoldings)),
		)
		zl.Sync()
		os.Exit(2)
	}
	zl.Info("✅ circulation matches ledger holdings", zap.Int("checked_sizes", report.CheckedSizes))
}
