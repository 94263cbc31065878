package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-promoter-inventory/internal/config"
	"go-promoter-inventory/internal/handler"
	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"
	"go-promoter-inventory/internal/service"
	"go-promoter-inventory/internal/ws"
	"go-promoter-inventory/pkg/database"
	"go-promoter-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(logger.Config{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	// 2. Setup Database
	db, err := openDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if err := repository.AutoMigrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}

	// 3. Seed a demo catalog on empty databases
	if cfg.App.SeedDemo {
		seedDemoCatalog(db, zl)
	}

	// 4. Setup WebSocket Hub
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	wsHub := ws.NewHub(zl)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	catalogRepo := repository.NewCatalogRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)

	ledgerService := service.NewLedgerService(ledgerRepo, wsHub, zl)
	aggregationService := service.NewAggregationService(catalogRepo, txRepo, cfg.Ledger.ScanBatchSize, zl)
	returnService := service.NewReconciliationService(ledgerService, aggregationService, catalogRepo, cfg.Ledger.PendingReturnTTL, zl)
	bulkService := service.NewBulkService(ledgerService, returnService, zl)
	historyService := service.NewHistoryService(txRepo)
	auditService := service.NewAuditService(catalogRepo, txRepo, cfg.Ledger.ScanBatchSize, zl)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, X-Employee-ID",
	}))

	// 7. Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})

	handler.RegisterRoutes(app.Group("/api/v1"), handler.Handlers{
		Transactions: handler.NewTransactionHandler(ledgerService, returnService, bulkService, historyService),
		Returns:      handler.NewReturnHandler(returnService),
		Stock:        handler.NewStockHandler(aggregationService, auditService),
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			zl.Panic("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	zl.Info("server exited")
}

func openDatabase(cfg *config.Config, zl *zap.Logger) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return database.ConnectSQLite(cfg.Database.SQLitePath, zl)
	case "postgres":
		level := gormlogger.Warn
		if cfg.IsDevelopment() {
			level = gormlogger.Info
		}
		return database.ConnectPostgres(database.Options{
			DSN:             cfg.Database.DSN(),
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        level,
		}, zl)
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
}

// seedDemoCatalog creates a brand, two promoters and a few sized items if the
// database has no brands yet.
func seedDemoCatalog(db *gorm.DB, zl *zap.Logger) {
	ctx := context.Background()
	catalog := repository.NewCatalogRepo(db)

	n, err := catalog.CountBrands(ctx)
	if err != nil {
		zl.Warn("seed: failed to count brands", zap.Error(err))
		return
	}
	if n > 0 {
		return
	}

	brand := &model.Brand{Name: "Demo Brand", IsActive: true}
	if err := catalog.CreateBrand(ctx, brand); err != nil {
		zl.Warn("seed: failed to create brand", zap.Error(err))
		return
	}

	for _, name := range []string{"Demo Promoter A", "Demo Promoter B"} {
		if err := catalog.CreatePromoter(ctx, &model.Promoter{Name: name, IsActive: true}); err != nil {
			zl.Warn("seed: failed to create promoter", zap.String("name", name), zap.Error(err))
		}
	}

	items := []*model.Item{
		{BrandID: brand.ID, Name: "Event T-Shirt", ProductID: "TEE-001", IsActive: true, Sizes: []model.ItemSize{
			{Size: "S", OriginalQuantity: 20}, {Size: "M", OriginalQuantity: 30}, {Size: "L", OriginalQuantity: 25},
		}},
		{BrandID: brand.ID, Name: "Cap", ProductID: "CAP-001", IsActive: true, Sizes: []model.ItemSize{
			{Size: "One Size", OriginalQuantity: 50},
		}},
		{BrandID: brand.ID, Name: "Tote Bag", ProductID: "BAG-001", IsActive: true, Sizes: []model.ItemSize{
			{Size: "One Size", OriginalQuantity: 40},
		}},
	}
	for _, item := range items {
		if err := catalog.CreateItem(ctx, item); err != nil {
			zl.Warn("seed: failed to create item", zap.String("name", item.Name), zap.Error(err))
		}
	}
	zl.Info("seed: demo catalog created", zap.Stringer("brand_id", brand.ID), zap.Int("items", len(items)))
}
