package repository

import (
	"fmt"

	"go-promoter-inventory/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables the ledger needs, including the
// non-negative CHECK constraints on item_sizes and stock_transactions.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Brand{},
		&model.Promoter{},
		&model.Item{},
		&model.ItemSize{},
		&model.StockTransaction{},
	); err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", err)
	}
	return nil
}
