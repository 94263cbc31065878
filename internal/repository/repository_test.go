package repository

import (
	"context"
	"testing"

	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	catalog  CatalogRepository
	ledger   LedgerRepository
	txs      TransactionRepository
	brand    model.Brand
	promoter model.Promoter
	item     model.Item
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.ConnectSQLite(database.InMemorySQLiteDSN(uuid.NewString()), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// newFixture seeds one brand, one promoter and one item with a single size
// whose original and available quantity is original.
func newFixture(t *testing.T, original int) *fixture {
	t.Helper()
	ctx := context.Background()

	db := newTestDB(t)
	f := &fixture{
		db:      db,
		catalog: NewCatalogRepo(db),
		ledger:  NewLedgerRepo(db),
		txs:     NewTransactionRepo(db),
	}

	f.brand = model.Brand{Name: "Acme", IsActive: true}
	require.NoError(t, f.catalog.CreateBrand(ctx, &f.brand))

	f.promoter = model.Promoter{Name: "Rina", IsActive: true}
	require.NoError(t, f.catalog.CreatePromoter(ctx, &f.promoter))

	f.item = model.Item{
		BrandID:   f.brand.ID,
		Name:      "Event Tee",
		ProductID: "TEE-01",
		IsActive:  true,
		Sizes:     []model.ItemSize{{Size: "M", OriginalQuantity: original}},
	}
	require.NoError(t, f.catalog.CreateItem(ctx, &f.item))
	return f
}

func (f *fixture) sizeID() uuid.UUID {
	return f.item.Sizes[0].ID
}

func (f *fixture) entry(t *testing.T, action model.Action, qty int) *model.StockTransaction {
	t.Helper()
	var promoter *uuid.UUID
	if action.RequiresPromoter() {
		id := f.promoter.ID
		promoter = &id
	}
	e, err := model.NewStockTransaction(action, f.item.ID, f.sizeID(), qty, promoter, "emp-1", "")
	require.NoError(t, err)
	return e
}

func (f *fixture) record(t *testing.T, action model.Action, qty int) (*Receipt, error) {
	t.Helper()
	ctx := context.Background()
	e := f.entry(t, action, qty)
	switch action {
	case model.ActionTakeOut:
		return f.ledger.RecordTakeOut(ctx, e)
	case model.ActionReturn:
		return f.ledger.RecordReturn(ctx, e)
	case model.ActionBurn:
		return f.ledger.RecordBurn(ctx, e)
	default:
		return f.ledger.RecordRestock(ctx, e)
	}
}

func (f *fixture) counters(t *testing.T) (available, circulation int) {
	t.Helper()
	size, err := f.catalog.FindSizeByID(context.Background(), f.sizeID())
	require.NoError(t, err)
	return size.AvailableQuantity, size.InCirculation
}

func (f *fixture) countTransactions(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.StockTransaction{}).Count(&n).Error)
	return n
}
