package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-promoter-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHistory(t *testing.T, f *fixture) {
	t.Helper()
	for _, s := range []struct {
		action model.Action
		qty    int
	}{
		{model.ActionTakeOut, 4},
		{model.ActionBurn, 1},
		{model.ActionReturn, 1},
		{model.ActionRestock, 2},
	} {
		_, err := f.record(t, s.action, s.qty)
		require.NoError(t, err)
	}
}

func TestTransactionListFilters(t *testing.T) {
	f := newFixture(t, 10)
	seedHistory(t, f)
	ctx := context.Background()

	all, total, err := f.txs.List(ctx, TransactionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "newest first")
	}
	require.NotNil(t, all[0].Item)
	assert.Equal(t, "Event Tee", all[0].Item.Name)

	burns, total, err := f.txs.List(ctx, TransactionFilter{Type: model.ActionBurn})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, burns, 1)
	assert.Equal(t, 1, burns[0].Quantity)

	promoterID := f.promoter.ID
	mine, total, err := f.txs.List(ctx, TransactionFilter{PromoterID: &promoterID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, mine, 3)

	brandID := f.brand.ID
	_, total, err = f.txs.List(ctx, TransactionFilter{BrandID: &brandID, Search: "tee"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	_, total, err = f.txs.List(ctx, TransactionFilter{Search: "hoodie"})
	require.NoError(t, err)
	assert.Zero(t, total)

	page, total, err := f.txs.List(ctx, TransactionFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page, 1)
}

func TestTransactionFindByID(t *testing.T) {
	f := newFixture(t, 10)
	receipt, err := f.record(t, model.ActionTakeOut, 2)
	require.NoError(t, err)

	got, err := f.txs.FindByID(context.Background(), receipt.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionTakeOut, got.Type)
	require.NotNil(t, got.Promoter)
	assert.Equal(t, "Rina", got.Promoter.Name)

	_, err = f.txs.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionScanBatches(t *testing.T) {
	f := newFixture(t, 10)
	seedHistory(t, f)

	promoterID := f.promoter.ID
	var batches, rows int
	err := f.txs.Scan(context.Background(), ScanFilter{PromoterID: &promoterID}, 2, func(batch []model.StockTransaction) error {
		batches++
		rows += len(batch)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, batches)
	assert.Equal(t, 3, rows)

	rows = 0
	err = f.txs.Scan(context.Background(), ScanFilter{WithPromoter: true}, 10, func(batch []model.StockTransaction) error {
		for _, r := range batch {
			assert.NotNil(t, r.PromoterID)
		}
		rows += len(batch)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
}

func TestTransactionScanStopsOnError(t *testing.T) {
	f := newFixture(t, 10)
	seedHistory(t, f)

	boom := errors.New("boom")
	err := f.txs.Scan(context.Background(), ScanFilter{}, 1, func([]model.StockTransaction) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestGetStockMovement(t *testing.T) {
	f := newFixture(t, 10)
	seedHistory(t, f)

	now := time.Now()
	data, err := f.txs.GetStockMovement(context.Background(), now.Add(-24*time.Hour), now.Add(time.Hour), nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var takeOut, returned, burned, restock int
	for _, d := range data {
		takeOut += d.TakeOut
		returned += d.Returned
		burned += d.Burned
		restock += d.Restock
	}
	assert.Equal(t, 4, takeOut)
	assert.Equal(t, 1, returned)
	assert.Equal(t, 1, burned)
	assert.Equal(t, 2, restock)

	otherBrand := uuid.New()
	data, err = f.txs.GetStockMovement(context.Background(), now.Add(-24*time.Hour), now.Add(time.Hour), &otherBrand)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestCatalogFindSizesGrouped(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	otherBrand := model.Brand{Name: "Globex", IsActive: true}
	require.NoError(t, f.catalog.CreateBrand(ctx, &otherBrand))
	hat := model.Item{BrandID: otherBrand.ID, Name: "Cap", IsActive: true,
		Sizes: []model.ItemSize{{Size: "S", OriginalQuantity: 1}, {Size: "L", OriginalQuantity: 2}}}
	require.NoError(t, f.catalog.CreateItem(ctx, &hat))

	all, err := f.catalog.FindSizesGrouped(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all[hat.ID], 2)

	brandID := f.brand.ID
	mine, err := f.catalog.FindSizesGrouped(ctx, &brandID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 10, mine[f.item.ID][0].AvailableQuantity)
}
