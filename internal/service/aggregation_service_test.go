package service

import (
	"context"
	"testing"
	"time"

	"go-promoter-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoterHoldingsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.ledger.TakeOut(ctx, e.request(0, 4))
	require.NoError(t, err)
	_, err = e.ledger.TakeOut(ctx, e.request(1, 2))
	require.NoError(t, err)
	_, err = e.ledger.Burn(ctx, e.request(0, 1))
	require.NoError(t, err)
	_, err = e.ledger.Return(ctx, e.request(1, 2))
	require.NoError(t, err)
	_, err = e.ledger.Restock(ctx, e.restockRequest(0, 5))
	require.NoError(t, err)

	first, err := e.aggregation.PromoterHoldings(ctx, e.promoter.ID)
	require.NoError(t, err)
	second, err := e.aggregation.PromoterHoldings(ctx, e.promoter.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []model.Holding{{
		PromoterID: e.promoter.ID,
		ItemID:     e.item.ID,
		ItemSizeID: e.item.Sizes[0].ID,
		Quantity:   3,
	}}, first.Holdings)
	assert.Empty(t, first.Anomalies)
}

func TestPromoterHoldingsReportsAnomalies(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.ledger.Return(ctx, e.request(1, 2))
	require.NoError(t, err)

	got, err := e.aggregation.PromoterHoldings(ctx, e.promoter.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Holdings)
	require.Len(t, got.Anomalies, 1)
	assert.Equal(t, -2, got.Anomalies[0].Quantity)

	net, err := e.aggregation.HoldingOf(ctx, e.promoter.ID, e.item.ID, e.item.Sizes[1].ID)
	require.NoError(t, err)
	assert.Equal(t, -2, net)
}

func TestPromoterHoldingsRequiresPromoter(t *testing.T) {
	e := newEnv(t)
	_, err := e.aggregation.PromoterHoldings(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestItemQuantities(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.ledger.TakeOut(ctx, e.request(0, 4))
	require.NoError(t, err)

	got, err := e.aggregation.ItemQuantities(ctx, e.item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Quantities{Original: 14, Available: 10, InCirculation: 4, Total: 14}, got.Quantities)
	require.Len(t, got.Sizes, 2)
	assert.Empty(t, got.Faults)

	_, err = e.aggregation.ItemQuantities(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.ledger.TakeOut(ctx, e.request(1, 1))
	require.NoError(t, err)

	got, err := e.aggregation.Summary(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, model.Quantities{Original: 14, Available: 13, InCirculation: 1, Total: 14}, got.Total)

	other := uuid.New()
	empty, err := e.aggregation.Summary(ctx, &other)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, model.Quantities{}, empty.Total)
}

func TestGetStockMovementRejectsInvertedRange(t *testing.T) {
	e := newEnv(t)
	now := time.Now()

	_, err := e.aggregation.GetStockMovement(context.Background(), now, now.Add(-time.Hour), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
