package service

import (
	"context"
	"testing"

	"go-promoter-inventory/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCirculationAuditConsistent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.ledger.TakeOut(ctx, e.request(0, 4))
	require.NoError(t, err)
	_, err = e.ledger.Burn(ctx, e.request(0, 1))
	require.NoError(t, err)
	_, err = e.ledger.TakeOut(ctx, e.request(1, 2))
	require.NoError(t, err)

	report, err := e.audit.Circulation(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 2, report.CheckedSizes)
	assert.Equal(t, 3, report.ScannedRows)
	assert.Empty(t, report.Mismatches)
}

func TestCirculationAuditFindsDrift(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.ledger.TakeOut(ctx, e.request(0, 4))
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&model.ItemSize{}).
		Where("id = ?", e.item.Sizes[0].ID).
		Update("in_circulation", 1).Error)

	report, err := e.audit.Circulation(ctx)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, 1, report.Mismatches[0].InCirculation)
	assert.Equal(t, 4, report.Mismatches[0].Held)
	assert.Equal(t, -3, report.Mismatches[0].Difference)
}

func TestCirculationAuditReportsOverReturn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.ledger.Return(ctx, e.request(1, 1))
	require.NoError(t, err)

	report, err := e.audit.Circulation(ctx)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.Empty(t, report.Mismatches)
	require.Len(t, report.NegativeHoldings, 1)
}
