package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	cases := map[string]Action{
		"take-out": ActionTakeOut,
		"take_out": ActionTakeOut,
		"return":   ActionReturn,
		"burn":     ActionBurn,
		"restock":  ActionRestock,
	}
	for in, want := range cases {
		got, err := ParseAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseAction("steal")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestNewStockTransactionVariants(t *testing.T) {
	item, sz := uuid.New(), uuid.New()
	promoter := uuid.New()

	tests := []struct {
		name     string
		action   Action
		qty      int
		promoter *uuid.UUID
		employee string
		wantErr  error
	}{
		{"take out ok", ActionTakeOut, 1, &promoter, "emp", nil},
		{"take out without promoter", ActionTakeOut, 1, nil, "emp", ErrPromoterRequired},
		{"burn without promoter", ActionBurn, 1, nil, "emp", ErrPromoterRequired},
		{"return with nil uuid", ActionReturn, 1, &uuid.Nil, "emp", ErrPromoterRequired},
		{"restock ok", ActionRestock, 5, nil, "emp", nil},
		{"restock with promoter", ActionRestock, 5, &promoter, "emp", ErrPromoterForbidden},
		{"zero quantity", ActionTakeOut, 0, &promoter, "emp", ErrNonPositiveQuantity},
		{"negative quantity", ActionRestock, -3, nil, "emp", ErrNonPositiveQuantity},
		{"missing employee", ActionRestock, 1, nil, "", ErrEmployeeRequired},
		{"unknown action", Action("gift"), 1, &promoter, "emp", ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewStockTransaction(tt.action, item, sz, tt.qty, tt.promoter, tt.employee, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tx)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, tx.ID)
			assert.Equal(t, tt.action, tx.Type)
		})
	}
}
