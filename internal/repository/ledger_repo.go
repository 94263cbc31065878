package repository

import (
	"context"
	"fmt"

	"go-promoter-inventory/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Receipt is what a committed ledger write hands back: the appended row and
// the size counters as they stood at commit.
type Receipt struct {
	Transaction *model.StockTransaction `json:"transaction"`
	Size        model.ItemSize          `json:"item_size"`

	// DiscardedQuantity is the part of a return that in_circulation could not
	// absorb because it was already lower than the returned quantity.
	DiscardedQuantity int `json:"discarded_quantity,omitempty"`
}

// LedgerRepository is the only writer of available_quantity and in_circulation.
// Each method updates the size counters and appends the transaction row in one
// database transaction; on any error neither change is visible.
type LedgerRepository interface {
	RecordTakeOut(ctx context.Context, entry *model.StockTransaction) (*Receipt, error)
	RecordReturn(ctx context.Context, entry *model.StockTransaction) (*Receipt, error)
	RecordBurn(ctx context.Context, entry *model.StockTransaction) (*Receipt, error)
	RecordRestock(ctx context.Context, entry *model.StockTransaction) (*Receipt, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

// mutation applies the counter change for one entry inside tx and reports how
// much of the quantity was discarded. before is the size row as read under
// the row lock taken by commit.
type mutation func(tx *gorm.DB, entry *model.StockTransaction, before *model.ItemSize) (int, error)

func (r *ledgerRepo) RecordTakeOut(ctx context.Context, entry *model.StockTransaction) (*Receipt, error) {
	return r.commit(ctx, model.ActionTakeOut, entry, func(tx *gorm.DB, e *model.StockTransaction, _ *model.ItemSize) (int, error) {
		res := tx.Model(&model.ItemSize{}).
			Where("id = ? AND available_quantity >= ?", e.ItemSizeID, e.Quantity).
			Updates(map[string]interface{}{
				"available_quantity": gorm.Expr("available_quantity - ?", e.Quantity),
				"in_circulation":     gorm.Expr("in_circulation + ?", e.Quantity),
			})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, ErrInsufficientStock
		}
		return 0, nil
	})
}

// RecordReturn never fails for lack of circulation. When in_circulation is
// smaller than the returned quantity it is floored at zero and the difference
// is reported in Receipt.DiscardedQuantity; available always grows by the full amount.
func (r *ledgerRepo) RecordReturn(ctx context.Context, entry *model.StockTransaction) (*Receipt, error) {
	return r.commit(ctx, model.ActionReturn, entry, func(tx *gorm.DB, e *model.StockTransaction, before *model.ItemSize) (int, error) {
		res := tx.Model(&model.ItemSize{}).
			Where("id = ?", e.ItemSizeID).
			Updates(map[string]interface{}{
				"available_quantity": gorm.Expr("available_quantity + ?", e.Quantity),
				"in_circulation":     gorm.Expr("CASE WHEN in_circulation >= ? THEN in_circulation - ? ELSE 0 END", e.Quantity, e.Quantity),
			})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, ErrNotFound
		}
		if before.InCirculation < e.Quantity {
			return e.Quantity - before.InCirculation, nil
		}
		return 0, nil
	})
}

// RecordBurn removes stock from circulation for good; available is untouched.
func (r *ledgerRepo) RecordBurn(ctx context.Context, entry *model.StockTransaction) (*Receipt, error) {
	return r.commit(ctx, model.ActionBurn, entry, func(tx *gorm.DB, e *model.StockTransaction, _ *model.ItemSize) (int, error) {
		res := tx.Model(&model.ItemSize{}).
			Where("id = ? AND in_circulation >= ?", e.ItemSizeID, e.Quantity).
			Update("in_circulation", gorm.Expr("in_circulation - ?", e.Quantity))
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, ErrInsufficientStock
		}
		return 0, nil
	})
}

func (r *ledgerRepo) RecordRestock(ctx context.Context, entry *model.StockTransaction) (*Receipt, error) {
	return r.commit(ctx, model.ActionRestock, entry, func(tx *gorm.DB, e *model.StockTransaction, _ *model.ItemSize) (int, error) {
		res := tx.Model(&model.ItemSize{}).
			Where("id = ?", e.ItemSizeID).
			Update("available_quantity", gorm.Expr("available_quantity + ?", e.Quantity))
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, ErrNotFound
		}
		return 0, nil
	})
}

func (r *ledgerRepo) commit(ctx context.Context, action model.Action, entry *model.StockTransaction, mutate mutation) (*Receipt, error) {
	if entry == nil {
		return nil, fmt.Errorf("r.ledger.%s -> %w: nil entry", action, ErrStorage)
	}
	if entry.Type != action {
		return nil, fmt.Errorf("r.ledger.%s -> %w: entry type %q", action, ErrStorage, entry.Type)
	}

	var receipt Receipt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the size row so the counters read here are the ones the update sees.
		var size model.ItemSize
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&size, "id = ? AND item_id = ?", entry.ItemSizeID, entry.ItemID).Error; err != nil {
			return err
		}

		var item model.Item
		if err := tx.Select("id", "is_active").First(&item, "id = ?", entry.ItemID).Error; err != nil {
			return err
		}
		if !item.IsActive {
			return ErrItemInactive
		}

		discarded, err := mutate(tx, entry, &size)
		if err != nil {
			return err
		}

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		var after model.ItemSize
		if err := tx.First(&after, "id = ?", entry.ItemSizeID).Error; err != nil {
			return err
		}

		receipt = Receipt{Transaction: entry, Size: after, DiscardedQuantity: discarded}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("r.ledger.%s -> %w", action, classify(err))
	}
	return &receipt, nil
}
