package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is the closed set of stock-affecting operations. It doubles as the
// persisted transaction type.
type Action string

const (
	ActionTakeOut Action = "take_out"
	ActionReturn  Action = "return"
	ActionBurn    Action = "burn"
	ActionRestock Action = "restock"
)

var Actions = []Action{ActionTakeOut, ActionReturn, ActionBurn, ActionRestock}

var ErrUnknownAction = errors.New("unknown action")

// ParseAction accepts both the stored form ("take_out") and the URL form ("take-out").
func ParseAction(s string) (Action, error) {
	switch s {
	case "take_out", "take-out":
		return ActionTakeOut, nil
	case "return":
		return ActionReturn, nil
	case "burn":
		return ActionBurn, nil
	case "restock":
		return ActionRestock, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

func (a Action) Valid() bool {
	switch a {
	case ActionTakeOut, ActionReturn, ActionBurn, ActionRestock:
		return true
	}
	return false
}

// RequiresPromoter reports whether the variant must name a promoter.
// Restock is the only variant that must not.
func (a Action) RequiresPromoter() bool {
	return a != ActionRestock
}

// HoldingSign is the effect of one unit of this action on a promoter's holding.
func (a Action) HoldingSign() int {
	switch a {
	case ActionTakeOut:
		return 1
	case ActionReturn, ActionBurn:
		return -1
	}
	return 0
}

// StockTransaction is an immutable ledger row. It has no update or delete
// columns on purpose; rows are only ever inserted.
type StockTransaction struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Type       Action     `gorm:"type:varchar(16);not null;index" json:"type"`
	ItemID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	ItemSizeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_size_id"`
	Quantity   int        `gorm:"not null;check:chk_stock_transactions_quantity_pos,quantity > 0" json:"quantity"`
	PromoterID *uuid.UUID `gorm:"type:uuid;index" json:"promoter_id,omitempty"`
	EmployeeID string     `gorm:"type:varchar(255);not null;index" json:"employee_id"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`

	Item     *Item     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	ItemSize *ItemSize `gorm:"foreignKey:ItemSizeID" json:"item_size,omitempty"`
	Promoter *Promoter `gorm:"foreignKey:PromoterID" json:"promoter,omitempty"`
}

func (StockTransaction) TableName() string {
	return "stock_transactions"
}

var (
	ErrNonPositiveQuantity = errors.New("quantity must be greater than 0")
	ErrPromoterRequired    = errors.New("promoter is required for this action")
	ErrPromoterForbidden   = errors.New("restock must not name a promoter")
	ErrEmployeeRequired    = errors.New("employee is required")
	ErrMissingItem         = errors.New("item and item size are required")
)

// NewStockTransaction builds a validated row for the given variant.
func NewStockTransaction(action Action, itemID, itemSizeID uuid.UUID, quantity int, promoterID *uuid.UUID, employeeID, notes string) (*StockTransaction, error) {
	tx := &StockTransaction{
		ID:         uuid.New(),
		Type:       action,
		ItemID:     itemID,
		ItemSizeID: itemSizeID,
		Quantity:   quantity,
		PromoterID: promoterID,
		EmployeeID: employeeID,
		Notes:      notes,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Validate enforces the per-variant constraints.
func (t *StockTransaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, t.Type)
	}
	if t.ItemID == uuid.Nil || t.ItemSizeID == uuid.Nil {
		return ErrMissingItem
	}
	if t.Quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	if t.EmployeeID == "" {
		return ErrEmployeeRequired
	}

	hasPromoter := t.PromoterID != nil && *t.PromoterID != uuid.Nil
	if t.Type.RequiresPromoter() && !hasPromoter {
		return ErrPromoterRequired
	}
	if !t.Type.RequiresPromoter() && t.PromoterID != nil {
		return ErrPromoterForbidden
	}
	return nil
}
