package model

import "github.com/google/uuid"

// Brand, Promoter and Item are maintained by the catalog screens; the ledger
// only reads them.

type Brand struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
	Items    []Item `json:"items,omitempty"`
}

type Promoter struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

type Item struct {
	BaseModel
	BrandID   uuid.UUID `gorm:"type:uuid;not null;index" json:"brand_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	ProductID string    `gorm:"type:varchar(100);index" json:"product_id"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	// A shared item is an instance of a canonical item owned by another brand.
	IsShared        bool       `gorm:"default:false" json:"is_shared"`
	CanonicalItemID *uuid.UUID `gorm:"type:uuid" json:"canonical_item_id,omitempty"`

	Sizes []ItemSize `json:"sizes,omitempty"`
}

// ItemSize is one stock-keeping unit. Its two counters are written only by
// the ledger, inside the same database transaction that appends the
// corresponding StockTransaction.
type ItemSize struct {
	BaseModel
	ItemID            uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	Size              string    `gorm:"type:varchar(50);not null" json:"size"`
	OriginalQuantity  int       `gorm:"not null;default:0" json:"original_quantity"`
	AvailableQuantity int       `gorm:"not null;default:0;check:chk_item_sizes_available_nonneg,available_quantity >= 0" json:"available_quantity"`
	InCirculation     int       `gorm:"not null;default:0;check:chk_item_sizes_circulation_nonneg,in_circulation >= 0" json:"in_circulation"`
}

// TableName pins the table referenced by the ledger's raw guarded updates.
func (ItemSize) TableName() string {
	return "item_sizes"
}
