package repository

import (
	"context"

	"go-promoter-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository reads brands, items, sizes and promoters. Stock counters
// are never written here; see LedgerRepository.
type CatalogRepository interface {
	CreateBrand(ctx context.Context, brand *model.Brand) error
	CreatePromoter(ctx context.Context, promoter *model.Promoter) error
	CreateItem(ctx context.Context, item *model.Item) error
	SetItemActive(ctx context.Context, itemID uuid.UUID, active bool) error

	FindItemByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindSizeByID(ctx context.Context, id uuid.UUID) (*model.ItemSize, error)
	FindSizesByItem(ctx context.Context, itemID uuid.UUID) ([]*model.ItemSize, error)
	FindSizesGrouped(ctx context.Context, brandID *uuid.UUID) (map[uuid.UUID][]*model.ItemSize, error)
	FindPromoterByID(ctx context.Context, id uuid.UUID) (*model.Promoter, error)
	CountBrands(ctx context.Context) (int64, error)
}

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db}
}

func (r *catalogRepo) CreateBrand(ctx context.Context, brand *model.Brand) error {
	return classify(r.db.WithContext(ctx).Create(brand).Error)
}

func (r *catalogRepo) CreatePromoter(ctx context.Context, promoter *model.Promoter) error {
	return classify(r.db.WithContext(ctx).Create(promoter).Error)
}

// CreateItem inserts an item together with its sizes. A new size starts with
// everything available and nothing in circulation.
func (r *catalogRepo) CreateItem(ctx context.Context, item *model.Item) error {
	for i := range item.Sizes {
		item.Sizes[i].AvailableQuantity = item.Sizes[i].OriginalQuantity
		item.Sizes[i].InCirculation = 0
	}
	return classify(r.db.WithContext(ctx).Create(item).Error)
}

func (r *catalogRepo) SetItemActive(ctx context.Context, itemID uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", itemID).Update("is_active", active)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).Preload("Sizes").First(&item, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &item, nil
}

func (r *catalogRepo) FindSizeByID(ctx context.Context, id uuid.UUID) (*model.ItemSize, error) {
	var size model.ItemSize
	if err := r.db.WithContext(ctx).First(&size, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &size, nil
}

func (r *catalogRepo) FindSizesByItem(ctx context.Context, itemID uuid.UUID) ([]*model.ItemSize, error) {
	var sizes []*model.ItemSize
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("size ASC").
		Find(&sizes).Error
	if err != nil {
		return nil, classify(err)
	}
	return sizes, nil
}

// FindSizesGrouped loads every size keyed by item, optionally restricted to one brand.
// Items without sizes still get an entry so they show up with zero totals.
func (r *catalogRepo) FindSizesGrouped(ctx context.Context, brandID *uuid.UUID) (map[uuid.UUID][]*model.ItemSize, error) {
	q := r.db.WithContext(ctx).Model(&model.Item{}).Preload("Sizes")
	if brandID != nil {
		q = q.Where("brand_id = ?", *brandID)
	}

	var items []model.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, classify(err)
	}

	grouped := make(map[uuid.UUID][]*model.ItemSize, len(items))
	for i := range items {
		sizes := make([]*model.ItemSize, 0, len(items[i].Sizes))
		for j := range items[i].Sizes {
			sizes = append(sizes, &items[i].Sizes[j])
		}
		grouped[items[i].ID] = sizes
	}
	return grouped, nil
}

func (r *catalogRepo) FindPromoterByID(ctx context.Context, id uuid.UUID) (*model.Promoter, error) {
	var promoter model.Promoter
	if err := r.db.WithContext(ctx).First(&promoter, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &promoter, nil
}

func (r *catalogRepo) CountBrands(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Brand{}).Count(&n).Error
	return n, classify(err)
}
