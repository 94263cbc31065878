package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-promoter-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionRepository is the read side of the ledger. There is deliberately
// no Update or Delete: ledger rows are append-only.
type TransactionRepository interface {
	List(ctx context.Context, filter TransactionFilter) ([]model.StockTransaction, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
	Scan(ctx context.Context, filter ScanFilter, batchSize int, fn func([]model.StockTransaction) error) error
	GetStockMovement(ctx context.Context, startDate, endDate time.Time, brandID *uuid.UUID) ([]StockMovementData, error)
}

// TransactionFilter drives the history screen. Zero values mean "no filter".
type TransactionFilter struct {
	Type       model.Action
	PromoterID *uuid.UUID
	EmployeeID string
	ItemID     *uuid.UUID
	BrandID    *uuid.UUID
	Search     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func (f TransactionFilter) limits() (limit, offset int) {
	limit = f.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// ScanFilter selects the slice of the ledger an aggregation needs.
type ScanFilter struct {
	PromoterID *uuid.UUID
	ItemSizeID *uuid.UUID

	// WithPromoter restricts the scan to rows that name a promoter.
	WithPromoter bool
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	TakeOut  int    `json:"take_out"`
	Returned int    `json:"return"`
	Burned   int    `json:"burn"`
	Restock  int    `json:"restock"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) List(ctx context.Context, f TransactionFilter) ([]model.StockTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockTransaction{})

	if f.Type != "" {
		q = q.Where("stock_transactions.type = ?", f.Type)
	}
	if f.PromoterID != nil {
		q = q.Where("stock_transactions.promoter_id = ?", *f.PromoterID)
	}
	if f.EmployeeID != "" {
		q = q.Where("stock_transactions.employee_id = ?", f.EmployeeID)
	}
	if f.ItemID != nil {
		q = q.Where("stock_transactions.item_id = ?", *f.ItemID)
	}
	if f.From != nil {
		q = q.Where("stock_transactions.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("stock_transactions.created_at <= ?", *f.To)
	}
	if f.BrandID != nil || f.Search != "" {
		q = q.Joins("JOIN items ON items.id = stock_transactions.item_id")
		if f.BrandID != nil {
			q = q.Where("items.brand_id = ?", *f.BrandID)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			q = q.Where("(LOWER(items.name) LIKE ? OR LOWER(stock_transactions.notes) LIKE ? OR LOWER(stock_transactions.employee_id) LIKE ?)", like, like, like)
		}
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("r.transaction.List -> %w", classify(err))
	}

	limit, offset := f.limits()
	var rows []model.StockTransaction
	err := q.Select("stock_transactions.*").
		Preload("Item").Preload("ItemSize").Preload("Promoter").
		Order("stock_transactions.created_at DESC").
		Order("stock_transactions.id").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("r.transaction.List -> %w", classify(err))
	}
	return rows, total, nil
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	var tx model.StockTransaction
	err := r.db.WithContext(ctx).
		Preload("Item").Preload("ItemSize").Preload("Promoter").
		First(&tx, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("r.transaction.FindByID -> %w", classify(err))
	}
	return &tx, nil
}

// Scan walks the selected ledger rows in primary-key batches so a long history
// is never loaded at once. fn sees each batch once; returning an error stops the walk.
func (r *transactionRepo) Scan(ctx context.Context, f ScanFilter, batchSize int, fn func([]model.StockTransaction) error) error {
	q := r.db.WithContext(ctx).Model(&model.StockTransaction{})
	if f.PromoterID != nil {
		q = q.Where("promoter_id = ?", *f.PromoterID)
	}
	if f.ItemSizeID != nil {
		q = q.Where("item_size_id = ?", *f.ItemSizeID)
	}
	if f.WithPromoter {
		q = q.Where("promoter_id IS NOT NULL")
	}

	var batch []model.StockTransaction
	res := q.FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	})
	if res.Error != nil {
		return fmt.Errorf("r.transaction.Scan -> %w", classify(res.Error))
	}
	return nil
}

func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time, brandID *uuid.UUID) ([]StockMovementData, error) {
	var results []StockMovementData

	// Query untuk aggregate transactions per hari
	q := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select(`
			DATE(stock_transactions.created_at) as date,
			COALESCE(SUM(CASE WHEN stock_transactions.type = 'take_out' THEN quantity ELSE 0 END), 0) as take_out,
			COALESCE(SUM(CASE WHEN stock_transactions.type = 'return' THEN quantity ELSE 0 END), 0) as returned,
			COALESCE(SUM(CASE WHEN stock_transactions.type = 'burn' THEN quantity ELSE 0 END), 0) as burned,
			COALESCE(SUM(CASE WHEN stock_transactions.type = 'restock' THEN quantity ELSE 0 END), 0) as restock
		`).
		Where("stock_transactions.created_at BETWEEN ? AND ?", startDate, endDate)
	if brandID != nil {
		q = q.Joins("JOIN items ON items.id = stock_transactions.item_id").
			Where("items.brand_id = ?", *brandID)
	}

	rows, err := q.Group("DATE(stock_transactions.created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("r.transaction.GetStockMovement -> %w", classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.TakeOut, &data.Returned, &data.Burned, &data.Restock); err != nil {
			return nil, fmt.Errorf("r.transaction.GetStockMovement -> %w", classify(err))
		}
		results = append(results, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("r.transaction.GetStockMovement -> %w", classify(err))
	}

	return results, nil
}
