package service

import (
	"context"
	"fmt"
	"time"

	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromoterHoldings is a promoter's current stock, derived from the ledger.
// Anomalies lists item sizes where more was returned or burned than taken out.
type PromoterHoldings struct {
	PromoterID uuid.UUID       `json:"promoter_id"`
	Holdings   []model.Holding `json:"holdings"`
	Anomalies  []model.Holding `json:"anomalies,omitempty"`
}

type SizeQuantities struct {
	ItemSizeID uuid.UUID        `json:"item_size_id"`
	Size       string           `json:"size"`
	Quantities model.Quantities `json:"quantities"`
}

type ItemQuantities struct {
	ItemID     uuid.UUID             `json:"item_id"`
	Quantities model.Quantities      `json:"quantities"`
	Sizes      []SizeQuantities      `json:"sizes"`
	Faults     []model.QuantityFault `json:"faults,omitempty"`
}

// HoldingsReader is the part of the aggregation layer the reconciliation
// engine depends on.
type HoldingsReader interface {
	HoldingOf(ctx context.Context, promoterID, itemID, itemSizeID uuid.UUID) (int, error)
}

type AggregationService interface {
	HoldingsReader
	PromoterHoldings(ctx context.Context, promoterID uuid.UUID) (*PromoterHoldings, error)
	ItemQuantities(ctx context.Context, itemID uuid.UUID) (*ItemQuantities, error)
	Summary(ctx context.Context, brandID *uuid.UUID) (*model.Summary, error)
	GetStockMovement(ctx context.Context, from, to time.Time, brandID *uuid.UUID) ([]repository.StockMovementData, error)
}

type aggregationService struct {
	catalog   repository.CatalogRepository
	txRepo    repository.TransactionRepository
	batchSize int
	log       *zap.Logger
}

func NewAggregationService(catalog repository.CatalogRepository, txRepo repository.TransactionRepository, batchSize int, log *zap.Logger) AggregationService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &aggregationService{
		catalog:   catalog,
		txRepo:    txRepo,
		batchSize: batchSize,
		log:       log.Named("aggregation"),
	}
}

func (s *aggregationService) reduce(ctx context.Context, promoterID uuid.UUID, sizeID *uuid.UUID) (*model.HoldingsReducer, error) {
	reducer := model.NewHoldingsReducer(promoterID)
	err := s.txRepo.Scan(ctx, repository.ScanFilter{PromoterID: &promoterID, ItemSizeID: sizeID}, s.batchSize,
		func(batch []model.StockTransaction) error {
			for i := range batch {
				reducer.Add(&batch[i])
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return reducer, nil
}

// PromoterHoldings recomputes holdings from the full ledger slice of the
// promoter on every call. The result is sorted by item and size.
func (s *aggregationService) PromoterHoldings(ctx context.Context, promoterID uuid.UUID) (*PromoterHoldings, error) {
	if promoterID == uuid.Nil {
		return nil, invalid(model.ErrPromoterRequired)
	}

	reducer, err := s.reduce(ctx, promoterID, nil)
	if err != nil {
		return nil, fmt.Errorf("s.aggregation.PromoterHoldings -> %w", err)
	}

	holdings, negative := reducer.Result()
	for _, h := range negative {
		s.log.Warn("negative holding",
			zap.Stringer("promoter_id", promoterID),
			zap.Stringer("item_size_id", h.ItemSizeID),
			zap.Int("net", h.Quantity),
		)
	}
	return &PromoterHoldings{PromoterID: promoterID, Holdings: holdings, Anomalies: negative}, nil
}

// HoldingOf returns the raw net for one item size, which can be zero or negative.
func (s *aggregationService) HoldingOf(ctx context.Context, promoterID, itemID, itemSizeID uuid.UUID) (int, error) {
	reducer, err := s.reduce(ctx, promoterID, &itemSizeID)
	if err != nil {
		return 0, fmt.Errorf("s.aggregation.HoldingOf -> %w", err)
	}
	return reducer.Net(model.HoldingKey{ItemID: itemID, ItemSizeID: itemSizeID}), nil
}

func (s *aggregationService) ItemQuantities(ctx context.Context, itemID uuid.UUID) (*ItemQuantities, error) {
	if itemID == uuid.Nil {
		return nil, invalid(model.ErrMissingItem)
	}

	sizes, err := s.catalog.FindSizesByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("s.aggregation.ItemQuantities -> %w", err)
	}
	if len(sizes) == 0 {
		if _, err := s.catalog.FindItemByID(ctx, itemID); err != nil {
			return nil, fmt.Errorf("s.aggregation.ItemQuantities -> %w", err)
		}
	}

	out := &ItemQuantities{ItemID: itemID, Sizes: make([]SizeQuantities, 0, len(sizes))}
	for _, size := range sizes {
		q, faults := model.SizeQuantities(size)
		out.Sizes = append(out.Sizes, SizeQuantities{ItemSizeID: size.ID, Size: size.Size, Quantities: q})
		out.Faults = append(out.Faults, faults...)
	}
	out.Quantities, _ = model.ItemQuantities(sizes)
	s.logFaults(out.Faults)
	return out, nil
}

func (s *aggregationService) Summary(ctx context.Context, brandID *uuid.UUID) (*model.Summary, error) {
	grouped, err := s.catalog.FindSizesGrouped(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("s.aggregation.Summary -> %w", err)
	}
	summary := model.Summarize(grouped)
	s.logFaults(summary.Faults)
	return &summary, nil
}

func (s *aggregationService) GetStockMovement(ctx context.Context, from, to time.Time, brandID *uuid.UUID) ([]repository.StockMovementData, error) {
	if to.Before(from) {
		return nil, invalid(fmt.Errorf("range end %s is before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly)))
	}
	data, err := s.txRepo.GetStockMovement(ctx, from, to, brandID)
	if err != nil {
		return nil, fmt.Errorf("s.aggregation.GetStockMovement -> %w", err)
	}
	return data, nil
}

func (s *aggregationService) logFaults(faults []model.QuantityFault) {
	for _, f := range faults {
		s.log.Warn("negative stock counter clamped",
			zap.Stringer("item_size_id", f.ItemSizeID),
			zap.String("field", f.Field),
			zap.Int("value", f.Value),
		)
	}
}
