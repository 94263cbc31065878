package service

import (
	"context"
	"fmt"
	"slices"

	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CirculationMismatch is a size whose in_circulation counter disagrees with
// what the ledger says promoters hold.
type CirculationMismatch struct {
	ItemID        uuid.UUID `json:"item_id"`
	ItemSizeID    uuid.UUID `json:"item_size_id"`
	Size          string    `json:"size"`
	InCirculation int       `json:"in_circulation"`
	Held          int       `json:"held"`
	Difference    int       `json:"difference"`
}

type CirculationReport struct {
	CheckedSizes     int                   `json:"checked_sizes"`
	ScannedRows      int                   `json:"scanned_rows"`
	Mismatches       []CirculationMismatch `json:"mismatches"`
	NegativeHoldings []model.Holding       `json:"negative_holdings,omitempty"`
	Consistent       bool                  `json:"consistent"`
}

type AuditService interface {
	Circulation(ctx context.Context) (*CirculationReport, error)
}

type auditService struct {
	catalog   repository.CatalogRepository
	txRepo    repository.TransactionRepository
	batchSize int
	log       *zap.Logger
}

func NewAuditService(catalog repository.CatalogRepository, txRepo repository.TransactionRepository, batchSize int, log *zap.Logger) AuditService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &auditService{catalog: catalog, txRepo: txRepo, batchSize: batchSize, log: log.Named("audit")}
}

// Circulation compares every size's in_circulation with the sum of positive
// promoter holdings of that size.
func (s *auditService) Circulation(ctx context.Context) (*CirculationReport, error) {
	reducers := make(map[uuid.UUID]*model.HoldingsReducer)
	report := &CirculationReport{Mismatches: []CirculationMismatch{}}

	err := s.txRepo.Scan(ctx, repository.ScanFilter{WithPromoter: true}, s.batchSize,
		func(batch []model.StockTransaction) error {
			for i := range batch {
				t := &batch[i]
				r, ok := reducers[*t.PromoterID]
				if !ok {
					r = model.NewHoldingsReducer(*t.PromoterID)
					reducers[*t.PromoterID] = r
				}
				r.Add(t)
			}
			report.ScannedRows += len(batch)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("s.audit.Circulation -> %w", err)
	}

	held := make(map[uuid.UUID]int)
	for _, r := range reducers {
		holdings, negative := r.Result()
		for _, h := range holdings {
			held[h.ItemSizeID] += h.Quantity
		}
		report.NegativeHoldings = append(report.NegativeHoldings, negative...)
	}
	slices.SortFunc(report.NegativeHoldings, func(a, b model.Holding) int {
		if c := slices.Compare(a.PromoterID[:], b.PromoterID[:]); c != 0 {
			return c
		}
		return slices.Compare(a.ItemSizeID[:], b.ItemSizeID[:])
	})

	grouped, err := s.catalog.FindSizesGrouped(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("s.audit.Circulation -> %w", err)
	}
	for itemID, sizes := range grouped {
		for _, size := range sizes {
			report.CheckedSizes++
			h := held[size.ID]
			if h == size.InCirculation {
				continue
			}
			report.Mismatches = append(report.Mismatches, CirculationMismatch{
				ItemID:        itemID,
				ItemSizeID:    size.ID,
				Size:          size.Size,
				InCirculation: size.InCirculation,
				Held:          h,
				Difference:    size.InCirculation - h,
			})
		}
	}
	slices.SortFunc(report.Mismatches, func(a, b CirculationMismatch) int {
		return slices.Compare(a.ItemSizeID[:], b.ItemSizeID[:])
	})

	report.Consistent = len(report.Mismatches) == 0 && len(report.NegativeHoldings) == 0
	if !report.Consistent {
		s.log.Warn("circulation audit found inconsistencies",
			zap.Int("mismatches", len(report.Mismatches)),
			zap.Int("negative_holdings", len(report.NegativeHoldings)),
		)
	}
	return report, nil
}
