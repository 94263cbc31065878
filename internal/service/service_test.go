package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"
	"go-promoter-inventory/internal/ws"
	"go-promoter-inventory/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(ev ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type failingHoldings struct{ err error }

func (f failingHoldings) HoldingOf(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (int, error) {
	return 0, f.err
}

// flakyLedger fails the next `failures` returns with a storage error.
type flakyLedger struct {
	LedgerService
	mu       sync.Mutex
	failures int
}

func (f *flakyLedger) Return(ctx context.Context, req LedgerRequest) (*repository.Receipt, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", repository.ErrStorage, errBoom)
	}
	f.mu.Unlock()
	return f.LedgerService.Return(ctx, req)
}

type env struct {
	db          *gorm.DB
	catalog     repository.CatalogRepository
	txRepo      repository.TransactionRepository
	events      *recordingPublisher
	ledger      LedgerService
	aggregation AggregationService
	returns     *reconciliationService
	bulk        BulkService
	audit       AuditService

	promoter model.Promoter
	item     model.Item
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := database.ConnectSQLite(database.InMemorySQLiteDSN(uuid.NewString()), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := zap.NewNop()
	e := &env{
		db:      db,
		catalog: repository.NewCatalogRepo(db),
		txRepo:  repository.NewTransactionRepo(db),
		events:  &recordingPublisher{},
	}
	e.ledger = NewLedgerService(repository.NewLedgerRepo(db), e.events, log)
	e.aggregation = NewAggregationService(e.catalog, e.txRepo, 2, log)
	e.returns = NewReconciliationService(e.ledger, e.aggregation, e.catalog, 0, log).(*reconciliationService)
	e.bulk = NewBulkService(e.ledger, e.returns, log)
	e.audit = NewAuditService(e.catalog, e.txRepo, 2, log)

	brand := model.Brand{Name: "Acme", IsActive: true}
	require.NoError(t, e.catalog.CreateBrand(ctx, &brand))
	e.promoter = model.Promoter{Name: "Rina", IsActive: true}
	require.NoError(t, e.catalog.CreatePromoter(ctx, &e.promoter))
	e.item = model.Item{
		BrandID:  brand.ID,
		Name:     "Event Tee",
		IsActive: true,
		Sizes: []model.ItemSize{
			{Size: "M", OriginalQuantity: 10},
			{Size: "L", OriginalQuantity: 4},
		},
	}
	require.NoError(t, e.catalog.CreateItem(ctx, &e.item))
	return e
}

func (e *env) request(sizeIdx, qty int) LedgerRequest {
	promoterID := e.promoter.ID
	return LedgerRequest{
		ItemID:     e.item.ID,
		ItemSizeID: e.item.Sizes[sizeIdx].ID,
		Quantity:   qty,
		PromoterID: &promoterID,
		EmployeeID: "emp-1",
	}
}

func (e *env) restockRequest(sizeIdx, qty int) LedgerRequest {
	req := e.request(sizeIdx, qty)
	req.PromoterID = nil
	return req
}

func (e *env) size(t *testing.T, sizeIdx int) *model.ItemSize {
	t.Helper()
	s, err := e.catalog.FindSizeByID(context.Background(), e.item.Sizes[sizeIdx].ID)
	require.NoError(t, err)
	return s
}

func (e *env) countTransactions(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.StockTransaction{}).Count(&n).Error)
	return n
}

var errBoom = errors.New("connection reset")
