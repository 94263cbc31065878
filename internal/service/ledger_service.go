package service

import (
	"context"
	"fmt"
	"strings"

	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"
	"go-promoter-inventory/internal/ws"
	"go-promoter-inventory/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher receives an event after every committed ledger write.
type EventPublisher interface {
	Publish(ev ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

// LedgerRequest is the input shared by the four ledger operations.
type LedgerRequest struct {
	ItemID     uuid.UUID  `json:"item_id" validate:"uuid_required"`
	ItemSizeID uuid.UUID  `json:"item_size_id" validate:"uuid_required"`
	Quantity   int        `json:"quantity" validate:"gt=0"`
	PromoterID *uuid.UUID `json:"promoter_id,omitempty"`
	EmployeeID string     `json:"-" validate:"required"`
	Notes      string     `json:"notes" validate:"max=1000"`
}

type LedgerService interface {
	Record(ctx context.Context, action model.Action, req LedgerRequest) (*repository.Receipt, error)
	TakeOut(ctx context.Context, req LedgerRequest) (*repository.Receipt, error)
	Return(ctx context.Context, req LedgerRequest) (*repository.Receipt, error)
	Burn(ctx context.Context, req LedgerRequest) (*repository.Receipt, error)
	Restock(ctx context.Context, req LedgerRequest) (*repository.Receipt, error)
}

type ledgerService struct {
	ledger repository.LedgerRepository
	events EventPublisher
	log    *zap.Logger
}

func NewLedgerService(ledger repository.LedgerRepository, events EventPublisher, log *zap.Logger) LedgerService {
	if events == nil {
		events = nopPublisher{}
	}
	return &ledgerService{
		ledger: ledger,
		events: events,
		log:    log.Named("ledger"),
	}
}

func (s *ledgerService) TakeOut(ctx context.Context, req LedgerRequest) (*repository.Receipt, error) {
	return s.Record(ctx, model.ActionTakeOut, req)
}

// Return records a return without consulting holdings. Callers that need the
// holdings check go through the ReconciliationService.
func (s *ledgerService) Return(ctx context.Context, req LedgerRequest) (*repository.Receipt, error) {
	return s.Record(ctx, model.ActionReturn, req)
}

func (s *ledgerService) Burn(ctx context.Context, req LedgerRequest) (*repository.Receipt, error) {
	return s.Record(ctx, model.ActionBurn, req)
}

func (s *ledgerService) Restock(ctx context.Context, req LedgerRequest) (*repository.Receipt, error) {
	return s.Record(ctx, model.ActionRestock, req)
}

func (s *ledgerService) Record(ctx context.Context, action model.Action, req LedgerRequest) (*repository.Receipt, error) {
	entry, err := buildEntry(action, req)
	if err != nil {
		return nil, err
	}

	var record func(context.Context, *model.StockTransaction) (*repository.Receipt, error)
	switch action {
	case model.ActionTakeOut:
		record = s.ledger.RecordTakeOut
	case model.ActionReturn:
		record = s.ledger.RecordReturn
	case model.ActionBurn:
		record = s.ledger.RecordBurn
	case model.ActionRestock:
		record = s.ledger.RecordRestock
	}

	fields := []zap.Field{
		zap.String("action", string(action)),
		zap.Stringer("item_size_id", entry.ItemSizeID),
		zap.Int("quantity", entry.Quantity),
		zap.String("employee_id", entry.EmployeeID),
	}
	if entry.PromoterID != nil {
		fields = append(fields, zap.Stringer("promoter_id", *entry.PromoterID))
	}

	receipt, err := record(ctx, entry)
	if err != nil {
		if KindOf(err) == KindStorage {
			s.log.Error("ledger write failed", append(fields, zap.Error(err))...)
		} else {
			s.log.Info("ledger write rejected", append(fields, zap.Error(err))...)
		}
		return nil, fmt.Errorf("s.ledger.Record -> %w", err)
	}

	s.log.Info("ledger write committed", append(fields,
		zap.Stringer("transaction_id", receipt.Transaction.ID),
		zap.Int("available_quantity", receipt.Size.AvailableQuantity),
		zap.Int("in_circulation", receipt.Size.InCirculation),
	)...)
	if receipt.DiscardedQuantity > 0 {
		s.log.Warn("return exceeded in_circulation, excess discarded", append(fields,
			zap.Int("discarded_quantity", receipt.DiscardedQuantity),
		)...)
	}

	s.events.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  "transaction_created",
		Payload: receipt,
		Message: fmt.Sprintf("%s recorded %s of %d", entry.EmployeeID, action, entry.Quantity),
	})
	return receipt, nil
}

// buildEntry validates the request and turns it into a ledger row. Every
// rejection here happens before any I/O.
func buildEntry(action model.Action, req LedgerRequest) (*model.StockTransaction, error) {
	if !action.Valid() {
		return nil, invalid(fmt.Errorf("%w: %q", model.ErrUnknownAction, action))
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return nil, invalid(errs)
	}

	entry, err := model.NewStockTransaction(
		action,
		req.ItemID,
		req.ItemSizeID,
		req.Quantity,
		req.PromoterID,
		strings.TrimSpace(req.EmployeeID),
		strings.TrimSpace(req.Notes),
	)
	if err != nil {
		return nil, invalid(err)
	}
	return entry, nil
}
