package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReturnState is a step of the return protocol:
//
//	Idle -> Checking -> MatchFound -> Committing -> Committed | Failed
//	                 -> NoMatch -> AwaitingOverride -> (cancel) Idle
//	                                                -> (force) Committing
type ReturnState string

const (
	StateIdle             ReturnState = "idle"
	StateChecking         ReturnState = "checking"
	StateMatchFound       ReturnState = "match_found"
	StateNoMatch          ReturnState = "no_match"
	StateAwaitingOverride ReturnState = "awaiting_override"
	StateCommitting       ReturnState = "committing"
	StateCommitted        ReturnState = "committed"
	StateFailed           ReturnState = "failed"
)

// Decision is the caller's answer to an AwaitingOverride return.
type Decision string

const (
	DecisionCancel       Decision = "cancel"
	DecisionForceConfirm Decision = "force_confirm"
)

func (d Decision) Valid() bool {
	return d == DecisionCancel || d == DecisionForceConfirm
}

// ReturnWarning is shown to the employee when the ledger says the promoter
// holds none of the item size being returned.
type ReturnWarning struct {
	PromoterID   uuid.UUID `json:"promoter_id"`
	PromoterName string    `json:"promoter_name"`
	ItemID       uuid.UUID `json:"item_id"`
	ItemName     string    `json:"item_name,omitempty"`
	ItemSizeID   uuid.UUID `json:"item_size_id"`
	SizeLabel    string    `json:"size_label,omitempty"`
	Holding      int       `json:"holding"`
	Quantity     int       `json:"quantity"`
}

func (w ReturnWarning) Message() string {
	item := w.ItemName
	if item == "" {
		item = w.ItemID.String()
	}
	if w.SizeLabel != "" {
		item = fmt.Sprintf("%s (%s)", item, w.SizeLabel)
	}
	return fmt.Sprintf("%s has no recorded holding of %s. Return %d anyway?", w.PromoterName, item, w.Quantity)
}

type ReturnOutcome struct {
	State     ReturnState         `json:"state"`
	Receipt   *repository.Receipt `json:"receipt,omitempty"`
	Token     string              `json:"token,omitempty"`
	Warning   *ReturnWarning      `json:"warning,omitempty"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
}

type ReconciliationService interface {
	BeginReturn(ctx context.Context, req LedgerRequest) (*ReturnOutcome, error)
	Resolve(ctx context.Context, token string, decision Decision) (*ReturnOutcome, error)
}

type pendingReturn struct {
	req       LedgerRequest
	warning   ReturnWarning
	expiresAt time.Time
	inFlight  bool
}

type reconciliationService struct {
	ledger   LedgerService
	holdings HoldingsReader
	catalog  repository.CatalogRepository
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingReturn
}

func NewReconciliationService(ledger LedgerService, holdings HoldingsReader, catalog repository.CatalogRepository, ttl time.Duration, log *zap.Logger) ReconciliationService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &reconciliationService{
		ledger:   ledger,
		holdings: holdings,
		catalog:  catalog,
		ttl:      ttl,
		now:      time.Now,
		log:      log.Named("reconciliation"),
		pending:  make(map[string]*pendingReturn),
	}
}

// BeginReturn checks the promoter's holding before recording a return. A
// positive holding commits straight away; anything else parks the request
// until Resolve is called with its token. If the holding cannot be read the
// return is not recorded and ErrVerificationFailed is returned.
func (s *reconciliationService) BeginReturn(ctx context.Context, req LedgerRequest) (*ReturnOutcome, error) {
	if _, err := buildEntry(model.ActionReturn, req); err != nil {
		return nil, err
	}
	promoterID := *req.PromoterID

	fields := []zap.Field{
		zap.Stringer("promoter_id", promoterID),
		zap.Stringer("item_size_id", req.ItemSizeID),
		zap.Int("quantity", req.Quantity),
	}
	s.log.Debug("return state", append(fields, zap.String("state", string(StateChecking)))...)

	holding, err := s.holdings.HoldingOf(ctx, promoterID, req.ItemID, req.ItemSizeID)
	if err != nil {
		s.log.Warn("holdings check failed, return aborted", append(fields, zap.Error(err))...)
		return nil, fmt.Errorf("s.reconciliation.BeginReturn -> %w: %w", ErrVerificationFailed, err)
	}

	if holding > 0 {
		s.log.Debug("return state", append(fields, zap.String("state", string(StateMatchFound)), zap.Int("holding", holding))...)
		return s.commit(ctx, req)
	}

	s.log.Info("return awaiting override", append(fields,
		zap.String("state", string(StateNoMatch)),
		zap.Int("holding", holding),
	)...)
	warning := s.warningFor(ctx, req, holding)
	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	s.purgeExpiredLocked()
	s.pending[token] = &pendingReturn{req: req, warning: warning, expiresAt: expiresAt}
	s.mu.Unlock()

	return &ReturnOutcome{
		State:     StateAwaitingOverride,
		Token:     token,
		Warning:   &warning,
		ExpiresAt: &expiresAt,
	}, nil
}

// Resolve applies the caller's decision to a parked return. A token is
// consumed once its decision succeeds; a force confirm that fails with a
// storage error keeps the token so the same request can be retried.
func (s *reconciliationService) Resolve(ctx context.Context, token string, decision Decision) (*ReturnOutcome, error) {
	if !decision.Valid() {
		return nil, invalid(fmt.Errorf("unknown decision %q", decision))
	}

	s.mu.Lock()
	s.purgeExpiredLocked()
	p, ok := s.pending[token]
	if ok && p.inFlight {
		ok = false
	}
	if ok {
		if decision == DecisionCancel {
			delete(s.pending, token)
		} else {
			p.inFlight = true
		}
	}
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("s.reconciliation.Resolve -> %w", ErrPendingReturnNotFound)
	}

	if decision == DecisionCancel {
		s.log.Info("return override cancelled",
			zap.String("token", token),
			zap.Stringer("promoter_id", p.warning.PromoterID),
			zap.Stringer("item_size_id", p.warning.ItemSizeID),
		)
		return &ReturnOutcome{State: StateIdle, Warning: &p.warning}, nil
	}

	s.log.Info("return override confirmed",
		zap.String("token", token),
		zap.Stringer("promoter_id", p.warning.PromoterID),
		zap.Stringer("item_size_id", p.warning.ItemSizeID),
		zap.Int("quantity", p.req.Quantity),
	)
	outcome, err := s.commit(ctx, p.req)

	s.mu.Lock()
	if err != nil && KindOf(err) == KindStorage {
		p.inFlight = false
	} else {
		delete(s.pending, token)
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *reconciliationService) commit(ctx context.Context, req LedgerRequest) (*ReturnOutcome, error) {
	s.log.Debug("return state", zap.String("state", string(StateCommitting)), zap.Stringer("item_size_id", req.ItemSizeID))
	receipt, err := s.ledger.Return(ctx, req)
	if err != nil {
		s.log.Debug("return state", zap.String("state", string(StateFailed)), zap.Error(err))
		return nil, fmt.Errorf("s.reconciliation.commit -> %w", err)
	}
	return &ReturnOutcome{State: StateCommitted, Receipt: receipt}, nil
}

// warningFor names the promoter and item size. Lookups are best effort: a
// failed promoter lookup falls back to the ID.
func (s *reconciliationService) warningFor(ctx context.Context, req LedgerRequest, holding int) ReturnWarning {
	w := ReturnWarning{
		PromoterID:   *req.PromoterID,
		PromoterName: "ID: " + req.PromoterID.String(),
		ItemID:       req.ItemID,
		ItemSizeID:   req.ItemSizeID,
		Holding:      holding,
		Quantity:     req.Quantity,
	}

	if promoter, err := s.catalog.FindPromoterByID(ctx, *req.PromoterID); err == nil && promoter.Name != "" {
		w.PromoterName = promoter.Name
	}
	if item, err := s.catalog.FindItemByID(ctx, req.ItemID); err == nil {
		w.ItemName = item.Name
		for _, size := range item.Sizes {
			if size.ID == req.ItemSizeID {
				w.SizeLabel = size.Size
				break
			}
		}
	}
	return w
}

func (s *reconciliationService) purgeExpiredLocked() {
	now := s.now()
	for token, p := range s.pending {
		if now.After(p.expiresAt) {
			delete(s.pending, token)
		}
	}
}
