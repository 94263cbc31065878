package service

import (
	"context"
	"fmt"
	"strings"

	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"
	"go-promoter-inventory/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultBulkNote = "Bulk operation"

type BulkLine struct {
	ItemID     uuid.UUID `json:"item_id"`
	ItemSizeID uuid.UUID `json:"item_size_id"`
	Quantity   int       `json:"quantity"`
}

// BulkRequest applies one action for one promoter across many item sizes.
type BulkRequest struct {
	Action     model.Action `json:"action" validate:"required"`
	PromoterID uuid.UUID    `json:"promoter_id" validate:"uuid_required"`
	EmployeeID string       `json:"-" validate:"required"`
	Notes      string       `json:"notes" validate:"max=1000"`
	Lines      []BulkLine   `json:"lines" validate:"required,min=1,dive"`
}

type LineStatus string

const (
	LineCommitted        LineStatus = "committed"
	LineSkipped          LineStatus = "skipped"
	LineFailed           LineStatus = "failed"
	LineAwaitingOverride LineStatus = "awaiting_override"
)

type BulkLineResult struct {
	BulkLine
	Status    LineStatus          `json:"status"`
	Receipt   *repository.Receipt `json:"receipt,omitempty"`
	Token     string              `json:"token,omitempty"`
	Warning   *ReturnWarning      `json:"warning,omitempty"`
	Error     string              `json:"error,omitempty"`
	ErrorKind string              `json:"error_kind,omitempty"`
}

type BulkResult struct {
	Lines            []BulkLineResult `json:"lines"`
	Committed        int              `json:"committed"`
	Failed           int              `json:"failed"`
	Skipped          int              `json:"skipped"`
	AwaitingOverride int              `json:"awaiting_override"`
}

type BulkService interface {
	Apply(ctx context.Context, req BulkRequest) (*BulkResult, error)
}

type bulkService struct {
	ledger  LedgerService
	returns ReconciliationService
	log     *zap.Logger
}

func NewBulkService(ledger LedgerService, returns ReconciliationService, log *zap.Logger) BulkService {
	return &bulkService{ledger: ledger, returns: returns, log: log.Named("bulk")}
}

// Apply commits every line on its own, so one failing line does not undo the
// others. Lines with a non-positive quantity are skipped. Returns go through
// the holdings check and may come back awaiting override with their own token.
func (s *bulkService) Apply(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	if errs := validator.ValidateStruct(req); errs != nil {
		return nil, invalid(errs)
	}
	switch req.Action {
	case model.ActionTakeOut, model.ActionReturn, model.ActionBurn:
	default:
		return nil, invalid(fmt.Errorf("bulk action must be take_out, return or burn, got %q", req.Action))
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = defaultBulkNote
	}
	promoterID := req.PromoterID

	result := &BulkResult{Lines: make([]BulkLineResult, 0, len(req.Lines))}
	for _, line := range req.Lines {
		lr := BulkLineResult{BulkLine: line}
		if line.Quantity <= 0 {
			lr.Status = LineSkipped
			result.Skipped++
			result.Lines = append(result.Lines, lr)
			continue
		}

		lreq := LedgerRequest{
			ItemID:     line.ItemID,
			ItemSizeID: line.ItemSizeID,
			Quantity:   line.Quantity,
			PromoterID: &promoterID,
			EmployeeID: req.EmployeeID,
			Notes:      notes,
		}

		var err error
		if req.Action == model.ActionReturn {
			var outcome *ReturnOutcome
			outcome, err = s.returns.BeginReturn(ctx, lreq)
			if err == nil {
				lr.Receipt = outcome.Receipt
				lr.Token = outcome.Token
				lr.Warning = outcome.Warning
				if outcome.State == StateAwaitingOverride {
					lr.Status = LineAwaitingOverride
					result.AwaitingOverride++
				}
			}
		} else {
			lr.Receipt, err = s.ledger.Record(ctx, req.Action, lreq)
		}

		switch {
		case err != nil:
			lr.Status = LineFailed
			lr.Error = err.Error()
			lr.ErrorKind = KindOf(err).String()
			result.Failed++
		case lr.Status == "":
			lr.Status = LineCommitted
			result.Committed++
		}
		result.Lines = append(result.Lines, lr)
	}

	s.log.Info("bulk operation applied",
		zap.String("action", string(req.Action)),
		zap.Stringer("promoter_id", promoterID),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("committed", result.Committed),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
		zap.Int("awaiting_override", result.AwaitingOverride),
	)
	return result, nil
}
