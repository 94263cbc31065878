package handler

import (
	"time"

	"go-promoter-inventory/internal/middleware"
	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"
	"go-promoter-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	ledger  service.LedgerService
	returns service.ReconciliationService
	bulk    service.BulkService
	history service.HistoryService
}

func NewTransactionHandler(ledger service.LedgerService, returns service.ReconciliationService, bulk service.BulkService, history service.HistoryService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, returns: returns, bulk: bulk, history: history}
}

// CreateTransaction handles POST /transactions/:action. Returns are routed
// through the holdings check and may answer 202 with an override token.
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	action, err := model.ParseAction(c.Params("action"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req service.LedgerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	req.EmployeeID = middleware.EmployeeID(c)

	if action == model.ActionReturn {
		outcome, err := h.returns.BeginReturn(c.UserContext(), req)
		if err != nil {
			return errorResponse(c, err)
		}
		return returnOutcomeResponse(c, outcome)
	}

	receipt, err := h.ledger.Record(c.UserContext(), action, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaction recorded", "data": receipt})
}

func (h *TransactionHandler) CreateBulk(c *fiber.Ctx) error {
	var req service.BulkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if action, err := model.ParseAction(string(req.Action)); err == nil {
		req.Action = action
	}
	req.EmployeeID = middleware.EmployeeID(c)

	result, err := h.bulk.Apply(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	status := fiber.StatusOK
	if result.Failed > 0 || result.AwaitingOverride > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(fiber.Map{"data": result})
}

// GetTransactions lists the ledger newest first.
// Query params: type, promoter_id, employee_id, item_id, brand_id, search, from, to, page, page_size
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	var f repository.TransactionFilter
	var err error

	if t := c.Query("type"); t != "" {
		if f.Type, err = model.ParseAction(t); err != nil {
			return badRequest(c, err.Error())
		}
	}
	if f.PromoterID, err = queryUUID(c, "promoter_id"); err != nil {
		return badRequest(c, "Invalid promoter_id")
	}
	if f.ItemID, err = queryUUID(c, "item_id"); err != nil {
		return badRequest(c, "Invalid item_id")
	}
	if f.BrandID, err = queryUUID(c, "brand_id"); err != nil {
		return badRequest(c, "Invalid brand_id")
	}
	if f.From, err = queryTime(c, "from", false); err != nil {
		return badRequest(c, "Invalid from, use RFC3339 or YYYY-MM-DD")
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return badRequest(c, "Invalid to, use RFC3339 or YYYY-MM-DD")
	}
	f.EmployeeID = c.Query("employee_id")
	f.Search = c.Query("search")
	f.Page = c.QueryInt("page", 1)
	f.PageSize = c.QueryInt("page_size", 50)

	page, err := h.history.List(c.UserContext(), f)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(page)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid ID")
	}

	tx, err := h.history.FindByID(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(tx)
}

// queryTime accepts RFC3339 or a plain date. A plain date used as an upper
// bound covers the whole day.
func queryTime(c *fiber.Ctx, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
