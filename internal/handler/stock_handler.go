package handler

import (
	"strconv"
	"time"

	"go-promoter-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	aggregation service.AggregationService
	audit       service.AuditService
}

func NewStockHandler(aggregation service.AggregationService, audit service.AuditService) *StockHandler {
	return &StockHandler{aggregation: aggregation, audit: audit}
}

func (h *StockHandler) GetPromoterHoldings(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid promoter ID")
	}

	holdings, err := h.aggregation.PromoterHoldings(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(holdings)
}

func (h *StockHandler) GetItemQuantities(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid item ID")
	}

	q, err := h.aggregation.ItemQuantities(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(q)
}

// GetSummary returns per-item and grand totals.
// Query params: brand_id (optional)
func (h *StockHandler) GetSummary(c *fiber.Ctx) error {
	brandID, err := queryUUID(c, "brand_id")
	if err != nil {
		return badRequest(c, "Invalid brand_id")
	}

	summary, err := h.aggregation.Summary(c.UserContext(), brandID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(summary)
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7), or from/to; brand_id (optional)
func (h *StockHandler) GetStockMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	if t, err := queryTime(c, "from", false); err != nil {
		return badRequest(c, "Invalid from")
	} else if t != nil {
		from = *t
	}
	if t, err := queryTime(c, "to", true); err != nil {
		return badRequest(c, "Invalid to")
	} else if t != nil {
		to = *t
	}
	brandID, err := queryUUID(c, "brand_id")
	if err != nil {
		return badRequest(c, "Invalid brand_id")
	}

	data, err := h.aggregation.GetStockMovement(c.UserContext(), from, to, brandID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"from": from,
		"to":   to,
		"data": data,
	})
}

func (h *StockHandler) GetCirculationAudit(c *fiber.Ctx) error {
	report, err := h.audit.Circulation(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(report)
}
