package handler

import (
	"go-promoter-inventory/internal/middleware"
	"go-promoter-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReturnHandler struct {
	returns service.ReconciliationService
}

func NewReturnHandler(returns service.ReconciliationService) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

func (h *ReturnHandler) BeginReturn(c *fiber.Ctx) error {
	var req service.LedgerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	req.EmployeeID = middleware.EmployeeID(c)

	outcome, err := h.returns.BeginReturn(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return returnOutcomeResponse(c, outcome)
}

func (h *ReturnHandler) Confirm(c *fiber.Ctx) error {
	return h.resolve(c, service.DecisionForceConfirm)
}

func (h *ReturnHandler) Cancel(c *fiber.Ctx) error {
	return h.resolve(c, service.DecisionCancel)
}

func (h *ReturnHandler) resolve(c *fiber.Ctx, decision service.Decision) error {
	outcome, err := h.returns.Resolve(c.UserContext(), c.Params("token"), decision)
	if err != nil {
		return errorResponse(c, err)
	}
	return returnOutcomeResponse(c, outcome)
}

func returnOutcomeResponse(c *fiber.Ctx, outcome *service.ReturnOutcome) error {
	switch outcome.State {
	case service.StateAwaitingOverride:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": outcome.Warning.Message(),
			"data":    outcome,
		})
	case service.StateIdle:
		return c.JSON(fiber.Map{"message": "Return cancelled", "data": outcome})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Return recorded", "data": outcome})
}
