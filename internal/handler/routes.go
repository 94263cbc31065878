package handler

import (
	"go-promoter-inventory/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Transactions *TransactionHandler
	Returns      *ReturnHandler
	Stock        *StockHandler
}

// RegisterRoutes mounts the ledger API under api. Write routes require the
// acting employee header; reads do not.
func RegisterRoutes(api fiber.Router, h Handlers) {
	employee := middleware.RequireEmployee()

	// Transaction Routes
	api.Get("/transactions", h.Transactions.GetTransactions)
	api.Get("/transactions/movement", h.Stock.GetStockMovement)
	api.Get("/transactions/:id", h.Transactions.GetTransaction)
	api.Post("/transactions/bulk", employee, h.Transactions.CreateBulk)
	api.Post("/transactions/:action", employee, h.Transactions.CreateTransaction)

	// Return override Routes
	api.Post("/returns", employee, h.Returns.BeginReturn)
	api.Post("/returns/:token/confirm", employee, h.Returns.Confirm)
	api.Post("/returns/:token/cancel", employee, h.Returns.Cancel)

	// Aggregation Routes
	api.Get("/promoters/:id/holdings", h.Stock.GetPromoterHoldings)
	api.Get("/items/quantities", h.Stock.GetSummary)
	api.Get("/items/:id/quantities", h.Stock.GetItemQuantities)
	api.Get("/audit/circulation", h.Stock.GetCirculationAudit)
}
