package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderEmployeeID = "X-Employee-ID"
	LocalEmployeeID  = "employee_id"
)

// RequireEmployee reads the acting employee set by the session layer in front
// of this service and stores it in the request context for the handlers.
func RequireEmployee() fiber.Handler {
	return func(c *fiber.Ctx) error {
		employeeID := strings.TrimSpace(c.Get(HeaderEmployeeID))
		if employeeID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing " + HeaderEmployeeID + " header",
				"kind":  "invalid_request",
			})
		}
		if len(employeeID) > 255 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": HeaderEmployeeID + " is too long",
				"kind":  "invalid_request",
			})
		}

		c.Locals(LocalEmployeeID, employeeID)
		return c.Next()
	}
}

// EmployeeID returns the employee stored by RequireEmployee, or "" outside it.
func EmployeeID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalEmployeeID).(string)
	return id
}
