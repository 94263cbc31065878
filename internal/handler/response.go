package handler

import (
	"go-promoter-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalidRequest:
		return fiber.StatusBadRequest
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindItemInactive:
		return fiber.StatusUnprocessableEntity
	case service.KindInsufficientStock:
		return fiber.StatusConflict
	case service.KindVerificationFailed:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// errorResponse writes err with the status of its kind. Storage errors do not
// leak driver details to the client.
func errorResponse(c *fiber.Ctx, err error) error {
	kind := service.KindOf(err)
	msg := err.Error()
	if kind == service.KindStorage {
		msg = "Storage error, please retry"
	}
	return c.Status(statusFor(kind)).JSON(fiber.Map{
		"error": msg,
		"kind":  kind.String(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"kind":  service.KindInvalidRequest.String(),
	})
}

// Helper untuk parse UUID dari path param
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func queryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
