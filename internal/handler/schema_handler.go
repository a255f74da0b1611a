package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/graphsage/server/internal/service"
)

// SchemaHandler serves the rendered schema diagram.
type SchemaHandler struct {
	svc service.SchemaService
}

func NewSchemaHandler(svc service.SchemaService) *SchemaHandler {
	return &SchemaHandler{svc: svc}
}

func (h *SchemaHandler) Register(r fiber.Router) {
	r.Get("/schema", h.schema)
}

func (h *SchemaHandler) schema(c *fiber.Ctx) error {
	diagram, err := h.svc.Describe(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{"schema": diagram})
}
