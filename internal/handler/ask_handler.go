package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/graphsage/server/internal/models"
	"github.com/graphsage/server/internal/service"
)

// AskHandler wires HTTP → AssistantService.
type AskHandler struct {
	svc service.AssistantService
}

// NewAskHandler returns a handler instance.
func NewAskHandler(svc service.AssistantService) *AskHandler {
	return &AskHandler{svc: svc}
}

// Register mounts POST /ask on the given router group.
func (h *AskHandler) Register(r fiber.Router) {
	r.Post("/ask", h.ask)
}

func (h *AskHandler) ask(c *fiber.Ctx) error {
	var req models.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return fiber.NewError(fiber.StatusBadRequest, "question is required")
	}

	log.Printf("ask: %q", req.Question)

	resp, err := h.svc.Ask(c.UserContext(), req.Question)
	if err != nil {
		// Unexpected fault — the two normal terminal states are encoded in
		// resp.Succeeded, so anything landing here is infrastructure.
		log.Printf("ask failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(resp)
}
