package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/graphsage/server/internal/service"
)

func RegisterRoutes(app *fiber.App,
	assistantSvc service.AssistantService,
	knowledgeSvc service.KnowledgeService,
	schemaSvc service.SchemaService,
) {
	v1 := app.Group("/api/v1")
	NewAskHandler(assistantSvc).Register(v1)
	NewSearchHandler(knowledgeSvc).Register(v1)
	NewSchemaHandler(schemaSvc).Register(v1)
}
