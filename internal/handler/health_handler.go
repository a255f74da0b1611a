package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/graphsage/server/internal/graphql"
)

// HealthHandler reports on the two upstreams the assistant cannot work
// without: the knowledge store and the GraphQL endpoint.
type HealthHandler struct {
	db  *mongo.Client
	gql *graphql.Client
}

func NewHealthHandler(db *mongo.Client, gql *graphql.Client) *HealthHandler {
	return &HealthHandler{db: db, gql: gql}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"mongo":    h.checkMongo(),
		"endpoint": h.checkEndpoint(),
	})
}

func (h *HealthHandler) checkMongo() string {
	if h.db == nil {
		return "not_configured"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx, nil); err != nil {
		return "error"
	}
	return "connected"
}

func (h *HealthHandler) checkEndpoint() string {
	if h.gql == nil {
		return "not_configured"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	// The cheapest legal query; any well-formed response counts as reachable.
	if _, err := h.gql.Execute(ctx, "{ __typename }", nil); err != nil {
		return "error"
	}
	return "reachable"
}
