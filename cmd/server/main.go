package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/graphsage/server/internal/config"
	"github.com/graphsage/server/internal/database"
	"github.com/graphsage/server/internal/graphql"
	"github.com/graphsage/server/internal/handler"
	"github.com/graphsage/server/internal/repository"
	"github.com/graphsage/server/internal/service"
)

// main is the single entry‑point for the REST API.
func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  - GraphQL endpoint: %s", cfg.GraphQLEndpoint)
	log.Printf("  - Database: %s", cfg.DBName)
	log.Printf("  - Max attempts: %d", cfg.MaxAttempts)
	log.Printf("  - Mutations allowed: %t", cfg.AllowMutations)

	ctx := context.Background()

	// Connect to MongoDB (knowledge store)
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := database.Connect(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer database.Disconnect(client)
	log.Printf("Connected to MongoDB")

	db := client.Database(cfg.DBName)
	knowledgeRepo := repository.NewKnowledgeRepository(db, cfg.KnowledgeCollection)

	// Initialize AI clients. USE_DUMMY_AI=true swaps in no-op stand-ins so
	// the HTTP surface can be exercised without GCP credentials.
	var embedder service.Embedder
	var llm service.LLM
	if os.Getenv("USE_DUMMY_AI") == "true" {
		log.Printf("USE_DUMMY_AI set; using stand-in LLM and embedder")
		embedder = service.NewDummyEmbedder()
		llm = service.NewDummyLLM()
	} else {
		vertexEmbedder, err := service.NewVertexEmbedder(ctx, cfg.ProjectID, cfg.Location, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("Failed to initialize Vertex AI embedder: %v", err)
		}
		defer vertexEmbedder.Close()
		embedder = vertexEmbedder

		vertexLLM, err := service.NewVertexLLM(ctx, cfg.ProjectID, cfg.Location, cfg.LLMModel)
		if err != nil {
			log.Fatalf("Failed to initialize Vertex AI LLM: %v", err)
		}
		defer vertexLLM.Close()
		llm = vertexLLM
	}

	// GraphQL endpoint client
	gql := graphql.NewClient(cfg.GraphQLEndpoint, cfg.GraphQLAuthToken, cfg.CallTimeout)

	// Initialize services
	knowledgeSvc := service.NewKnowledgeService(knowledgeRepo, embedder, cfg.MinSimilarity)
	schemaSvc := service.NewSchemaService(gql)
	contextSvc := service.NewContextService(schemaSvc, knowledgeSvc, cfg.TopK)
	executor := service.NewExecutorService(gql, knowledgeSvc, cfg.AllowMutations, cfg.MaxResponseWords, cfg.CallTimeout)
	querySvc := service.NewQueryService(llm, executor, contextSvc, cfg.MaxAttempts, cfg.CallTimeout, cfg.RefreshContextOnRepair)
	analysisSvc := service.NewAnalysisService(llm, cfg.CallTimeout)
	assistantSvc := service.NewAssistantService(querySvc, analysisSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Register routes
	handler.RegisterRoutes(app, assistantSvc, knowledgeSvc, schemaSvc)

	// Add health check
	handler.NewHealthHandler(client, gql).Register(app)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
