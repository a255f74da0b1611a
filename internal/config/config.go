// Package config centralises all environment / flag configuration for the API.
// It should be imported only by `cmd/server` (and test code). Business‑logic
// layers receive an already‑built Config instance via dependency‑injection.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option the server needs.
// Keep it flat and simple—prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port string

	// GraphQL endpoint under interrogation
	GraphQLEndpoint  string
	GraphQLAuthToken string

	// Query loop tuning
	MaxAttempts            int
	CallTimeout            time.Duration
	MaxResponseWords       int
	AllowMutations         bool
	RefreshContextOnRepair bool

	// Data stores
	MongoURI            string
	DBName              string
	KnowledgeCollection string

	// Retrieval
	TopK          int
	MinSimilarity float64

	// Vertex AI
	ProjectID      string
	Location       string
	LLMModel       string
	EmbeddingModel string

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load parses the environment (and an optional .env file) into Config.
// It panics on missing critical variables so mis‑configurations fail fast.
// MAX_ATTEMPTS is deliberately required: no attempt budget is correct for
// every deployment, so we refuse to guess one.
func Load() Config {
	// godotenv.Load() is a no‑op if .env doesn't exist—safe in production.
	_ = godotenv.Load()

	return Config{
		Port:             must("PORT"),
		GraphQLEndpoint:  must("GRAPHQL_ENDPOINT"),
		GraphQLAuthToken: os.Getenv("GRAPHQL_AUTH_TOKEN"),

		MaxAttempts:            mustInt("MAX_ATTEMPTS"),
		CallTimeout:            getDuration("CALL_TIMEOUT_SEC", 30),
		MaxResponseWords:       getInt("MAX_RESPONSE_WORDS", 500),
		AllowMutations:         getBool("ALLOW_MUTATIONS", false),
		RefreshContextOnRepair: getBool("REFRESH_CONTEXT_ON_REPAIR", false),

		MongoURI:            must("MONGODB_URI"),
		DBName:              getEnv("MONGODB_DB", "graphsage"),
		KnowledgeCollection: getEnv("KNOWLEDGE_COLLECTION", "knowledge"),

		TopK:          getInt("TOP_K", 5),
		MinSimilarity: getFloat("MIN_SIMILARITY", 0.5),

		ProjectID:      must("GCP_PROJECT_ID"),
		Location:       must("GCP_LOCATION"),
		LLMModel:       getEnv("LLM_MODEL", "gemini-2.0-flash-lite-001"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-005"),

		ReadTimeout:  getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout: getDuration("WRITE_TIMEOUT_SEC", 120),
	}
}

// must fetches a required env var or terminates the program.
func must(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("env var %s is required", key)
	}
	return val
}

// mustInt fetches a required positive-integer env var or terminates the program.
func mustInt(key string) int {
	n, err := strconv.Atoi(must(key))
	if err != nil || n <= 0 {
		log.Fatalf("env var %s must be a positive integer, got %q", key, os.Getenv(key))
	}
	return n
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt reads an integer from env, falling back to defaultVal.
func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q; using default %d", key, v, defaultVal)
	}
	return defaultVal
}

// getFloat reads a float from env, falling back to defaultVal.
func getFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid %s=%q; using default %g", key, v, defaultVal)
	}
	return defaultVal
}

// getBool reads a boolean ("true"/"false"/"1"/"0") from env.
func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid %s=%q; using default %t", key, v, defaultVal)
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			return time.Duration(sec) * time.Second
		}
		log.Printf("invalid %s=%q; using default %ds", key, v, defaultSec)
	}
	return time.Duration(defaultSec) * time.Second
}
