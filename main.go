package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/schema-designer/server/internal/agent/graph"
	"github.com/schema-designer/server/internal/agent/model"
	"github.com/schema-designer/server/internal/agent/repo"
	"github.com/schema-designer/server/internal/core"
	logx "github.com/schema-designer/server/pkg/logger"
	pkgpostgres "github.com/schema-designer/server/pkg/postgres"
	pkgredis "github.com/schema-designer/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the design agent,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	// LLM provider
	APIKey  string `envconfig:"BUILD_AGENT_API_KEY" required:"true"`
	BaseURL string `envconfig:"BUILD_AGENT_BASE_URL"`

	// Agent configs
	Build        model.BuildAgentModelConfig
	Conversation model.ConversationConfig

	// Demo run
	BuildingSchemaID string `envconfig:"DEMO_BUILDING_SCHEMA_ID" required:"true"`
	ConversationID   string `envconfig:"DEMO_CONVERSATION_ID" default:"demo-conversation"`
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{Environment: envCfg.Environment, Level: envCfg.LogLevel})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()

	db, err := envCfg.Postgres.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Postgres pool")
	}
	defer db.Close()

	logx.Info().Str("environment", envCfg.Environment.String()).Msg("Connected to Redis and Postgres")

	schemaRepo := repo.NewPostgresSchemaRepository(db)
	if envCfg.Postgres.AutoMigrate {
		if err := schemaRepo.EnsureTables(ctx); err != nil {
			logx.Fatal().Err(err).Msg("Failed to create schema tables")
		}
		if err := schemaRepo.EnsureBuildingSchema(ctx, envCfg.BuildingSchemaID); err != nil {
			logx.Fatal().Err(err).Msg("Failed to seed demo building schema")
		}
	}

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", envCfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}

	runner, err := graph.BuildDesignGraph(ctx, graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		BuildModel:       envCfg.Build,
		Conversation:     envCfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		SchemaRepo:       schemaRepo,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build graph")
	}

	requests := []struct {
		description string
		input       string
	}{
		{
			description: "Initial design",
			input:       "I'm building a blog. I need users with unique emails, and posts written by users.",
		},
		{
			description: "Incremental change",
			input:       "Add comments on posts, each written by a user, and index comments by post.",
		},
		{
			description: "Question only",
			input:       "Which tables reference users?",
		},
	}

	for i, req := range requests {
		fmt.Printf("\nRequest %d: %s\n", i+1, req.description)
		fmt.Printf("Input: %q\n", req.input)

		state, err := runner.Invoke(ctx, model.DesignRequest{
			ConversationID:   envCfg.ConversationID,
			BuildingSchemaID: envCfg.BuildingSchemaID,
			UserInput:        req.input,
		})
		if err != nil {
			logx.Fatal().Err(err).Int("request", i+1).Msg("Failed to invoke graph")
		}

		fmt.Printf("Answer: %s\n", state.GeneratedAnswer)
		if state.Error != "" {
			fmt.Printf("Schema update failed: %s\n", state.Error)
		}
		fmt.Printf("Schema version: %d\n", state.LatestVersionNumber)
	}
}
