package main

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/fredgpt/server/internal/agent/model"
	"github.com/fredgpt/server/internal/core"
	logx "github.com/fredgpt/server/pkg/logger"
	pkgpostgres "github.com/fredgpt/server/pkg/postgres"
	pkgredis "github.com/fredgpt/server/pkg/redis"
)

// StoreConfig is what the store-only commands need.
type StoreConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Postgres    pkgpostgres.Config
}

// AppConfig defines all configurable parameters for the API server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	StoreConfig

	// Infrastructure
	Redis pkgredis.Config
	HTTP  model.HTTPConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Response     model.ResponseModelConfig
	Conversation model.ConversationConfig

	// Data providers
	Fred   model.FredConfig
	Search model.SearchConfig
}

// loadEnv reads the dotenv file and populates cfg. A missing file is only a warning.
func loadEnv(cfg any) error {
	if err := godotenv.Load(envFile); err != nil {
		logx.Warn().Str("file", envFile).Err(err).Msg("Could not load .env file")
	}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("process environment config: %w", err)
	}
	return nil
}

func initLogger(env string, out io.Writer) {
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(env), Output: out})
}
