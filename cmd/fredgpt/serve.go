package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fredgpt/server/internal/agent/graph"
	"github.com/fredgpt/server/internal/agent/graph/tools"
	"github.com/fredgpt/server/internal/agent/model"
	"github.com/fredgpt/server/internal/agent/repo"
	"github.com/fredgpt/server/internal/core"
	"github.com/fredgpt/server/internal/fomc"
	"github.com/fredgpt/server/internal/fred"
	"github.com/fredgpt/server/internal/metrics"
	"github.com/fredgpt/server/internal/search"
	"github.com/fredgpt/server/internal/server"
	logx "github.com/fredgpt/server/pkg/logger"
	pkgpostgres "github.com/fredgpt/server/pkg/postgres"
)

const metricsNamespace = "fredgpt"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg AppConfig
	if err := loadEnv(&cfg); err != nil {
		return err
	}
	initLogger(cfg.Environment, os.Stdout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fredClient, err := fred.NewClient(cfg.Fred)
	if err != nil {
		return err
	}

	searchClient, err := search.NewClient(cfg.Search)
	if err != nil {
		return err
	}

	db, err := cfg.Postgres.New()
	if err != nil {
		return err
	}
	defer pkgpostgres.Close(db)

	store := fomc.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	adapters := &tools.Adapters{
		Fred:     fredClient,
		Meetings: store,
		Search:   searchClient,
	}
	if searchClient.Configured() {
		adapters.Retriever = search.NewRetriever(searchClient, search.DefaultTopK)
	} else {
		logx.Warn().Msg("Hybrid search not configured; document retrieval disabled")
	}

	conversationRepo, closeRepo, err := newConversationRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	collector := metrics.NewCollector(metricsNamespace)

	runner, err := graph.BuildResponseGraph(ctx, graph.Config{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		ResponseModel:    cfg.Response,
		Conversation:     cfg.Conversation,
		ConversationRepo: conversationRepo,
		Adapters:         adapters,
		Metrics:          collector,
	})
	if err != nil {
		return err
	}

	return server.New(runner, server.Options{
		Addr:           cfg.HTTP.Addr,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Environment:    core.ParseEnvironment(cfg.Environment),
		Metrics:        collector,
	}).Run(ctx)
}

// newConversationRepo connects to Redis when REDIS_URL is set. Without it
// sessions are disabled and the repo is nil.
func newConversationRepo(ctx context.Context, cfg AppConfig) (model.ConversationRepository, func(), error) {
	if !cfg.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set; conversation sessions disabled")
		return nil, func() {}, nil
	}

	ttl, err := cfg.Conversation.SessionTTL()
	if err != nil {
		return nil, nil, err
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	logx.Info().Msg("Connected to Redis successfully")

	return repo.NewRedisConversationRepository(rdb, ttl, repo.WithMaxMessages(cfg.Conversation.MaxMessages)), func() { _ = rdb.Close() }, nil
}
