package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredgpt/server/internal/fomc"
	"github.com/fredgpt/server/internal/mcpserver"
	logx "github.com/fredgpt/server/pkg/logger"
	pkgpostgres "github.com/fredgpt/server/pkg/postgres"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the latest FOMC decision over MCP stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Logs go to stderr; stdout carries protocol frames.
		return withStore(cmd.Context(), func(ctx context.Context, store *fomc.Store) error {
			return mcpserver.Serve(ctx, store)
		}, true)
	},
}

var loadMeetingsCmd = &cobra.Command{
	Use:   "load-meetings <dir>",
	Short: "Upsert every *.json meeting file in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *fomc.Store) error {
			n, err := store.LoadMeetingsDir(ctx, args[0])
			if err != nil {
				return err
			}
			logx.Info().Str("dir", args[0]).Int("meetings", n).Msg("Meetings loaded")
			return nil
		}, false)
	},
}

var loadFraserCmd = &cobra.Command{
	Use:   "load-fraser <file>",
	Short: "Import FRASER catalog records, skipping ids already stored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *fomc.Store) error {
			n, err := store.LoadCatalogFile(ctx, args[0])
			if err != nil {
				return err
			}
			logx.Info().Str("file", args[0]).Int64("inserted", n).Msg("FRASER catalog loaded")
			return nil
		}, false)
	},
}

// withStore opens and migrates the meeting store, then runs fn against it.
func withStore(ctx context.Context, fn func(context.Context, *fomc.Store) error, logToStderr bool) error {
	var cfg StoreConfig
	if err := loadEnv(&cfg); err != nil {
		return err
	}
	out := os.Stdout
	if logToStderr {
		out = os.Stderr
	}
	initLogger(cfg.Environment, out)

	db, err := cfg.Postgres.New()
	if err != nil {
		return err
	}
	defer pkgpostgres.Close(db)

	store := fomc.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	return fn(ctx, store)
}
