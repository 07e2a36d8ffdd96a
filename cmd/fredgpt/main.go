package main

import (
	"os"

	"github.com/spf13/cobra"

	logx "github.com/fredgpt/server/pkg/logger"
)

var envFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fredgpt",
	Short: "Economic data assistant backed by FRED, FOMC records and hybrid search",
	Long: `fredgpt answers economic data questions through a tool-calling chat model.

Available commands:
  serve          - Run the HTTP API (POST /ask, GET /, GET /metrics)
  mcp            - Serve the latest FOMC decision over MCP stdio
  load-meetings  - Upsert FOMC meeting JSON files into the store
  load-fraser    - Import a FRASER catalog file into the title index`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(loadMeetingsCmd)
	rootCmd.AddCommand(loadFraserCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
