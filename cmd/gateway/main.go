// Package main provides the CLI entry point for the Jarvisgate voice
// assistant gateway.
//
// Jarvisgate exposes a REST API and a duplex (WebSocket) channel that
// classify spoken or typed utterances, carry them through multi-step
// workflows, and dispatch to tool servers (document generation, email,
// calendar, web search, AI completion) behind a single bearer-auth
// boundary.
//
// # Basic Usage
//
// Start the server:
//
//	jarvisgate serve --config jarvisgate.yaml
//
// Validate a configuration file without starting anything:
//
//	jarvisgate config validate --config jarvisgate.yaml
//
// # Environment Variables
//
//   - JARVISGATE_HOST: overrides server.host
//   - JARVISGATE_HTTP_PORT: overrides server.http_port
//   - JARVISGATE_JWT_SECRET: overrides auth.jwt_secret
//   - JARVISGATE_TOKEN_TTL: overrides auth.token_ttl (Go duration syntax)
//   - JARVISGATE_ANALYTICS_DB: overrides analytics.database_path
//   - JARVISGATE_LOG_LEVEL: overrides logging.level
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main so tests can exercise the command tree directly.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jarvisgate",
		Short: "Jarvisgate - voice assistant request gateway",
		Long: `Jarvisgate classifies voice and text utterances, drives multi-step
workflows, and dispatches to tool servers behind a single REST and
duplex boundary.

Documentation: https://github.com/haasonsaas/jarvisgate`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildConfigCmd(),
		buildVersionCmd(),
	)

	return rootCmd
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "jarvisgate %s (commit: %s, built: %s)\n", version, commit, date)
			return nil
		},
	}
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("JARVISGATE_CONFIG"); env != "" {
		return env
	}
	return "jarvisgate.yaml"
}
