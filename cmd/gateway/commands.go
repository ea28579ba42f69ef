// commands.go contains the cobra command definitions and their flag
// configuration. Each command builder wires a flag set to its handler
// in handlers_serve.go / handlers_config.go.
package main

import (
	"github.com/spf13/cobra"
)

// buildServeCmd creates the "serve" command that starts the gateway.
func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Jarvisgate request gateway",
		Long: `Start the Jarvisgate request gateway with every configured
collaborator wired up.

The server will:
1. Load and validate configuration from the given file
2. Construct the auth service, cache, classifier, context store,
   workflow engine, tool broker, session registry, rate limiter, and
   analytics sink
3. Register and start every enabled tool server
4. Serve the REST API and duplex endpoint on one HTTP listener

Graceful shutdown runs on SIGINT/SIGTERM.`,
		Example: `  # Start with default config
  jarvisgate serve

  # Start with a custom config file
  jarvisgate serve --config /etc/jarvisgate/production.yaml

  # Start with debug logging
  jarvisgate serve --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), resolveConfigPath(configPath), debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

// buildConfigCmd creates the "config" command group.
func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration files",
	}
	cmd.AddCommand(buildConfigValidateCmd())
	return cmd
}

func buildConfigValidateCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a configuration file and report any validation issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd, resolveConfigPath(configPath))
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	return cmd
}
