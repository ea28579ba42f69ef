package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/jarvisgate/internal/config"
)

// runConfigValidate loads configPath and reports whether it parses and
// validates cleanly, without starting anything.
func runConfigValidate(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	fmt.Fprintf(out, "%s: ok (http %s:%d, %d tool(s) configured)\n",
		configPath, cfg.Server.Host, cfg.Server.HTTPPort, len(cfg.Broker.Tools))
	return nil
}
