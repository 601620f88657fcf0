package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/marquee/internal/config"
	mcpserver "github.com/vadimtrunov/marquee/internal/mcp"
)

// newMCPServeCmd returns the "mcp-serve" subcommand. It exposes the catalog
// as MCP tools over stdin/stdout, so logs go to stderr.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Start MCP server over stdio",
		Long:  "Expose the popular_movies and movie_details tools to MCP clients over stdin/stdout.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			logger := config.SetupLogger(cfg.App.LogLevel, os.Stderr)
			cat, err := initCatalog(cfg, nil, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			srv := mcpserver.NewServer(cat, version, logger)
			return srv.ServeStdio(ctx)
		},
	}
}
