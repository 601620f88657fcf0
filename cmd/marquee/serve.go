package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/marquee/internal/config"
	"github.com/vadimtrunov/marquee/internal/core"
	"github.com/vadimtrunov/marquee/internal/frontend/telegram"
	"github.com/vadimtrunov/marquee/internal/metrics"
	"github.com/vadimtrunov/marquee/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		noTelegram bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web view",
		Long: "Serve the popular movies grid and detail pages over HTTP, with a JSON API,\n" +
			"a health probe and Prometheus metrics. The Telegram bot runs alongside when configured.",
		Example: `  marquee serve
  marquee serve --addr 127.0.0.1:9000 --no-telegram`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(addr, noTelegram)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noTelegram, "no-telegram", false, "do not start the Telegram bot even if configured")
	return cmd
}

func runServe(addr string, noTelegram bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	logger := config.SetupLogger(cfg.App.LogLevel, os.Stderr)
	m := metrics.New()
	cat, err := initCatalog(cfg, m, logger)
	if err != nil {
		return err
	}

	h, err := web.NewHandler(cat, m, logger)
	if err != nil {
		return err
	}
	frontends := []core.Frontend{web.NewServer(addr, h.Routes(), logger)}

	if cfg.Telegram != nil && !noTelegram {
		bot, err := telegram.New(
			cfg.Telegram.BotToken,
			cfg.Telegram.AllowedUserIDs,
			cat,
			cfg.Telegram.PopularLimit,
			logger,
		)
		if err != nil {
			return err
		}
		frontends = append(frontends, bot)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("marquee starting",
		slog.String("version", version),
		slog.String("addr", addr),
		slog.Int("frontends", len(frontends)),
	)
	return runFrontends(ctx, logger, frontends...)
}
