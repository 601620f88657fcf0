package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/marquee/internal/config"
	"github.com/vadimtrunov/marquee/internal/frontend/telegram"
)

// newBotCmd returns the "bot" subcommand for running the Telegram bot alone.
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long:  "Start the Marquee Telegram bot without the web server.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBot()
		},
	}
}

func runBot() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Telegram == nil {
		return errors.New(
			"telegram configuration is required: set telegram.bot_token in config or MARQUEE_TELEGRAM_BOT_TOKEN env var",
		)
	}

	logger := config.SetupLogger(cfg.App.LogLevel, os.Stderr)
	cat, err := initCatalog(cfg, nil, logger)
	if err != nil {
		return err
	}

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

	ctx, cancel := signalContext()
	defer cancel()

	return runFrontends(ctx, logger, bot)
}
