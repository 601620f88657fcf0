package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/core"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

// Catalog is the view-model the bot renders.
type Catalog interface {
	Popular(ctx context.Context) ([]tmdb.MovieSummary, error)
	Detail(ctx context.Context, id int) (*catalog.Detail, error)
}

// sender is the subset of the Bot API used to reply. Send is for
// messages that return a Message; Request for calls that return a bare
// result (callback answers, chat actions, markup edits).
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is the Telegram frontend for Marquee.
// It implements the core.Frontend interface.
type Bot struct {
	poller       *tgbotapi.BotAPI
	api          sender
	catalog      Catalog
	sessions     *sessionManager
	popularLimit int
	logger       *slog.Logger
}

// compile-time check.
var _ core.Frontend = (*Bot)(nil)

// New creates a new Telegram Bot. popularLimit caps the /popular list;
// zero or less lists the whole page.
func New(token string, allowedUserIDs []int64, c Catalog, popularLimit int, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b := newBot(api, c, allowedUserIDs, popularLimit, logger)
	b.poller = api
	return b, nil
}

func newBot(api sender, c Catalog, allowedUserIDs []int64, popularLimit int, logger *slog.Logger) *Bot {
	if c == nil {
		panic("telegram.New: catalog must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:          api,
		catalog:      c,
		sessions:     newSessionManager(allowedUserIDs),
		popularLimit: popularLimit,
		logger:       logger,
	}
}

// Name returns the frontend name.
func (b *Bot) Name() string { return "telegram" }

// Start starts the long-polling loop. It blocks until ctx is canceled.
func (b *Bot) Start(ctx context.Context) error {
	if b.poller == nil {
		return fmt.Errorf("telegram bot has no API connection")
	}
	b.logger.Info("telegram bot started",
		slog.String("username", b.poller.Self.UserName),
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.poller.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.poller.StopReceivingUpdates()
			b.sessions.stopAll()
			b.logger.Info("telegram bot stopped")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate dispatches an incoming Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}
