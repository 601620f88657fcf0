package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	welcomeMsg      = "Welcome to Marquee! Send /popular to see what's trending, or /movie <id> to open a movie."
	usageMsg        = "Usage: /movie <id>"
	stoppedMsg      = "Stopped."
)

// handleMessage processes an incoming text message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	cmd, args := parseCommand(msg.Text)
	switch cmd {
	case "/start", "/help":
		b.sendText(chatID, welcomeMsg)
	case "/popular":
		b.showPopular(ctx, chatID)
	case "/movie":
		id, err := strconv.Atoi(args)
		if err != nil {
			b.sendText(chatID, usageMsg)
			return
		}
		b.showDetail(ctx, chatID, id)
	case "/stop":
		b.sessions.reset(chatID)
		b.sendText(chatID, stoppedMsg)
	default:
		b.sendText(chatID, welcomeMsg)
	}
}

// handleCallback processes inline keyboard callback queries.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	// Acknowledge the callback immediately.
	b.api.Request(tgbotapi.NewCallback(cq.ID, "")) //nolint:errcheck // best-effort ack

	if !b.sessions.isAllowed(userID) {
		return
	}

	id, ok := parseCallback(cq.Data)
	if !ok {
		return
	}
	b.showDetail(ctx, chatID, id)
}

// showPopular loads the popular list and replies with it. A newer load in
// the same chat supersedes this one, and its result is then dropped.
func (b *Bot) showPopular(ctx context.Context, chatID int64) {
	tracker := b.sessions.tracker(chatID)
	loadCtx, ticket := tracker.Begin(ctx)
	b.sendTyping(chatID)

	movies, err := b.catalog.Popular(loadCtx)
	if !tracker.Finish(ticket) {
		b.logger.Debug("dropping stale popular result", slog.Int64("chat_id", chatID))
		return
	}
	if err != nil {
		b.sendText(chatID, catalog.MsgListFailed)
		return
	}

	if b.popularLimit > 0 && len(movies) > b.popularLimit {
		movies = movies[:b.popularLimit]
	}
	b.sendMarkdown(chatID, FormatPopular(movies), popularKeyboard(movies))
}

// showDetail loads one movie and replies with its poster and detail card.
func (b *Bot) showDetail(ctx context.Context, chatID int64, id int) {
	tracker := b.sessions.tracker(chatID)
	loadCtx, ticket := tracker.Begin(ctx)
	b.sendTyping(chatID)

	d, err := b.catalog.Detail(loadCtx, id)
	if !tracker.Finish(ticket) {
		b.logger.Debug("dropping stale detail result",
			slog.Int64("chat_id", chatID),
			slog.Int("movie_id", id),
		)
		return
	}
	if err != nil {
		b.sendText(chatID, catalog.DetailFailureMessage(err))
		return
	}

	b.sendPoster(chatID, d)
	b.sendMarkdown(chatID, FormatDetail(d), detailKeyboard(d))
}

// sendMarkdown sends a MarkdownV2 message with an optional keyboard,
// falling back to plain text if Telegram rejects the markup.
func (b *Bot) sendMarkdown(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send markdown, retrying plain",
			slog.String("error", err.Error()),
		)
		plain := tgbotapi.NewMessage(chatID, stripMdV2(text))
		if kb != nil {
			plain.ReplyMarkup = kb
		}
		if _, err := b.api.Send(plain); err != nil {
			b.logger.Error("failed to send message",
				slog.Int64("chat_id", chatID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// sendTyping shows the typing indicator while a load is in flight.
func (b *Bot) sendTyping(chatID int64) {
	b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)) //nolint:errcheck // best-effort typing indicator
}

// sendPoster sends the movie poster as a photo. Movies without a poster
// get none; Telegram cannot fetch the inline placeholder.
func (b *Bot) sendPoster(chatID int64, d *catalog.Detail) {
	url := tmdb.ImageURL(d.Movie.PosterPath, tmdb.SizePoster)
	if url == "" {
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = d.Movie.Title
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Debug("failed to send poster",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

// parseCommand splits "/cmd@botname args" into "/cmd" and "args".
// Text that is not a command yields an empty command.
func parseCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd, args, _ = strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// stripMdV2 removes MarkdownV2 escapes and emphasis markers.
func stripMdV2(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*' || r == '_':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
