package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

const (
	callbackPrefix = "movie:" // prefix for detail callback data

	ratingBarWidth = 10
	maxButtonLabel = 30 // max runes in inline keyboard button label
	maxReviews     = 3  // reviews shown on a detail card
	maxSimilar     = 5  // similar-movie buttons on a detail card
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// RatingBar renders a vote average (0-10) as a text bar of the given width
// followed by the score, e.g. "[████████░░] 8.2 / 10".
func RatingBar(vote float64, width int) string {
	if width < 1 {
		width = ratingBarWidth
	}
	percent := tmdb.MovieSummary{VoteAverage: vote}.RatingPercent()
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	return fmt.Sprintf("[%s%s] %.1f / 10",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		vote,
	)
}

// FormatPopular renders the popular list as a numbered MarkdownV2 message.
func FormatPopular(movies []tmdb.MovieSummary) string {
	if len(movies) == 0 {
		return EscapeMdV2("No popular movies right now.")
	}
	var sb strings.Builder
	sb.WriteString(FormatBold("Popular movies"))
	sb.WriteString("\n\n")
	for i, m := range movies {
		fmt.Fprintf(&sb, "%s %s\n%s\n",
			EscapeMdV2(strconv.Itoa(i+1)+"."),
			FormatBold(m.Title),
			EscapeMdV2(RatingBar(m.VoteAverage, ratingBarWidth)),
		)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatDetail renders a detail record as a MarkdownV2 card.
func FormatDetail(d *catalog.Detail) string {
	m := d.Movie
	var sb strings.Builder

	sb.WriteString(FormatBold(m.Title))
	if m.Tagline != "" {
		sb.WriteString("\n" + FormatItalic(m.Tagline))
	}
	sb.WriteString("\n\n")
	sb.WriteString(EscapeMdV2(RatingBar(m.VoteAverage, ratingBarWidth)))
	sb.WriteString("\n")

	release := m.ReleaseDate
	if release == "" {
		release = "unknown"
	}
	sb.WriteString(EscapeMdV2("Release date: " + release))
	if m.Runtime > 0 {
		sb.WriteString(EscapeMdV2(fmt.Sprintf(" · %d min", m.Runtime)))
	}
	sb.WriteString("\n")

	if len(m.Genres) > 0 {
		names := make([]string, len(m.Genres))
		for i, g := range m.Genres {
			names[i] = g.Name
		}
		sb.WriteString(EscapeMdV2("Genres: " + strings.Join(names, ", ")))
		sb.WriteString("\n")
	}

	if m.Overview != "" {
		sb.WriteString("\n" + EscapeMdV2(m.Overview) + "\n")
	}

	if len(d.Cast) > 0 {
		sb.WriteString("\n" + FormatBold("Cast") + "\n")
		for _, c := range d.Cast {
			line := c.Name
			if c.Character != "" {
				line += " as " + c.Character
			}
			sb.WriteString(EscapeMdV2("• "+line) + "\n")
		}
	}

	sb.WriteString("\n" + FormatBold("Reviews") + "\n")
	if len(d.Reviews) == 0 {
		sb.WriteString(EscapeMdV2(catalog.MsgNoReviews) + "\n")
	}
	for i, r := range d.Reviews {
		if i == maxReviews {
			sb.WriteString(EscapeMdV2(fmt.Sprintf("…and %d more", len(d.Reviews)-maxReviews)) + "\n")
			break
		}
		sb.WriteString(FormatItalic(r.Author) + "\n")
		sb.WriteString(EscapeMdV2(catalog.Excerpt(r.Content, catalog.ExcerptLen)) + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// popularKeyboard builds one detail button per movie, one per row.
func popularKeyboard(movies []tmdb.MovieSummary) *tgbotapi.InlineKeyboardMarkup {
	if len(movies) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(movies))
	for i, m := range movies {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(movieButton(fmt.Sprintf("%d. %s", i+1, m.Title), m.ID)))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// detailKeyboard offers the trailer link and buttons for similar movies.
func detailKeyboard(d *catalog.Detail) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if d.Trailer != nil {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("▶ Trailer", tmdb.YouTubeWatchURL(d.Trailer.Key)),
		))
	}
	for i, m := range d.Similar {
		if i == maxSimilar {
			break
		}
		label := fmt.Sprintf("%.1f ★ %s", m.VoteAverage, m.Title)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(movieButton(label, m.ID)))
	}
	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func movieButton(label string, id int) tgbotapi.InlineKeyboardButton {
	if r := []rune(label); len(r) > maxButtonLabel {
		label = string(r[:maxButtonLabel]) + "…"
	}
	return tgbotapi.NewInlineKeyboardButtonData(label, callbackPrefix+strconv.Itoa(id))
}

// parseCallback extracts the movie id from "movie:<id>" callback data.
func parseCallback(data string) (int, bool) {
	raw, ok := strings.CutPrefix(data, callbackPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
