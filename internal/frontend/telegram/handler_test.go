package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

// fakeAPI records everything the bot sends.
type fakeAPI struct {
	mu           sync.Mutex
	sent         []tgbotapi.Chattable
	requests     []tgbotapi.Chattable
	rejectMarkup bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok && f.rejectMarkup && m.ParseMode != "" {
		return tgbotapi.Message{}, errors.New("bad request: can't parse entities")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

// fakeCatalog serves canned results. Detail for blockID waits until its
// context is canceled.
type fakeCatalog struct {
	popular    []tmdb.MovieSummary
	popularErr error
	details    map[int]*catalog.Detail
	detailErr  error
	blockID    int
	blocked    chan struct{}
}

func (c *fakeCatalog) Popular(context.Context) ([]tmdb.MovieSummary, error) {
	return c.popular, c.popularErr
}

func (c *fakeCatalog) Detail(ctx context.Context, id int) (*catalog.Detail, error) {
	if id == c.blockID && c.blocked != nil {
		close(c.blocked)
		<-ctx.Done()
		return nil, fmt.Errorf("load movie %d: %w", id, ctx.Err())
	}
	if c.detailErr != nil {
		return nil, c.detailErr
	}
	d, ok := c.details[id]
	if !ok {
		return nil, fmt.Errorf("load movie %d: %w", id, tmdb.ErrNotFound)
	}
	return d, nil
}

func sampleDetail() *catalog.Detail {
	return &catalog.Detail{
		Movie: tmdb.MovieDetail{
			MovieSummary: tmdb.MovieSummary{ID: 42, Title: "The Answer", VoteAverage: 8.5, PosterPath: "/answer.jpg"},
			Genres:       []tmdb.Genre{{ID: 1, Name: "Drama"}},
		},
		Cast:    []tmdb.CastMember{{ID: 1, Name: "Actor One", Character: "Hero"}},
		Trailer: &tmdb.Video{Key: "trailer-key", Site: "YouTube", Type: "Trailer"},
		Reviews: []tmdb.Review{},
		Similar: []tmdb.MovieSummary{{ID: 7, Title: "Seven", VoteAverage: 7.1}},
	}
}

func newTestBot(api *fakeAPI, c *fakeCatalog, allowed []int64, limit int) *Bot {
	return newBot(api, c, allowed, limit, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func TestHandleMessage_Popular(t *testing.T) {
	api := &fakeAPI{}
	c := &fakeCatalog{popular: []tmdb.MovieSummary{
		{ID: 2, Title: "High", VoteAverage: 8.2},
		{ID: 3, Title: "Tie", VoteAverage: 8.2},
		{ID: 1, Title: "Low", VoteAverage: 6.0},
	}}
	b := newTestBot(api, c, nil, 2)

	b.handleUpdate(context.Background(), textUpdate(100, "/popular"))

	msgs := api.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("parse mode = %q", msg.ParseMode)
	}
	if !strings.Contains(msg.Text, "*High*") || strings.Contains(msg.Text, "Low") {
		t.Errorf("popular text should list the first 2 movies only: %q", msg.Text)
	}
	kb, ok := msg.ReplyMarkup.(*tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 keyboard rows, got %#v", msg.ReplyMarkup)
	}
	if data := kb.InlineKeyboard[0][0].CallbackData; data == nil || *data != "movie:2" {
		t.Errorf("first button callback = %v", data)
	}
	if len(api.requests) == 0 {
		t.Error("expected typing indicator")
	}
}

func TestHandleMessage_PopularFailure(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCatalog{popularErr: errors.New("boom")}, nil, 0)

	b.handleUpdate(context.Background(), textUpdate(100, "/popular"))

	msgs := api.messages()
	if len(msgs) != 1 || msgs[0].Text != catalog.MsgListFailed {
		t.Fatalf("expected failure message, got %+v", msgs)
	}
}

func TestHandleMessage_MovieDetail(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCatalog{details: map[int]*catalog.Detail{42: sampleDetail()}}, nil, 0)

	b.handleUpdate(context.Background(), textUpdate(100, "/movie@marquee_bot 42"))

	photos := api.photos()
	if len(photos) != 1 {
		t.Fatalf("expected poster photo, got %d", len(photos))
	}
	if url, ok := photos[0].File.(tgbotapi.FileURL); !ok || string(url) != "https://image.tmdb.org/t/p/w500/answer.jpg" {
		t.Errorf("poster file = %#v", photos[0].File)
	}

	msgs := api.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 detail message, got %d", len(msgs))
	}
	text := msgs[0].Text
	for _, want := range []string{"*The Answer*", "Drama", "Actor One as Hero", "No reviews available\\."} {
		if !strings.Contains(text, want) {
			t.Errorf("detail text missing %q:\n%s", want, text)
		}
	}
	kb, ok := msgs[0].ReplyMarkup.(*tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected trailer + similar rows, got %#v", msgs[0].ReplyMarkup)
	}
	if u := kb.InlineKeyboard[0][0].URL; u == nil || *u != "https://www.youtube.com/watch?v=trailer-key" {
		t.Errorf("trailer button url = %v", u)
	}
	if data := kb.InlineKeyboard[1][0].CallbackData; data == nil || *data != "movie:7" {
		t.Errorf("similar button callback = %v", data)
	}
}

func TestHandleMessage_MovieErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		catalog *fakeCatalog
		want    string
	}{
		{"missing id", "/movie", &fakeCatalog{}, usageMsg},
		{"non numeric", "/movie dune", &fakeCatalog{}, usageMsg},
		{"not found", "/movie 999", &fakeCatalog{}, catalog.MsgNotFound},
		{"upstream failure", "/movie 42", &fakeCatalog{detailErr: &tmdb.NetworkError{Path: "/movie/42", StatusCode: 503}}, catalog.MsgDetailFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			b := newTestBot(api, tt.catalog, nil, 0)

			b.handleUpdate(context.Background(), textUpdate(100, tt.text))

			msgs := api.messages()
			if len(msgs) != 1 || msgs[0].Text != tt.want {
				t.Fatalf("expected %q, got %+v", tt.want, msgs)
			}
			if len(api.photos()) != 0 {
				t.Error("no poster expected on failure")
			}
		})
	}
}

func TestHandleMessage_Unauthorized(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCatalog{}, []int64{1}, 0)

	b.handleUpdate(context.Background(), textUpdate(100, "/popular"))

	msgs := api.messages()
	if len(msgs) != 1 || msgs[0].Text != unauthorizedMsg {
		t.Fatalf("expected unauthorized message, got %+v", msgs)
	}
}

func TestHandleMessage_StartAndPlainText(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCatalog{}, nil, 0)

	b.handleUpdate(context.Background(), textUpdate(100, "/start"))
	b.handleUpdate(context.Background(), textUpdate(100, "hello"))
	b.handleUpdate(context.Background(), textUpdate(100, "   "))

	msgs := api.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Text != welcomeMsg {
			t.Errorf("reply = %q", m.Text)
		}
	}
}

func TestHandleCallback_OpensDetail(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCatalog{details: map[int]*catalog.Detail{42: sampleDetail()}}, nil, 0)

	b.handleUpdate(context.Background(), callbackUpdate(100, "movie:42"))

	var acked bool
	for _, r := range api.requests {
		if cb, ok := r.(tgbotapi.CallbackConfig); ok && cb.CallbackQueryID == "cb-1" {
			acked = true
		}
	}
	if !acked {
		t.Error("callback was not acknowledged")
	}
	if msgs := api.messages(); len(msgs) != 1 || !strings.Contains(msgs[0].Text, "The Answer") {
		t.Errorf("expected detail card, got %+v", msgs)
	}
}

func TestHandleCallback_IgnoresUnknownData(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCatalog{}, nil, 0)

	b.handleUpdate(context.Background(), callbackUpdate(100, "sel:1"))
	b.handleUpdate(context.Background(), callbackUpdate(100, "movie:abc"))

	if msgs := api.messages(); len(msgs) != 0 {
		t.Errorf("expected no replies, got %+v", msgs)
	}
}

func TestShowDetail_StaleResultDropped(t *testing.T) {
	api := &fakeAPI{}
	c := &fakeCatalog{
		details: map[int]*catalog.Detail{42: sampleDetail()},
		blockID: 1,
		blocked: make(chan struct{}),
	}
	b := newTestBot(api, c, nil, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.handleUpdate(context.Background(), textUpdate(100, "/movie 1"))
	}()

	select {
	case <-c.blocked:
	case <-time.After(5 * time.Second):
		t.Fatal("first load never started")
	}

	// The second load supersedes and cancels the first.
	b.handleUpdate(context.Background(), textUpdate(100, "/movie 42"))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("superseded load was not canceled")
	}

	msgs := api.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected only the current detail, got %d messages", len(msgs))
	}
	if strings.Contains(msgs[0].Text, catalog.MsgDetailFailed) {
		t.Error("stale failure leaked into the chat")
	}
}

func TestStop_CancelsInFlightLoad(t *testing.T) {
	api := &fakeAPI{}
	c := &fakeCatalog{blockID: 1, blocked: make(chan struct{})}
	b := newTestBot(api, c, nil, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.handleUpdate(context.Background(), textUpdate(100, "/movie 1"))
	}()
	<-c.blocked

	b.handleUpdate(context.Background(), textUpdate(100, "/stop"))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("load was not canceled by /stop")
	}
	msgs := api.messages()
	if len(msgs) != 1 || msgs[0].Text != stoppedMsg {
		t.Fatalf("expected only the stop reply, got %+v", msgs)
	}
}

func TestSendMarkdown_FallsBackToPlain(t *testing.T) {
	api := &fakeAPI{rejectMarkup: true}
	b := newTestBot(api, &fakeCatalog{}, nil, 0)

	b.sendMarkdown(100, FormatBold("Dune (2021)"), nil)

	msgs := api.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected plain fallback, got %d messages", len(msgs))
	}
	if msgs[0].ParseMode != "" || msgs[0].Text != "Dune (2021)" {
		t.Errorf("fallback = %+v", msgs[0])
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in, cmd, args string
	}{
		{"/popular", "/popular", ""},
		{"/movie 42", "/movie", "42"},
		{"/Movie@marquee_bot  42 ", "/movie", "42"},
		{"hello", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		cmd, args := parseCommand(tt.in)
		if cmd != tt.cmd || args != tt.args {
			t.Errorf("parseCommand(%q) = (%q, %q), want (%q, %q)", tt.in, cmd, args, tt.cmd, tt.args)
		}
	}
}
