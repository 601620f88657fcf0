package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/config"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
	"github.com/vadimtrunov/marquee/internal/metrics"
)

const ratingBarWidth = 20

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	styleRating  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	styleTitle    = lipgloss.NewStyle().Bold(true)
	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true) // cyan bold

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// movieCatalog is the view-model every command renders.
type movieCatalog interface {
	Popular(ctx context.Context) ([]tmdb.MovieSummary, error)
	Detail(ctx context.Context, id int) (*catalog.Detail, error)
}

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// initCatalog creates the TMDb client and the catalog service on top of it.
// m may be nil when upstream calls need not be measured.
func initCatalog(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*catalog.Service, error) {
	var opts []tmdb.Option
	if m != nil {
		opts = append(opts, tmdb.WithObserver(m))
	}
	client, err := tmdb.New(tmdb.Config{
		APIKey:   cfg.TMDb.APIKey,
		BaseURL:  cfg.TMDb.BaseURL,
		Language: cfg.TMDb.Language,
		Timeout:  cfg.TMDb.TimeoutDuration(),
	}, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("create TMDb client: %w", err)
	}
	logger.Debug("TMDb client initialized",
		slog.String("base_url", cfg.TMDb.BaseURL),
		slog.String("language", cfg.TMDb.Language),
	)
	return catalog.New(client, logger), nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ratingBar renders a vote average (0-10) as a colored bar with its score.
func ratingBar(vote float64, width int) string {
	percent := tmdb.MovieSummary{VoteAverage: vote}.RatingPercent()
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	empty := width - filled

	bar := styleRating.Render(strings.Repeat("█", filled)) +
		styleDim.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%s %s", bar, styleDim.Render(fmt.Sprintf("%.1f / 10", vote)))
}
