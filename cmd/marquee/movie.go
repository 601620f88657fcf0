package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/config"
)

func newMovieCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "movie [tmdb-id]",
		Short:   "Print the detail view of one movie",
		Long:    "Load a movie with its cast, trailer, reviews and similar titles and print it.",
		Example: `  marquee movie 693134`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return runMovie(id)
		},
	}
}

// parseMovieID accepts positive integer TMDb ids only.
func parseMovieID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q: must be a positive integer", s)
	}
	return id, nil
}

func runMovie(id int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := config.SetupFileLogger(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // best-effort close on exit

	cat, err := initCatalog(cfg, nil, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	p := tea.NewProgram(newMovieModel(ctx, cat, id))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("run movie view: %w", err)
	}

	mm, ok := m.(movieModel)
	if !ok {
		return fmt.Errorf("unexpected model type from tea program")
	}
	return mm.result()
}

// movieLoadedMsg carries the loaded detail back to the TUI.
type movieLoadedMsg struct {
	detail *catalog.Detail
	err    error
}

// movieModel shows a spinner while one detail record loads, then prints it.
type movieModel struct {
	ctx     context.Context
	catalog movieCatalog
	id      int
	spinner spinner.Model
	detail  *catalog.Detail
	err     error
	done    bool
	width   int
}

func newMovieModel(ctx context.Context, c movieCatalog, id int) movieModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return movieModel{
		ctx:     ctx,
		catalog: c,
		id:      id,
		spinner: s,
	}
}

func (m movieModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m movieModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case movieLoadedMsg:
		m.detail = msg.detail
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m movieModel) View() string {
	if m.done {
		if m.err != nil {
			return ""
		}
		return renderDetail(m.detail, m.width) + "\n"
	}
	return m.spinner.View() + styleDim.Render(fmt.Sprintf(" Loading movie %d...", m.id)) + "\n"
}

func (m movieModel) load() tea.Cmd {
	return func() tea.Msg {
		d, err := m.catalog.Detail(m.ctx, m.id)
		return movieLoadedMsg{detail: d, err: err}
	}
}

// result is the command's exit error. An interrupted load is reported as
// canceled, never as success.
func (m movieModel) result() error {
	switch {
	case errors.Is(m.err, context.Canceled), !m.done:
		return fmt.Errorf("movie %d: %w", m.id, context.Canceled)
	case m.err != nil:
		return errors.New(catalog.DetailFailureMessage(m.err))
	}
	return nil
}
