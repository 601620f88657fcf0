package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/config"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

const (
	headerHeight = 2
	footerHeight = 2
)

func newBrowseCmd() *cobra.Command {
	var movieID int
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse popular movies interactively",
		Long: "Open a terminal browser over the popular movies list. Select a movie to see\n" +
			"its detail view, follow similar titles, and go back with esc.",
		Example: `  marquee browse
  marquee browse --movie 693134`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if movieID < 0 {
				return fmt.Errorf("--movie must be a positive TMDb id")
			}
			return runBrowse(movieID)
		},
	}
	cmd.Flags().IntVar(&movieID, "movie", 0, "open this TMDb movie id directly")
	return cmd
}

func runBrowse(movieID int) error {
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

	p := tea.NewProgram(newBrowseModel(ctx, cat, movieID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

type browseView int

const (
	viewList browseView = iota
	viewDetail
)

// popularLoadedMsg and detailLoadedMsg carry a load result together with
// the ticket it was started under.
type popularLoadedMsg struct {
	ticket catalog.Ticket
	movies []tmdb.MovieSummary
	err    error
}

type detailLoadedMsg struct {
	ticket catalog.Ticket
	id     int
	detail *catalog.Detail
	err    error
}

// browseModel is the Bubble Tea model for the list and detail views. All
// loads go through one tracker, so leaving a view or starting another load
// cancels the pending one and its result is discarded.
type browseModel struct {
	ctx      context.Context
	catalog  movieCatalog
	tracker  *catalog.Tracker
	spinner  spinner.Model
	viewport viewport.Model

	view    browseView
	loading bool
	errMsg  string

	movies []tmdb.MovieSummary
	cursor int

	detailID int
	detail   *catalog.Detail
	history  []int // detail ids to return to, most recent last

	width  int
	height int
	ready  bool
}

func newBrowseModel(ctx context.Context, c movieCatalog, movieID int) browseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo

	m := browseModel{
		ctx:     ctx,
		catalog: c,
		tracker: &catalog.Tracker{},
		spinner: s,
		view:    viewList,
		loading: true,
	}
	if movieID > 0 {
		m.view = viewDetail
		m.detailID = movieID
	}
	return m
}

func (m browseModel) Init() tea.Cmd {
	if m.view == viewDetail {
		return tea.Batch(m.spinner.Tick, m.loadDetail(m.detailID))
	}
	return tea.Batch(m.spinner.Tick, m.loadPopular())
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case popularLoadedMsg:
		if !m.tracker.Finish(msg.ticket) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = catalog.MsgListFailed
			return m, nil
		}
		m.movies = msg.movies
		m.cursor = min(m.cursor, max(len(m.movies)-1, 0))
		return m, nil

	case detailLoadedMsg:
		if !m.tracker.Finish(msg.ticket) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = catalog.DetailFailureMessage(msg.err)
			return m, nil
		}
		m.detail = msg.detail
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// handleResize sizes the viewport to the space between header and footer.
func (m *browseModel) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	vpHeight := max(m.height-headerHeight-footerHeight, 1)
	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	if m.detail != nil {
		m.viewport.SetContent(renderDetail(m.detail, m.width))
	}
}

// handleKey dispatches key events for the current view.
func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.tracker.Stop()
		return m, tea.Quit
	case "r":
		return m.reload()
	}

	if m.view == viewList {
		return m.handleListKey(key)
	}
	return m.handleDetailKey(msg)
}

func (m browseModel) handleListKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.movies)-1 {
			m.cursor++
		}
	case "enter":
		if m.loading || len(m.movies) == 0 {
			return m, nil
		}
		return m.openDetail(m.movies[m.cursor].ID)
	}
	return m, nil
}

func (m browseModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "backspace":
		return m.back()
	}

	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= maxShortcuts {
		if m.detail == nil || m.loading || n > len(m.detail.Similar) {
			return m, nil
		}
		m.history = append(m.history, m.detailID)
		return m.openDetail(m.detail.Similar[n-1].ID)
	}

	if m.ready && m.detail != nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// openDetail switches to the detail view of id and starts loading it.
func (m browseModel) openDetail(id int) (tea.Model, tea.Cmd) {
	m.view = viewDetail
	m.detailID = id
	m.detail = nil
	m.errMsg = ""
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.loadDetail(id))
}

// back returns to the previous detail, or to the list when there is none.
// Any pending load is cancelled.
func (m browseModel) back() (tea.Model, tea.Cmd) {
	if n := len(m.history); n > 0 {
		id := m.history[n-1]
		m.history = m.history[:n-1]
		return m.openDetail(id)
	}

	m.tracker.Stop()
	m.view = viewList
	m.detail = nil
	m.detailID = 0
	m.errMsg = ""
	m.loading = false
	if m.movies == nil {
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadPopular())
	}
	return m, nil
}

// reload restarts the load behind the current view.
func (m browseModel) reload() (tea.Model, tea.Cmd) {
	m.errMsg = ""
	m.loading = true
	if m.view == viewDetail {
		m.detail = nil
		return m, tea.Batch(m.spinner.Tick, m.loadDetail(m.detailID))
	}
	return m, tea.Batch(m.spinner.Tick, m.loadPopular())
}

func (m browseModel) loadPopular() tea.Cmd {
	ctx, ticket := m.tracker.Begin(m.ctx)
	c := m.catalog
	return func() tea.Msg {
		movies, err := c.Popular(ctx)
		return popularLoadedMsg{ticket: ticket, movies: movies, err: err}
	}
}

func (m browseModel) loadDetail(id int) tea.Cmd {
	ctx, ticket := m.tracker.Begin(m.ctx)
	c := m.catalog
	return func() tea.Msg {
		d, err := c.Detail(ctx, id)
		return detailLoadedMsg{ticket: ticket, id: id, detail: d, err: err}
	}
}

func (m *browseModel) refreshViewport() {
	if !m.ready || m.detail == nil {
		return
	}
	m.viewport.SetContent(renderDetail(m.detail, m.width))
	m.viewport.GotoTop()
}

func (m browseModel) View() string {
	var body string
	switch {
	case m.loading:
		body = m.spinner.View() + styleDim.Render(" Loading...")
	case m.errMsg != "":
		body = styleError.Render(m.errMsg)
	case m.view == viewList:
		body = m.renderList()
	case m.ready:
		body = m.viewport.View()
	default:
		body = renderDetail(m.detail, m.width)
	}
	return m.header() + "\n\n" + body + "\n\n" + m.footer()
}

func (m browseModel) header() string {
	if m.view == viewDetail {
		return styleSelected.Render("Marquee") + styleDim.Render(" › movie "+strconv.Itoa(m.detailID))
	}
	return styleSelected.Render("Marquee") + styleDim.Render(" › Popular movies")
}

func (m browseModel) footer() string {
	var help string
	switch {
	case m.view == viewList:
		help = "↑/↓ select · enter open · r reload · q quit"
	case m.errMsg != "":
		help = "r retry · esc back · q quit"
	default:
		help = "↑/↓ scroll · 1-9 open similar · esc back · q quit"
	}
	return styleDim.Render(help)
}

// renderList renders the window of list entries that keeps the cursor
// visible.
func (m browseModel) renderList() string {
	if len(m.movies) == 0 {
		return styleDim.Render("No popular movies right now.")
	}

	start, end := 0, len(m.movies)
	if m.height > 0 {
		visible := max(m.height-headerHeight-footerHeight, 1)
		if m.cursor >= visible {
			start = m.cursor - visible + 1
		}
		end = min(start+visible, len(m.movies))
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		marker, title := "  ", styleTitle
		if i == m.cursor {
			marker, title = styleSelected.Render("▸ "), styleSelected
		}
		lines = append(lines, marker+summaryLine(i+1, m.movies[i], title))
	}
	return strings.Join(lines, "\n")
}
