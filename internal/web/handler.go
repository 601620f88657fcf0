// Package web serves the popular-movies grid and movie detail pages over
// HTTP, along with a JSON API, a health probe and Prometheus metrics.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
	"github.com/vadimtrunov/marquee/internal/metrics"
)

const (
	titleNotFound    = "Not found"
	titleLoadFailure = "Something went wrong"
)

// Catalog is the view-model the web pages render.
type Catalog interface {
	Popular(ctx context.Context) ([]tmdb.MovieSummary, error)
	Detail(ctx context.Context, id int) (*catalog.Detail, error)
}

// Handler renders the web view. Each request owns its load: the catalog
// calls carry the request context, so a client disconnect cancels them.
type Handler struct {
	catalog Catalog
	metrics *metrics.Metrics
	pages   map[string]*template.Template
	logger  *slog.Logger
}

// NewHandler creates a Handler. m may be nil, in which case no metrics are
// recorded and /metrics is not served.
func NewHandler(c Catalog, m *metrics.Metrics, logger *slog.Logger) (*Handler, error) {
	if c == nil {
		panic("web.NewHandler: catalog must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{catalog: c, metrics: m, pages: pages, logger: logger}, nil
}

// Routes builds the chi router for the web view.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument(h.metrics, h.logger))

	r.Get("/", h.popularPage)
	r.Get("/movie/{id}", h.detailPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/popular", h.popularJSON)
		r.Get("/movie/{id}", h.detailJSON)
	})

	r.Get("/health", healthHandler)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		h.render(w, http.StatusNotFound, pageMessage, messagePage{Title: titleNotFound, Message: "Page not found."})
	})
	return r
}

func (h *Handler) popularPage(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.Popular(r.Context())
	if err != nil {
		if isCanceled(r, err) {
			return
		}
		h.render(w, http.StatusBadGateway, pageMessage, messagePage{Title: titleLoadFailure, Message: catalog.MsgListFailed})
		return
	}
	h.render(w, http.StatusOK, pageGrid, gridPage{Title: "Popular movies", Movies: movies})
}

func (h *Handler) detailPage(w http.ResponseWriter, r *http.Request) {
	d, err := h.loadDetail(r)
	if err != nil {
		if isCanceled(r, err) {
			return
		}
		status, msg := detailFailure(err)
		title := titleLoadFailure
		if status == http.StatusNotFound {
			title = titleNotFound
		}
		h.render(w, status, pageMessage, messagePage{Title: title, Message: msg})
		return
	}
	h.render(w, http.StatusOK, pageDetail, detailPage{Title: d.Movie.Title, Detail: d})
}

func (h *Handler) popularJSON(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.Popular(r.Context())
	if err != nil {
		if isCanceled(r, err) {
			return
		}
		h.writeJSON(w, http.StatusBadGateway, errorBody{Error: catalog.MsgListFailed})
		return
	}
	h.writeJSON(w, http.StatusOK, popularBody{Results: movies})
}

func (h *Handler) detailJSON(w http.ResponseWriter, r *http.Request) {
	d, err := h.loadDetail(r)
	if err != nil {
		if isCanceled(r, err) {
			return
		}
		status, msg := detailFailure(err)
		h.writeJSON(w, status, errorBody{Error: msg})
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// loadDetail parses the {id} URL parameter and loads the detail record.
// Ids that are not positive integers are reported as not found.
func (h *Handler) loadDetail(r *http.Request) (*catalog.Detail, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("movie id %q: %w", raw, tmdb.ErrNotFound)
	}
	return h.catalog.Detail(r.Context(), id)
}

// detailFailure maps a detail load error to a status and user message.
func detailFailure(err error) (int, string) {
	if errors.Is(err, tmdb.ErrNotFound) {
		return http.StatusNotFound, catalog.MsgNotFound
	}
	return http.StatusBadGateway, catalog.MsgDetailFailed
}

// isCanceled reports whether the load was abandoned because the client
// went away. Nothing is written in that case.
func isCanceled(r *http.Request, err error) bool {
	return errors.Is(err, context.Canceled) && r.Context().Err() != nil
}

// render executes a page into a buffer first so a template error can still
// produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.pages[page].Execute(&buf, data); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("write page", slog.String("error", err.Error()))
	}
}

type popularBody struct {
	Results []tmdb.MovieSummary `json:"results"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("write json", slog.String("error", err.Error()))
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
