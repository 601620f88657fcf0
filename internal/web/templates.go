package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	pageGrid    = "grid.html"
	pageDetail  = "detail.html"
	pageMessage = "message.html"
)

var templateFuncs = template.FuncMap{
	"poster":  func(path string) template.URL { return imageURL(path, tmdb.SizePoster) },
	"thumb":   func(path string) template.URL { return imageURL(path, tmdb.SizeThumb) },
	"percent": func(m tmdb.MovieSummary) string { return fmt.Sprintf("%.0f", m.RatingPercent()) },
	"rating":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"excerpt": func(s string) string { return catalog.Excerpt(s, catalog.ExcerptLen) },
	"embed":   tmdb.YouTubeEmbedURL,
}

// imageURL marks image sources as trusted so the placeholder data URI
// survives html/template URL filtering. Both sources are built in code.
func imageURL(path, size string) template.URL {
	//nolint:gosec // CDN URL or the fixed placeholder
	return template.URL(tmdb.ImageOrPlaceholder(path, size))
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, 3)
	for _, name := range []string{pageGrid, pageDetail, pageMessage} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

type gridPage struct {
	Title  string
	Movies []tmdb.MovieSummary
}

type detailPage struct {
	Title  string
	Detail *catalog.Detail
}

type messagePage struct {
	Title   string
	Message string
}
