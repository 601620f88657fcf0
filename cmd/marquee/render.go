package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

const (
	listBarWidth = 10
	maxShortcuts = 9 // similar movies reachable by number key
)

// releaseYear returns the year part of a TMDb release date, or "" if the
// date is missing or malformed.
func releaseYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// summaryLine renders one list entry: index, title, year and rating bar.
func summaryLine(index int, m tmdb.MovieSummary, title lipgloss.Style) string {
	line := fmt.Sprintf("%s %s", styleDim.Render(fmt.Sprintf("%2d.", index)), title.Render(m.Title))
	if y := releaseYear(m.ReleaseDate); y != "" {
		line += " " + styleDim.Render("("+y+")")
	}
	return line + "  " + ratingBar(m.VoteAverage, listBarWidth)
}

// renderDetail renders a detail record as plain terminal text. Overview and
// review excerpts are wrapped to width when it is positive.
func renderDetail(d *catalog.Detail, width int) string {
	m := d.Movie
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	var sb strings.Builder
	sb.WriteString(styleTitle.Render(m.Title))
	if y := releaseYear(m.ReleaseDate); y != "" {
		sb.WriteString(" " + styleDim.Render("("+y+")"))
	}
	sb.WriteString("\n")
	if m.Tagline != "" {
		sb.WriteString(styleDim.Italic(true).Render(m.Tagline) + "\n")
	}
	sb.WriteString("\n" + ratingBar(m.VoteAverage, ratingBarWidth) + "\n")

	release := m.ReleaseDate
	if release == "" {
		release = "unknown"
	}
	meta := "Released " + release
	if m.Runtime > 0 {
		meta += fmt.Sprintf(" · %d min", m.Runtime)
	}
	sb.WriteString(styleDim.Render(meta) + "\n")

	if len(m.Genres) > 0 {
		names := make([]string, len(m.Genres))
		for i, g := range m.Genres {
			names[i] = g.Name
		}
		sb.WriteString(styleInfo.Render(strings.Join(names, " · ")) + "\n")
	}
	if m.Overview != "" {
		sb.WriteString("\n" + wrap.Render(m.Overview) + "\n")
	}

	poster := tmdb.ImageURL(m.PosterPath, tmdb.SizePoster)
	if poster == "" {
		poster = "none"
	}
	sb.WriteString("\n" + styleDim.Render("Poster:") + " " + poster + "\n")

	section(&sb, "Cast")
	if len(d.Cast) == 0 {
		sb.WriteString(styleDim.Render("No cast listed.") + "\n")
	}
	for _, c := range d.Cast {
		line := "  " + c.Name
		if c.Character != "" {
			line += " " + styleDim.Render("as "+c.Character)
		}
		sb.WriteString(line + "\n")
	}

	section(&sb, "Trailer")
	if d.Trailer != nil {
		sb.WriteString("  " + tmdb.YouTubeWatchURL(d.Trailer.Key) + "\n")
	} else {
		sb.WriteString(styleDim.Render("  No trailer available.") + "\n")
	}

	section(&sb, "Reviews")
	if len(d.Reviews) == 0 {
		sb.WriteString(styleDim.Render("  "+catalog.MsgNoReviews) + "\n")
	}
	for _, r := range d.Reviews {
		sb.WriteString("  " + styleTitle.Render(r.Author) + "\n")
		sb.WriteString(wrap.Render(catalog.Excerpt(r.Content, catalog.ExcerptLen)) + "\n")
	}

	if len(d.Similar) > 0 {
		section(&sb, "Similar")
		for i, s := range d.Similar {
			sb.WriteString(summaryLine(i+1, s, lipgloss.NewStyle()) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func section(sb *strings.Builder, name string) {
	sb.WriteString("\n" + styleSelected.Render(name) + "\n")
}
