package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/config"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

func newPopularCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Print popular movies sorted by rating",
		Long:  "Fetch the current popular movies from TMDb and print them, highest rated first.",
		Example: `  marquee popular
  marquee popular --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			return runPopular(cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many movies (0 for all)")
	return cmd
}

func runPopular(w io.Writer, limit int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := config.SetupLogger(cfg.App.LogLevel, os.Stderr)
	cat, err := initCatalog(cfg, nil, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	movies, err := cat.Popular(ctx)
	if err != nil {
		return fmt.Errorf("%s %w", catalog.MsgListFailed, err)
	}
	printPopular(w, movies, limit)
	return nil
}

// printPopular writes the movies in the order given, truncated to limit
// when limit is positive.
func printPopular(w io.Writer, movies []tmdb.MovieSummary, limit int) {
	if len(movies) == 0 {
		fmt.Fprintln(w, styleDim.Render("No popular movies right now."))
		return
	}
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}

	fmt.Fprintln(w, styleHeader.Render("Popular movies"))
	for i, m := range movies {
		fmt.Fprintln(w, summaryLine(i+1, m, styleTitle))
		fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("    tmdb id %d", m.ID)))
	}
}
