package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "marquee",
		Short: "Browse popular movies from TMDb",
		Long: "Marquee shows the most popular movies on The Movie Database, sorted by rating,\n" +
			"with a detail view for cast, trailer, reviews and similar titles.\n" +
			"Browse in the terminal, serve it on the web, or chat with it on Telegram.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/marquee.yaml", "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newBrowseCmd(),
		newPopularCmd(),
		newMovieCmd(),
		newServeCmd(),
		newBotCmd(),
		newMCPServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Marquee v%s\n", version)
		},
	}
}
