package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newConfigCmd returns the "config" subcommand group for configuration management.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

// newConfigValidateCmd returns the "config validate" subcommand that checks config file validity.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleSuccess.Render("✓ Configuration is valid"))
			fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("  tmdb:     %s (%s)", cfg.TMDb.BaseURL, cfg.TMDb.Language)))
			fmt.Fprintln(out, styleDim.Render("  server:   "+cfg.Server.Addr))
			telegramState := "disabled"
			if cfg.Telegram != nil {
				telegramState = "enabled"
			}
			fmt.Fprintln(out, styleDim.Render("  telegram: "+telegramState))
			return nil
		},
	}
}
