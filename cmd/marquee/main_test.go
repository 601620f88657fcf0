package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := newRootCmd()

	want := map[string]bool{
		"version":   false,
		"browse":    false,
		"popular":   false,
		"movie":     false,
		"serve":     false,
		"bot":       false,
		"mcp-serve": false,
		"config":    false,
	}

	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	root := newRootCmd()
	flag := root.PersistentFlags().Lookup("config")
	if flag == nil {
		t.Fatal("--config flag not registered")
	}
	if flag.DefValue != "configs/marquee.yaml" {
		t.Errorf("--config default = %q, want %q", flag.DefValue, "configs/marquee.yaml")
	}
	if flag.Shorthand != "c" {
		t.Errorf("--config shorthand = %q, want %q", flag.Shorthand, "c")
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := out.String(); got != "Marquee v"+version+"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestMovieCommand_RequiresOneArg(t *testing.T) {
	cmd := newMovieCmd()
	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Error("movie command should require an argument")
	}
	if err := cmd.Args(cmd, []string{"1", "2"}); err == nil {
		t.Error("movie command should reject extra arguments")
	}
	if err := cmd.Args(cmd, []string{"42"}); err != nil {
		t.Errorf("movie command should accept one id: %v", err)
	}
}

func TestParseMovieID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"dune", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMovieID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMovieID(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseMovieID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestConfigCommand_HasValidateSubcommand(t *testing.T) {
	cmd := newConfigCmd()
	found := false
	for _, sub := range cmd.Commands() {
		if sub.Name() == "validate" {
			found = true
			break
		}
	}
	if !found {
		t.Error("config command missing 'validate' subcommand")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marquee.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigValidate_Valid(t *testing.T) {
	t.Setenv("MARQUEE_TMDB_API_KEY", "")
	t.Setenv("MARQUEE_TELEGRAM_BOT_TOKEN", "")
	path := writeConfig(t, "tmdb:\n  api_key: secret\nserver:\n  addr: \":9000\"\n")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "config", "validate"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Configuration is valid", ":9000", "telegram: disabled"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "secret") {
		t.Error("output must not include the API key")
	}
}

func TestConfigValidate_MissingAPIKey(t *testing.T) {
	t.Setenv("MARQUEE_TMDB_API_KEY", "")
	path := writeConfig(t, "server:\n  addr: \":9000\"\n")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "config", "validate"})
	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if !strings.Contains(err.Error(), "tmdb.api_key") {
		t.Errorf("error = %v", err)
	}
}

func TestBotCommand_RequiresTelegramSection(t *testing.T) {
	t.Setenv("MARQUEE_TMDB_API_KEY", "")
	t.Setenv("MARQUEE_TELEGRAM_BOT_TOKEN", "")
	path := writeConfig(t, "tmdb:\n  api_key: secret\n")

	root := newRootCmd()
	root.SetArgs([]string{"--config", path, "bot"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "telegram configuration is required") {
		t.Errorf("error = %v", err)
	}
}

func TestPopularCommand_RejectsNegativeLimit(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"popular", "--limit", "-1"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for negative limit")
	}
}
