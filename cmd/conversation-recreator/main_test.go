package main

import (
	"flag"
	"testing"
	"time"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("conversation-recreator", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Engine != "backrooms" {
		t.Fatalf("Engine=%q, want backrooms", cfg.Engine)
	}
	if cfg.MaxTurns != 20 {
		t.Fatalf("MaxTurns=%d, want 20", cfg.MaxTurns)
	}
	if len(cfg.Models) != 2 || cfg.Models[0] != "opus" || cfg.Models[1] != "opus" {
		t.Fatalf("Models=%v, want [opus opus]", cfg.Models)
	}
	if !cfg.StartDate.IsZero() || !cfg.EndDate.IsZero() {
		t.Fatalf("expected zero date bounds by default")
	}
	if cfg.BackroomsDir == "" || cfg.TemplatesDir == "" {
		t.Fatalf("expected default BackroomsDir and TemplatesDir")
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("conversation-recreator", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-in", "archive/original",
		"-out", "archive/recreated",
		"-engine", "dialogue",
		"-models", "opus, gpt4o",
		"-personality", "eldritch",
		"-max-turns", "5",
		"-max-conversations", "3",
		"-start-date", "2024-04-01",
		"-end-date", "2024-04-30",
		"-v",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Engine != "dialogue" {
		t.Fatalf("Engine=%q", cfg.Engine)
	}
	if len(cfg.Models) != 2 || cfg.Models[0] != "opus" || cfg.Models[1] != "gpt4o" {
		t.Fatalf("Models=%v, want whitespace trimmed", cfg.Models)
	}
	if cfg.Personality != "eldritch" {
		t.Fatalf("Personality=%q", cfg.Personality)
	}
	if cfg.MaxTurns != 5 || cfg.MaxConversations != 3 {
		t.Fatalf("MaxTurns=%d MaxConversations=%d", cfg.MaxTurns, cfg.MaxConversations)
	}
	want := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.StartDate.Equal(want) {
		t.Fatalf("StartDate=%v, want %v", cfg.StartDate, want)
	}
	if !cfg.Verbose {
		t.Fatalf("Verbose=false, want true")
	}
}

func TestParseFlags_BadDate(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("conversation-recreator", flag.ContinueOnError)
	if _, err := parseFlags(fs, []string{"-start-date", "April 1"}); err == nil {
		t.Fatalf("expected error for malformed -start-date")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{
		InputDir:     "in",
		OutputDir:    "out",
		TemplatesDir: "templates",
		Engine:       "dialogue",
		Models:       []string{"opus", "opus"},
		MaxTurns:     20,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing input", func(c *Config) { c.InputDir = "" }},
		{"missing output", func(c *Config) { c.OutputDir = "" }},
		{"missing templates", func(c *Config) { c.TemplatesDir = "" }},
		{"no models", func(c *Config) { c.Models = nil }},
		{"zero max turns", func(c *Config) { c.MaxTurns = 0 }},
		{"negative cap", func(c *Config) { c.MaxConversations = -1 }},
		{"unknown engine", func(c *Config) { c.Engine = "telepathy" }},
		{"backrooms without dir", func(c *Config) { c.Engine = "backrooms"; c.BackroomsDir = "" }},
	}
	for _, tc := range cases {
		cfg := valid
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
