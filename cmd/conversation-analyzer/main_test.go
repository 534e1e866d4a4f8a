package main

import (
	"flag"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("conversation-analyzer", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InputDir == "" {
		t.Fatalf("expected default InputDir")
	}
	if cfg.OutputPath == "" {
		t.Fatalf("expected default OutputPath")
	}
	if !cfg.Pretty {
		t.Fatalf("Pretty=false, want default true")
	}
	if cfg.Positional {
		t.Fatalf("Positional=true, want default false")
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("conversation-analyzer", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-in", "archive/original",
		"-out", "archive/analysis.json",
		"-pretty=false",
		"-positional",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InputDir != "archive/original" {
		t.Fatalf("InputDir=%q", cfg.InputDir)
	}
	if cfg.OutputPath != "archive/analysis.json" {
		t.Fatalf("OutputPath=%q", cfg.OutputPath)
	}
	if cfg.Pretty {
		t.Fatalf("Pretty=true, want false")
	}
	if !cfg.Positional {
		t.Fatalf("Positional=false, want true")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if err := (Config{InputDir: "in"}).Validate(); err == nil {
		t.Fatalf("expected error for missing OutputPath")
	}
	if err := (Config{InputDir: "in", OutputPath: "out.json"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
