package main

import (
	"flag"
	"strings"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("matrix-generator", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !strings.HasSuffix(cfg.IndexPath, "_chronological_master.json") {
		t.Fatalf("IndexPath=%q", cfg.IndexPath)
	}
	if cfg.OutputPath != "backrooms_matrix.md" {
		t.Fatalf("OutputPath=%q", cfg.OutputPath)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("matrix-generator", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-index", "archive/_chronological_master.json",
		"-out", "matrix.md",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.IndexPath != "archive/_chronological_master.json" {
		t.Fatalf("IndexPath=%q", cfg.IndexPath)
	}
	if cfg.OutputPath != "matrix.md" {
		t.Fatalf("OutputPath=%q", cfg.OutputPath)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if err := (Config{IndexPath: "idx.json"}).Validate(); err == nil {
		t.Fatalf("expected error for missing OutputPath")
	}
	if err := (Config{IndexPath: "idx.json", OutputPath: "matrix.md"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
