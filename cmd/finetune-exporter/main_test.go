package main

import (
	"flag"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("finetune-exporter", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InputDir == "" {
		t.Fatalf("expected default InputDir")
	}
	if cfg.OutputDir == "" {
		t.Fatalf("expected default OutputDir")
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("finetune-exporter", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-in", "archive/recreated",
		"-out", "archive/finetune",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InputDir != "archive/recreated" {
		t.Fatalf("InputDir=%q", cfg.InputDir)
	}
	if cfg.OutputDir != "archive/finetune" {
		t.Fatalf("OutputDir=%q", cfg.OutputDir)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if err := (Config{InputDir: "in"}).Validate(); err == nil {
		t.Fatalf("expected error for missing OutputDir")
	}
	if err := (Config{InputDir: "in", OutputDir: "out"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
