package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/theimaginaryfoundation/backrooms-replay/recreate/fileutils"
)

// Stages run in archive order. Scraping the source site is an external
// collaborator; the pipeline starts from an already-populated
// original_conversations directory.
var pipelineStages = []string{"analyze", "metadata", "recreate", "website", "finetune", "matrix"}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx := context.Background()

	stages := pipelineStages
	if cfg.OnlyStage != "" {
		stages = []string{cfg.OnlyStage}
	} else if cfg.FromStage != "" {
		stages = stagesFrom(stages, cfg.FromStage)
	}

	base := filepath.Clean(cfg.BaseDir)
	originalDir := filepath.Join(base, "original_conversations")
	metadataDir := filepath.Join(base, "metadata")
	recreatedDir := filepath.Join(base, "recreated_conversations")
	websiteDir := filepath.Join(base, "website_ready")
	finetuneDir := filepath.Join(base, "finetune_ready")

	analysisPath := filepath.Join(metadataDir, "conversation_analysis.json")
	metadataPath := filepath.Join(metadataDir, "conversations_metadata.json")
	masterIndexPath := filepath.Join(originalDir, "_chronological_master.json")
	matrixPath := filepath.Join(base, "backrooms_matrix.md")

	for _, stage := range stages {
		switch stage {
		case "analyze":
			if !cfg.Overwrite && fileutils.FileExists(analysisPath) {
				fmt.Fprintln(os.Stdout, "skip analyze: analysis already exists")
				continue
			}
			args := []string{
				"run", "./cmd/conversation-analyzer",
				"-in", originalDir,
				"-out", analysisPath,
			}
			args = appendBool(args, "pretty", cfg.Pretty)
			if err := runGo(ctx, args...); err != nil {
				os.Exit(1)
			}
		case "metadata":
			if !cfg.Overwrite && fileutils.FileExists(metadataPath) {
				fmt.Fprintln(os.Stdout, "skip metadata: metadata already exists")
				continue
			}
			args := []string{
				"run", "./cmd/metadata-rebuilder",
				"-in", originalDir,
				"-out", metadataPath,
			}
			args = appendBool(args, "pretty", cfg.Pretty)
			if err := runGo(ctx, args...); err != nil {
				os.Exit(1)
			}
		case "recreate":
			outDir := recreatedDir
			if cfg.Personality != "" {
				outDir = filepath.Join(recreatedDir, cfg.Personality)
			}
			if !cfg.Overwrite && dirHasTxt(outDir) {
				fmt.Fprintln(os.Stdout, "skip recreate: recreated transcripts already exist")
				continue
			}
			args := []string{
				"run", "./cmd/conversation-recreator",
				"-in", originalDir,
				"-out", recreatedDir,
				"-templates-dir", cfg.TemplatesDir,
				"-engine", cfg.Engine,
				"-models", cfg.Models,
				"-max-turns", fmt.Sprintf("%d", cfg.MaxTurns),
				"-max-conversations", fmt.Sprintf("%d", cfg.MaxConversations),
			}
			if cfg.Engine == "backrooms" {
				args = append(args, "-backrooms-dir", cfg.BackroomsDir)
			}
			if cfg.Personality != "" {
				args = append(args, "-personality", cfg.Personality)
			}
			if cfg.StartDate != "" {
				args = append(args, "-start-date", cfg.StartDate)
			}
			if cfg.EndDate != "" {
				args = append(args, "-end-date", cfg.EndDate)
			}
			if cfg.CustomTemplate != "" {
				args = append(args, "-custom-template", cfg.CustomTemplate)
			}
			if err := runGo(ctx, args...); err != nil {
				os.Exit(1)
			}
		case "website":
			if !cfg.Overwrite && fileutils.FileExists(filepath.Join(websiteDir, "index.html")) {
				fmt.Fprintln(os.Stdout, "skip website: index already exists")
				continue
			}
			args := []string{
				"run", "./cmd/website-formatter",
				"-in", recreatedDir,
				"-out", websiteDir,
			}
			if err := runGo(ctx, args...); err != nil {
				os.Exit(1)
			}
		case "finetune":
			if !cfg.Overwrite && fileutils.FileExists(filepath.Join(finetuneDir, "conversations.jsonl")) {
				fmt.Fprintln(os.Stdout, "skip finetune: datasets already exist")
				continue
			}
			args := []string{
				"run", "./cmd/finetune-exporter",
				"-in", recreatedDir,
				"-out", finetuneDir,
			}
			if err := runGo(ctx, args...); err != nil {
				os.Exit(1)
			}
		case "matrix":
			// The master index comes from the external scraper; without it
			// there is nothing to tabulate.
			if !fileutils.FileExists(masterIndexPath) {
				fmt.Fprintln(os.Stdout, "skip matrix: no master index")
				continue
			}
			if !cfg.Overwrite && fileutils.FileExists(matrixPath) {
				fmt.Fprintln(os.Stdout, "skip matrix: matrix already exists")
				continue
			}
			args := []string{
				"run", "./cmd/matrix-generator",
				"-index", masterIndexPath,
				"-out", matrixPath,
			}
			if err := runGo(ctx, args...); err != nil {
				os.Exit(1)
			}
		default:
			fmt.Fprintln(os.Stderr, "unknown stage:", stage)
			os.Exit(2)
		}
	}
}

type Config struct {
	BaseDir      string
	TemplatesDir string

	Engine       string
	BackroomsDir string

	Models           string
	Personality      string
	MaxTurns         int
	MaxConversations int
	StartDate        string
	EndDate          string
	CustomTemplate   string

	FromStage string
	OnlyStage string

	Pretty    bool
	Overwrite bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "Base working directory for all pipeline artifacts")
	fs.StringVar(&cfg.TemplatesDir, "templates-dir", cfg.TemplatesDir, "Directory where derived templates are staged")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "Generation engine: backrooms or dialogue")
	fs.StringVar(&cfg.BackroomsDir, "backrooms-dir", cfg.BackroomsDir, "UniversalBackrooms checkout for the backrooms engine")
	fs.StringVar(&cfg.Models, "models", cfg.Models, "Comma-separated model keys, one per actor")
	fs.StringVar(&cfg.Personality, "personality", "", "Personality to apply during recreation")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "Maximum rounds per conversation")
	fs.IntVar(&cfg.MaxConversations, "max-conversations", 0, "Limit number of recreated conversations (0 = all)")
	fs.StringVar(&cfg.StartDate, "start-date", "", "Only recreate records on/after this date (YYYY-MM-DD)")
	fs.StringVar(&cfg.EndDate, "end-date", "", "Only recreate records on/before this date (YYYY-MM-DD)")
	fs.StringVar(&cfg.CustomTemplate, "custom-template", "", "Path to a .jsonl template to use for every record")

	fs.StringVar(&cfg.FromStage, "from-stage", "", "Start at stage: "+strings.Join(pipelineStages, "|"))
	fs.StringVar(&cfg.OnlyStage, "only-stage", "", "Run only one stage: "+strings.Join(pipelineStages, "|"))

	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "Pretty-print JSON outputs where supported")
	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Re-run stages even when their outputs exist")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func appendBool(args []string, name string, value bool) []string {
	return append(args, fmt.Sprintf("-%s=%t", name, value))
}

func runGo(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "command failed:", "go "+strings.Join(args, " "))
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		return err
	}
	fmt.Fprintln(os.Stdout, "ok:", "go "+strings.Join(args, " "), "(", time.Since(start).Round(time.Millisecond).String()+")")
	return nil
}

func stagesFrom(stages []string, from string) []string {
	from = strings.ToLower(strings.TrimSpace(from))
	for i, s := range stages {
		if s == from {
			return stages[i:]
		}
	}
	return stages
}

func dirHasTxt(dir string) bool {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			return true
		}
	}
	return false
}
