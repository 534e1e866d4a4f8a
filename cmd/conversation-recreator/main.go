package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/backrooms-replay/recreate"
	"github.com/theimaginaryfoundation/backrooms-replay/recreate/provider"
)

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

	logger := logrus.New()
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := &recreate.Driver{Engine: engine, Logger: logger}
	summary, err := driver.RecreateAll(ctx, cfg.InputDir, recreate.DriverOptions{
		Models:           cfg.Models,
		Personality:      cfg.Personality,
		MaxTurns:         cfg.MaxTurns,
		MaxConversations: cfg.MaxConversations,
		StartDate:        cfg.StartDate,
		EndDate:          cfg.EndDate,
		TemplatesDir:     cfg.TemplatesDir,
		OutputDir:        cfg.OutputDir,
		CustomTemplate:   cfg.CustomTemplate,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "processed=%d succeeded=%d skipped=%d failed=%d out_dir=%s\n",
		summary.Processed, summary.Succeeded, summary.Skipped, summary.Failed, cfg.OutputDir)
}

// buildEngine wires the requested generation backend. The dialogue engine
// only constructs turn generators for the providers the chosen models need,
// so a single API key is enough for a single-provider run.
func buildEngine(cfg Config) (recreate.Engine, error) {
	if cfg.Engine == "backrooms" {
		return &recreate.SubprocessEngine{Dir: cfg.BackroomsDir, Python: cfg.Python}, nil
	}

	companies := make(map[string]struct{})
	for _, key := range cfg.Models {
		spec, ok := recreate.DefaultModelCatalog[key]
		if !ok {
			return nil, fmt.Errorf("unknown model %q", key)
		}
		companies[spec.Company] = struct{}{}
	}

	generators := make(map[string]recreate.TurnGenerator, len(companies))
	for company := range companies {
		switch company {
		case "anthropic":
			gen, err := provider.NewAnthropicTurnGenerator(os.Getenv("ANTHROPIC_API_KEY"))
			if err != nil {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY must be set for anthropic models")
			}
			generators[company] = gen
		case "openai":
			gen, err := provider.NewOpenAITurnGenerator(os.Getenv("OPENAI_API_KEY"))
			if err != nil {
				return nil, fmt.Errorf("OPENAI_API_KEY must be set for openai models")
			}
			generators[company] = gen
		default:
			return nil, fmt.Errorf("no turn generator for company %q", company)
		}
	}

	return &recreate.DialogueEngine{
		TemplatesDir: cfg.TemplatesDir,
		Generators:   generators,
	}, nil
}

type Config struct {
	InputDir     string
	OutputDir    string
	TemplatesDir string

	Engine       string
	BackroomsDir string
	Python       string

	Models           []string
	Personality      string
	MaxTurns         int
	MaxConversations int
	StartDate        time.Time
	EndDate          time.Time
	CustomTemplate   string

	Verbose bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	var models, startDate, endDate string

	fs.StringVar(&cfg.InputDir, "in", cfg.InputDir, "Directory of archived conversation .txt files")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory for recreated transcripts")
	fs.StringVar(&cfg.TemplatesDir, "templates-dir", cfg.TemplatesDir, "Directory where derived templates are staged")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "Generation engine: backrooms (external tool) or dialogue (in-process)")
	fs.StringVar(&cfg.BackroomsDir, "backrooms-dir", cfg.BackroomsDir, "UniversalBackrooms checkout for the backrooms engine")
	fs.StringVar(&cfg.Python, "python", "", "Python interpreter for the backrooms engine (default python3)")
	fs.StringVar(&models, "models", strings.Join(cfg.Models, ","), "Comma-separated model keys, one per actor (e.g. opus,opus)")
	fs.StringVar(&cfg.Personality, "personality", "", "Personality to apply: "+strings.Join(recreate.PersonalityIDs(), "|"))
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "Maximum rounds per conversation")
	fs.IntVar(&cfg.MaxConversations, "max-conversations", 0, "Limit number of recreated conversations (0 = all)")
	fs.StringVar(&startDate, "start-date", "", "Only recreate records on/after this date (YYYY-MM-DD)")
	fs.StringVar(&endDate, "end-date", "", "Only recreate records on/before this date (YYYY-MM-DD)")
	fs.StringVar(&cfg.CustomTemplate, "custom-template", "", "Path to a .jsonl template to use for every record")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/conversation-recreator -max-conversations 5")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/conversation-recreator -engine dialogue -models opus,opus -personality eldritch")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Models = splitModels(models)

	var err error
	if cfg.StartDate, err = parseDate(startDate); err != nil {
		return Config{}, fmt.Errorf("invalid -start-date: %w", err)
	}
	if cfg.EndDate, err = parseDate(endDate); err != nil {
		return Config{}, fmt.Errorf("invalid -end-date: %w", err)
	}

	cfg.InputDir = filepath.Clean(cfg.InputDir)
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	cfg.TemplatesDir = filepath.Clean(cfg.TemplatesDir)
	if cfg.CustomTemplate != "" {
		cfg.CustomTemplate = filepath.Clean(cfg.CustomTemplate)
	}
	return cfg, nil
}

func splitModels(s string) []string {
	var models []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			models = append(models, part)
		}
	}
	return models
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
