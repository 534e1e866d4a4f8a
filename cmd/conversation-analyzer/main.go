package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/backrooms-replay/recreate"
	"github.com/theimaginaryfoundation/backrooms-replay/recreate/fileutils"
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

	opts := recreate.ParseOptions{}
	if cfg.Positional {
		opts.Alignment = recreate.AlignPositional
	}

	records, err := recreate.AnalyzeDirectory(cfg.InputDir, opts, func(path string, err error) {
		logger.WithField("file", filepath.Base(path)).Warnf("skipping: %v", err)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if err := fileutils.WriteJSONFileAtomic(cfg.OutputPath, records, cfg.Pretty); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "records=%d out=%s\n", len(records), cfg.OutputPath)
}

type Config struct {
	InputDir   string
	OutputPath string
	Pretty     bool
	Positional bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputDir, "in", cfg.InputDir, "Directory of archived conversation .txt files")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Path to write the analysis JSON")
	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "Pretty-print the output JSON")
	fs.BoolVar(&cfg.Positional, "positional", false, "Align SYSTEM/CONTEXT blocks by position instead of label matching")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/conversation-analyzer")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/conversation-analyzer -in archive/original -out archive/analysis.json")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InputDir = filepath.Clean(cfg.InputDir)
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	return cfg, nil
}
