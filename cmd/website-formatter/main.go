package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

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

	files, err := recreate.ListTranscriptFiles(cfg.InputDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	var pageNames []string
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		base := filepath.Base(path)
		page := recreate.FormatWebsitePage(base, string(b))
		pageName := recreate.WebsitePageName(base)

		outPath := filepath.Join(cfg.OutputDir, pageName)
		if err := fileutils.WriteFileAtomicSameDir(outPath, []byte(page), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		pageNames = append(pageNames, pageName)
	}

	index := recreate.FormatWebsiteIndex(pageNames)
	indexPath := filepath.Join(cfg.OutputDir, "index.html")
	if err := fileutils.WriteFileAtomicSameDir(indexPath, []byte(index), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "pages=%d out_dir=%s\n", len(pageNames), cfg.OutputDir)
}

type Config struct {
	InputDir  string
	OutputDir string
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputDir, "in", cfg.InputDir, "Directory of recreated transcripts (searched recursively)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory for website pages and index.html")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/website-formatter")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/website-formatter -in archive/recreated -out archive/website")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InputDir = filepath.Clean(cfg.InputDir)
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	return cfg, nil
}
