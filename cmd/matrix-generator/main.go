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

	entries, err := recreate.LoadMasterIndex(cfg.IndexPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	matrix := recreate.GenerateMatrix(entries)
	if err := fileutils.WriteFileAtomicSameDir(cfg.OutputPath, []byte(matrix), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "rows=%d out=%s\n", len(entries), cfg.OutputPath)
}

type Config struct {
	IndexPath  string
	OutputPath string
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.IndexPath, "index", cfg.IndexPath, "Path to the chronological master index JSON")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Path to write the Markdown matrix")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/matrix-generator")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/matrix-generator -index archive/_chronological_master.json -out matrix.md")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.IndexPath = filepath.Clean(cfg.IndexPath)
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	return cfg, nil
}
