package main

import (
	"bytes"
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

	files, err := recreate.ListTranscriptFiles(cfg.InputDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	var structures []recreate.ConversationStructure
	for _, path := range files {
		s, err := recreate.ParseConversationFile(path, recreate.ParseOptions{})
		if err != nil {
			logger.WithField("file", filepath.Base(path)).Warnf("skipping: %v", err)
			continue
		}
		structures = append(structures, s)
	}

	datasets := []struct {
		name  string
		write func(*bytes.Buffer) error
	}{
		{"conversations.jsonl", func(b *bytes.Buffer) error { return recreate.WriteFlatDataset(b, structures) }},
		{"chat_format.jsonl", func(b *bytes.Buffer) error { return recreate.WriteChatDataset(b, structures) }},
		{"instruction_format.jsonl", func(b *bytes.Buffer) error { return recreate.WriteInstructionDataset(b, structures) }},
	}

	for _, ds := range datasets {
		var buf bytes.Buffer
		if err := ds.write(&buf); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		outPath := filepath.Join(cfg.OutputDir, ds.name)
		if err := fileutils.WriteFileAtomicSameDir(outPath, buf.Bytes(), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stdout, "conversations=%d datasets=%d out_dir=%s\n", len(structures), len(datasets), cfg.OutputDir)
}

type Config struct {
	InputDir  string
	OutputDir string
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputDir, "in", cfg.InputDir, "Directory of recreated transcripts (searched recursively)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory for the fine-tuning JSONL datasets")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/finetune-exporter")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/finetune-exporter -in archive/recreated -out archive/finetune")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InputDir = filepath.Clean(cfg.InputDir)
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	return cfg, nil
}
