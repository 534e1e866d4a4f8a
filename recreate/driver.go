package recreate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/backrooms-replay/recreate/fileutils"
)

// ListConversationFiles returns the archived .txt records in dir, sorted
// ascending by the timestamp embedded in the filename. Files without an
// embedded timestamp are excluded; filesystem metadata is never consulted.
func ListConversationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ListConversationFiles: %w", err)
	}

	type dated struct {
		path string
		ts   int64
	}
	var files []dated
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		ts, ok := timestampFromName(e.Name())
		if !ok {
			continue
		}
		files = append(files, dated{path: filepath.Join(dir, e.Name()), ts: ts})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ts != files[j].ts {
			return files[i].ts < files[j].ts
		}
		return files[i].path < files[j].path
	})

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.path)
	}
	return paths, nil
}

// DriverOptions configures one batch recreation run.
type DriverOptions struct {
	// Models are engine model keys, one per actor slot.
	Models []string

	// Personality applies one catalog profile to every actor. Empty means
	// replay the original prompts untouched.
	Personality string

	// MaxTurns per conversation.
	MaxTurns int

	// MaxConversations caps successful recreations; zero means unlimited.
	MaxConversations int

	// StartDate/EndDate bound records by their embedded timestamp. Zero
	// values leave that side unbounded.
	StartDate time.Time
	EndDate   time.Time

	// TemplatesDir is where derived templates are written for the engine to
	// pick up.
	TemplatesDir string

	// OutputDir receives recreated transcripts. With a personality set they
	// land in a per-personality subdirectory.
	OutputDir string

	// CustomTemplate, when set, is a path to an existing .jsonl template used
	// for every record instead of templates derived from the parsed
	// structures.
	CustomTemplate string
}

func (o DriverOptions) validate() error {
	if len(o.Models) == 0 {
		return fmt.Errorf("no models given")
	}
	if o.MaxTurns <= 0 {
		return fmt.Errorf("max turns must be positive, got %d", o.MaxTurns)
	}
	if o.TemplatesDir == "" {
		return fmt.Errorf("templates dir is empty")
	}
	if o.OutputDir == "" {
		return fmt.Errorf("output dir is empty")
	}
	if o.Personality != "" {
		if _, ok := LookupPersonality(o.Personality); !ok {
			return fmt.Errorf("unknown personality %q (available: %s)",
				o.Personality, strings.Join(PersonalityIDs(), ", "))
		}
	}
	return nil
}

// BatchSummary reports what a batch run did.
type BatchSummary struct {
	Processed int
	Succeeded int
	Skipped   int
	Failed    int
	Outputs   []string
}

// Driver walks an archive directory chronologically and recreates each
// conversation through an Engine. Per-record failures are logged and
// skipped; only setup problems abort the batch.
type Driver struct {
	Engine Engine
	Logger *logrus.Logger
	Parse  ParseOptions
}

func (d *Driver) logger() *logrus.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logrus.StandardLogger()
}

// RecreateAll processes every conversation record in inputDir, oldest first.
func (d *Driver) RecreateAll(ctx context.Context, inputDir string, opts DriverOptions) (BatchSummary, error) {
	var summary BatchSummary

	if d.Engine == nil {
		return summary, fmt.Errorf("Driver.RecreateAll: engine is nil")
	}
	if err := opts.validate(); err != nil {
		return summary, fmt.Errorf("Driver.RecreateAll: %w", err)
	}

	files, err := ListConversationFiles(inputDir)
	if err != nil {
		return summary, fmt.Errorf("Driver.RecreateAll: %w", err)
	}

	outputDir := opts.OutputDir
	if opts.Personality != "" {
		outputDir = filepath.Join(outputDir, opts.Personality)
	}

	log := d.logger()
	log.WithFields(logrus.Fields{
		"records":     len(files),
		"models":      strings.Join(opts.Models, ","),
		"personality": opts.Personality,
	}).Info("starting recreation batch")

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("Driver.RecreateAll: %w", err)
		}

		base := filepath.Base(path)
		summary.Processed++

		structure, err := ParseConversationFile(path, d.Parse)
		if err != nil {
			log.WithField("file", base).Warnf("parse failed, skipping: %v", err)
			summary.Failed++
			continue
		}

		when := time.Unix(structure.Timestamp, 0).UTC()
		if !opts.StartDate.IsZero() && when.Before(opts.StartDate) {
			summary.Skipped++
			continue
		}
		if !opts.EndDate.IsZero() && when.After(opts.EndDate) {
			summary.Skipped++
			continue
		}

		templateName, err := d.prepareTemplate(structure, opts)
		if err != nil {
			log.WithField("file", base).Warnf("template failed, skipping: %v", err)
			summary.Failed++
			continue
		}

		transcript, err := d.Engine.Generate(ctx, GenerationRequest{
			Models:       opts.Models,
			TemplateName: templateName,
			MaxTurns:     opts.MaxTurns,
		})
		if err != nil {
			log.WithField("file", base).Warnf("generation failed, skipping: %v", err)
			summary.Failed++
			continue
		}

		outPath := filepath.Join(outputDir, "recreated_"+base)
		if err := fileutils.WriteFileAtomicSameDir(outPath, []byte(transcript), 0o644); err != nil {
			log.WithField("file", base).Warnf("write failed, skipping: %v", err)
			summary.Failed++
			continue
		}

		summary.Succeeded++
		summary.Outputs = append(summary.Outputs, outPath)
		log.WithFields(logrus.Fields{
			"file":   base,
			"output": outPath,
		}).Info("recreated conversation")

		if opts.MaxConversations > 0 && summary.Succeeded >= opts.MaxConversations {
			break
		}
	}

	log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"succeeded": summary.Succeeded,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	}).Info("recreation batch finished")
	return summary, nil
}

// prepareTemplate stages the template the engine will load: either the
// caller's custom template copied under its own name, or one derived from
// the parsed structure with the optional personality applied.
func (d *Driver) prepareTemplate(structure ConversationStructure, opts DriverOptions) (string, error) {
	if opts.CustomTemplate != "" {
		name := strings.TrimSuffix(filepath.Base(opts.CustomTemplate), ".jsonl")
		dst := filepath.Join(opts.TemplatesDir, name+".jsonl")
		copied, err := fileutils.CopyFileIfExists(opts.CustomTemplate, dst, true)
		if err != nil {
			return "", fmt.Errorf("prepareTemplate: copy custom template: %w", err)
		}
		if !copied {
			return "", fmt.Errorf("prepareTemplate: custom template %q not found", opts.CustomTemplate)
		}
		return name, nil
	}

	configs := BuildTemplate(structure)
	if opts.Personality != "" {
		var ok bool
		configs, ok = ApplyPersonality(configs, opts.Personality)
		if !ok {
			return "", fmt.Errorf("prepareTemplate: unknown personality %q", opts.Personality)
		}
	}
	for _, warning := range ValidateTemplate(configs) {
		d.logger().WithField("scenario", structure.Scenario).Warn(warning)
	}

	name := TemplateName(structure.Scenario, structure.Timestamp)
	if err := SaveTemplate(opts.TemplatesDir, name, configs); err != nil {
		return "", fmt.Errorf("prepareTemplate: %w", err)
	}
	return name, nil
}
