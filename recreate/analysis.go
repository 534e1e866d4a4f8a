package recreate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// AnalysisRecord is the per-record row of the archive analysis report.
type AnalysisRecord struct {
	Filename           string    `json:"filename"`
	Timestamp          int64     `json:"timestamp"`
	Date               string    `json:"date"`
	Scenario           string    `json:"scenario"`
	Actors             []string  `json:"actors"`
	Models             []string  `json:"models"`
	Temperature        []float64 `json:"temperature"`
	NumTurns           int       `json:"num_turns"`
	SystemPromptsCount int       `json:"system_prompts_count"`
}

// AnalyzeConversation summarizes one parsed record.
func AnalyzeConversation(filename string, s ConversationStructure) AnalysisRecord {
	return AnalysisRecord{
		Filename:           filename,
		Timestamp:          s.Timestamp,
		Date:               time.Unix(s.Timestamp, 0).UTC().Format(time.RFC3339),
		Scenario:           s.Scenario,
		Actors:             s.Actors,
		Models:             s.Models,
		Temperature:        s.Temperature,
		NumTurns:           len(s.ConversationTurns),
		SystemPromptsCount: len(s.SystemPrompts),
	}
}

// AnalyzeDirectory parses every record in dir and returns analysis rows in
// chronological order. Unparseable records are reported through onError and
// skipped.
func AnalyzeDirectory(dir string, opts ParseOptions, onError func(path string, err error)) ([]AnalysisRecord, error) {
	files, err := ListConversationFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeDirectory: %w", err)
	}

	records := make([]AnalysisRecord, 0, len(files))
	for _, path := range files {
		s, err := ParseConversationFile(path, opts)
		if err != nil {
			if onError != nil {
				onError(path, err)
			}
			continue
		}
		records = append(records, AnalyzeConversation(filepath.Base(path), s))
	}
	return records, nil
}

// MetadataRecord is one full entry of the rebuilt conversations metadata:
// everything a template needs plus provenance fields.
type MetadataRecord struct {
	Timestamp     int64              `json:"timestamp"`
	CMSDate       string             `json:"cms_date"`
	Filename      string             `json:"filename"`
	SystemPrompts []string           `json:"system_prompts"`
	Contexts      [][]ContextMessage `json:"contexts"`
	Roles         []string           `json:"roles"`
	Models        []string           `json:"models"`
	Actors        []string           `json:"actors"`
	Temperature   []float64          `json:"temperature"`
	NumTurns      int                `json:"num_turns"`
	LMActors      []string           `json:"lm_actors,omitempty"`
}

// BuildMetadataRecord parses one .txt record with its .html sibling and
// assembles the full metadata entry.
func BuildMetadataRecord(path string, opts ParseOptions) (MetadataRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return MetadataRecord{}, fmt.Errorf("BuildMetadataRecord: %w", err)
	}
	content := string(b)

	htmlContent := ""
	htmlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	if hb, err := os.ReadFile(htmlPath); err == nil {
		htmlContent = string(hb)
	}

	base := filepath.Base(path)
	s, err := ParseConversation(base, content, htmlContent, opts)
	if err != nil {
		return MetadataRecord{}, fmt.Errorf("BuildMetadataRecord: %w", err)
	}

	return MetadataRecord{
		Timestamp:     s.Timestamp,
		CMSDate:       cmsDateFromHTML(htmlContent),
		Filename:      base,
		SystemPrompts: s.SystemPrompts,
		Contexts:      s.Context,
		Roles:         s.Actors,
		Models:        s.Models,
		Actors:        s.Actors,
		Temperature:   s.Temperature,
		NumTurns:      len(s.ConversationTurns),
		LMActors:      lmActorPlaceholders(content),
	}, nil
}

// cmsDateLayout matches the CMS publication stamp prefix, e.g.
// "Tue Apr 30 2024 12:22:18".
const cmsDateLayout = "Mon Jan 02 2006 15:04:05"

func cmsSortTime(cmsDate string) time.Time {
	s := cmsDate
	if len(s) > 24 {
		s = s[:24]
	}
	t, err := time.Parse(cmsDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// RebuildMetadata builds metadata entries for every record in dir, ordered
// by CMS publication date where known, then by embedded timestamp.
func RebuildMetadata(dir string, opts ParseOptions, onError func(path string, err error)) ([]MetadataRecord, error) {
	files, err := ListConversationFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("RebuildMetadata: %w", err)
	}

	records := make([]MetadataRecord, 0, len(files))
	for _, path := range files {
		rec, err := BuildMetadataRecord(path, opts)
		if err != nil {
			if onError != nil {
				onError(path, err)
			}
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := cmsSortTime(records[i].CMSDate), cmsSortTime(records[j].CMSDate)
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}

// MasterIndexEntry is one row of the chronological master index produced by
// the external scraper.
type MasterIndexEntry struct {
	Filename  string `json:"filename"`
	Timestamp int64  `json:"timestamp"`
	CMSDate   string `json:"cms_date"`
	SourceURL string `json:"source_url"`
}

// LoadMasterIndex reads a master index JSON array.
func LoadMasterIndex(path string) ([]MasterIndexEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadMasterIndex: %w", err)
	}
	var entries []MasterIndexEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("LoadMasterIndex: %s: %w", path, err)
	}
	return entries, nil
}

// GenerateMatrix renders the master index as a Markdown table, one row per
// conversation, preserving the index order.
func GenerateMatrix(entries []MasterIndexEntry) string {
	headers := []string{"Filename", "Scenario", "Timestamp", "CMS Date", "Source URL"}

	var b strings.Builder
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(headers)) + "\n")

	for _, e := range entries {
		scenario := ""
		if idx := strings.LastIndex(e.Filename, "scenario_"); idx != -1 {
			scenario = strings.TrimSuffix(e.Filename[idx+len("scenario_"):], ".txt")
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | [link](%s) |\n",
			e.Filename, scenario, e.Timestamp, e.CMSDate, e.SourceURL)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
