package recreate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/theimaginaryfoundation/backrooms-replay/recreate/fileutils"
)

// TemplateConfig is one actor's generation configuration inside a template.
// A template file holds one JSON object per line, in actor order.
type TemplateConfig struct {
	SystemPrompt string               `json:"system_prompt"`
	Context      []ContextMessage     `json:"context"`
	CLI          bool                 `json:"cli,omitempty"`
	Personality  *PersonalityMetadata `json:"personality,omitempty"`
}

// TemplateName derives the canonical template name for a parsed record.
func TemplateName(scenario string, timestamp int64) string {
	return fmt.Sprintf("recreated_%s_%d", scenario, timestamp)
}

// BuildTemplate projects a parsed structure into per-actor template configs,
// one per declared actor. Slots the structure could not fill come through as
// empty string / empty context, never null.
func BuildTemplate(structure ConversationStructure) []TemplateConfig {
	configs := make([]TemplateConfig, 0, len(structure.Actors))
	for i := range structure.Actors {
		cfg := TemplateConfig{Context: []ContextMessage{}}
		if i < len(structure.SystemPrompts) {
			cfg.SystemPrompt = structure.SystemPrompts[i]
		}
		if i < len(structure.Context) && structure.Context[i] != nil {
			cfg.Context = structure.Context[i]
		}
		configs = append(configs, cfg)
	}
	return configs
}

// SaveTemplate writes configs as <dir>/<name>.jsonl, overwriting any previous
// version of the same template atomically.
func SaveTemplate(dir, name string, configs []TemplateConfig) error {
	if name == "" {
		return fmt.Errorf("SaveTemplate: name is empty")
	}
	var buf strings.Builder
	for _, cfg := range configs {
		if cfg.Context == nil {
			cfg.Context = []ContextMessage{}
		}
		b, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("SaveTemplate: marshal %s: %w", name, err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	path := filepath.Join(dir, name+".jsonl")
	if err := fileutils.WriteFileAtomicSameDir(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("SaveTemplate: %s: %w", name, err)
	}
	return nil
}

// LoadTemplate reads <dir>/<name>.jsonl back into per-actor configs. Blank
// lines are skipped; a malformed line fails the load.
func LoadTemplate(dir, name string) ([]TemplateConfig, error) {
	path := filepath.Join(dir, name+".jsonl")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadTemplate: %w", err)
	}

	var configs []TemplateConfig
	for i, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var cfg TemplateConfig
		if err := json.Unmarshal([]byte(line), &cfg); err != nil {
			return nil, fmt.Errorf("LoadTemplate: %s line %d: %w", name, i+1, err)
		}
		if cfg.Context == nil {
			cfg.Context = []ContextMessage{}
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// ListTemplates returns the template names (no extension) present in dir,
// sorted. A missing directory yields an empty list.
func ListTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ListTemplates: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".jsonl"))
	}
	sort.Strings(names)
	return names, nil
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// knownPlaceholders are the substitution variables the generation engines
// expand at run time.
var knownPlaceholders = map[string]struct{}{
	"lm1_actor":   {},
	"lm2_actor":   {},
	"lm1_company": {},
	"lm2_company": {},
}

// ValidateTemplate scans system prompts and context messages for placeholder
// variables and returns a warning per unknown one. An empty return means the
// template is clean.
func ValidateTemplate(configs []TemplateConfig) []string {
	seen := make(map[string]struct{})
	var warnings []string
	note := func(actorIdx int, where, name string) {
		key := fmt.Sprintf("%d/%s/%s", actorIdx, where, name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		warnings = append(warnings, fmt.Sprintf("actor %d: unknown placeholder {%s} in %s", actorIdx+1, name, where))
	}

	for i, cfg := range configs {
		for _, m := range placeholderPattern.FindAllStringSubmatch(cfg.SystemPrompt, -1) {
			if _, ok := knownPlaceholders[strings.ToLower(m[1])]; !ok {
				note(i, "system prompt", m[1])
			}
		}
		for _, msg := range cfg.Context {
			for _, m := range placeholderPattern.FindAllStringSubmatch(msg.Content, -1) {
				if _, ok := knownPlaceholders[strings.ToLower(m[1])]; !ok {
					note(i, "context", m[1])
				}
			}
		}
	}
	return warnings
}

// TemplateInfo summarizes a loaded template for listings.
type TemplateInfo struct {
	ActorCount int
	CLI        bool
	Personas   []string
}

func DescribeTemplate(configs []TemplateConfig) TemplateInfo {
	info := TemplateInfo{ActorCount: len(configs)}
	for _, cfg := range configs {
		if cfg.CLI {
			info.CLI = true
		}
		if cfg.Personality != nil {
			info.Personas = append(info.Personas, cfg.Personality.Type)
		}
	}
	return info
}
