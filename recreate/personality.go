package recreate

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed personalities.yaml
var personalityTable []byte

// PersonalityProfile is one entry of the static personality catalog.
type PersonalityProfile struct {
	ID                  string   `yaml:"id"`
	Name                string   `yaml:"name"`
	Description         string   `yaml:"description"`
	PromptModifier      string   `yaml:"prompt_modifier"`
	ResponseStyle       string   `yaml:"response_style"`
	VocabularyHints     []string `yaml:"vocabulary_hints"`
	ExamplePhrases      []string `yaml:"example_phrases"`
	TemperatureModifier float64  `yaml:"temperature_modifier"`
}

// PersonalityMetadata is the record attached to a template config when a
// personality has been applied. TemperatureModifier is advisory; nothing in
// this package adjusts temperatures with it.
type PersonalityMetadata struct {
	Type                string  `json:"type"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	TemperatureModifier float64 `json:"temperature_modifier"`
}

var personalities = loadPersonalities()

func loadPersonalities() map[string]PersonalityProfile {
	var table struct {
		Personalities []PersonalityProfile `yaml:"personalities"`
	}
	if err := yaml.Unmarshal(personalityTable, &table); err != nil {
		panic(fmt.Sprintf("loadPersonalities: embedded table: %v", err))
	}
	catalog := make(map[string]PersonalityProfile, len(table.Personalities))
	for _, p := range table.Personalities {
		if p.ID == "" {
			panic("loadPersonalities: profile with empty id")
		}
		if _, dup := catalog[p.ID]; dup {
			panic(fmt.Sprintf("loadPersonalities: duplicate id %q", p.ID))
		}
		if p.VocabularyHints == nil {
			p.VocabularyHints = []string{}
		}
		if p.ExamplePhrases == nil {
			p.ExamplePhrases = []string{}
		}
		catalog[p.ID] = p
	}
	return catalog
}

// LookupPersonality returns the profile for an identifier.
func LookupPersonality(id string) (PersonalityProfile, bool) {
	p, ok := personalities[id]
	return p, ok
}

// PersonalityIDs lists the catalog identifiers, sorted.
func PersonalityIDs() []string {
	ids := make([]string, 0, len(personalities))
	for id := range personalities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ApplyPersonality returns a copy of configs with one personality applied to
// every actor slot: the modifier is appended to a non-empty system prompt
// after a blank line, or becomes the prompt verbatim when the slot is empty,
// and the metadata record is attached. An unknown id returns the input
// unchanged with ok=false; callers decide whether to warn.
func ApplyPersonality(configs []TemplateConfig, id string) ([]TemplateConfig, bool) {
	p, ok := personalities[id]
	if !ok {
		return configs, false
	}
	out := make([]TemplateConfig, len(configs))
	for i, cfg := range configs {
		out[i] = applyProfile(cfg, id, p)
	}
	return out, true
}

// ApplyPersonalityCombination applies one personality per actor slot. The id
// list must match the config count; an unknown id leaves that slot unmodified.
// The returned name joins the ids with underscores, for use as a template
// name suffix.
func ApplyPersonalityCombination(configs []TemplateConfig, ids []string) ([]TemplateConfig, string, error) {
	if len(ids) != len(configs) {
		return nil, "", fmt.Errorf("ApplyPersonalityCombination: %d personalities for %d actors", len(ids), len(configs))
	}
	out := make([]TemplateConfig, len(configs))
	for i, cfg := range configs {
		p, ok := personalities[ids[i]]
		if !ok {
			out[i] = cfg
			continue
		}
		out[i] = applyProfile(cfg, ids[i], p)
	}
	return out, strings.Join(ids, "_"), nil
}

func applyProfile(cfg TemplateConfig, id string, p PersonalityProfile) TemplateConfig {
	modifier := strings.TrimSpace(p.PromptModifier)
	if cfg.SystemPrompt != "" {
		cfg.SystemPrompt = cfg.SystemPrompt + "\n\n" + modifier
	} else {
		cfg.SystemPrompt = modifier
	}
	cfg.Personality = &PersonalityMetadata{
		Type:                id,
		Name:                p.Name,
		Description:         p.Description,
		TemperatureModifier: p.TemperatureModifier,
	}
	return cfg
}
