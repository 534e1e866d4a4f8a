package recreate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoConversationHeader marks a record whose filename and content both lack
// the conversation_<timestamp>_scenario_<slug> pattern. This is the only
// condition that fails a whole record; everything else degrades per-field.
var ErrNoConversationHeader = errors.New("no conversation_<timestamp>_scenario_<slug> header found")

// ContextMessage is one seed message inside a CONTEXT block.
type ContextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationTurn is one replay-order dialogue turn. Actor is the raw tag
// label, which legitimately may differ in casing/format from the declared
// actors list.
type ConversationTurn struct {
	Actor   string `json:"actor"`
	Content string `json:"content"`
}

// ConversationStructure is the parsed representation of one archived record.
//
// Actors is the spine: SystemPrompts and Context are index-aligned to it
// (under label-matching, unmatched slots hold empty values). Models and
// Temperature share the declared order but are not forced to the same
// length. ConversationTurns is independent of that alignment.
type ConversationStructure struct {
	Timestamp int64  `json:"timestamp"`
	Scenario  string `json:"scenario"`

	Actors      []string  `json:"actors"`
	Models      []string  `json:"models"`
	Temperature []float64 `json:"temperature"`

	SystemPrompts []string           `json:"system_prompts"`
	Context       [][]ContextMessage `json:"context"`

	ConversationTurns []ConversationTurn `json:"conversation_turns"`
}

// Alignment selects how SYSTEM/CONTEXT blocks are mapped onto declared
// actors.
type Alignment int

const (
	// AlignLabelMatch assigns each declared actor (in order) the first block
	// whose label case-insensitively contains the actor name or is contained
	// by it. First match wins, even for near-duplicate names like "claude"
	// vs "claude-2"; corpora in the wild rely on that tie-break.
	AlignLabelMatch Alignment = iota

	// AlignPositional keeps blocks in extraction order, ignoring labels.
	AlignPositional
)

// ParseOptions tunes structure assembly.
type ParseOptions struct {
	Alignment Alignment
}

// ParseConversationFile reads one .txt record, picks up the .html sibling as
// a rendering fallback when present, and parses the structure. A fault
// anywhere in assembly comes back as an error so batch callers can log and
// continue.
func ParseConversationFile(path string, opts ParseOptions) (ConversationStructure, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ConversationStructure{}, fmt.Errorf("ParseConversationFile: read record: %w", err)
	}

	htmlFallback := ""
	htmlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	if hb, err := os.ReadFile(htmlPath); err == nil {
		htmlFallback = string(hb)
	}

	return ParseConversation(filepath.Base(path), string(b), htmlFallback, opts)
}

// ParseConversation assembles a ConversationStructure from raw record text.
//
// filename is matched for the timestamp/scenario header first; the content is
// consulted when the filename lacks the pattern (some captures repeat the
// original filename as an embedded header line). Absence from both is the
// single hard failure. Header lists, block extraction, context decoding, and
// alignment all degrade to empty values on their own malformations.
func ParseConversation(filename, content, htmlFallback string, opts ParseOptions) (structure ConversationStructure, err error) {
	defer func() {
		// Batch runs over thousands of scraped records must survive any
		// single pathological input.
		if r := recover(); r != nil {
			err = fmt.Errorf("ParseConversation: internal fault: %v", r)
		}
	}()

	timestamp, scenario, ok := timestampAndScenario(filename)
	if !ok {
		timestamp, scenario, ok = timestampAndScenario(content)
	}
	if !ok {
		return ConversationStructure{}, fmt.Errorf("ParseConversation: %q: %w", filename, ErrNoConversationHeader)
	}

	structure = ConversationStructure{
		Timestamp:   timestamp,
		Scenario:    scenario,
		Actors:      headerList(content, actorsLinePattern),
		Models:      headerList(content, modelsLinePattern),
		Temperature: headerTemperatures(content),
	}

	sysBlocks := extractBlocks(content, TagSystem)
	ctxBlocks := extractBlocks(content, TagContext)

	// Plain-text captures sometimes lose the tag structure that the rendered
	// HTML kept. The fallback fills in only what the primary text missed; it
	// never overrides blocks that were found.
	if htmlFallback != "" {
		if len(sysBlocks) == 0 {
			sysBlocks = extractBlocks(htmlFallback, TagSystem)
		}
		if len(ctxBlocks) == 0 {
			ctxBlocks = extractBlocks(htmlFallback, TagContext)
		}
	}

	switch opts.Alignment {
	case AlignPositional:
		structure.SystemPrompts = make([]string, 0, len(sysBlocks))
		for _, b := range sysBlocks {
			structure.SystemPrompts = append(structure.SystemPrompts, b.Body)
		}
		structure.Context = make([][]ContextMessage, 0, len(ctxBlocks))
		for _, b := range ctxBlocks {
			structure.Context = append(structure.Context, decodeContext(b.Body))
		}
	default:
		structure.SystemPrompts, structure.Context = alignByLabel(structure.Actors, sysBlocks, ctxBlocks)
	}

	structure.ConversationTurns = extractTurns(content)
	return structure, nil
}

// alignByLabel maps blocks onto declared actor slots by fuzzy label
// containment. Unmatched slots stay empty string / empty sequence.
func alignByLabel(actors []string, sysBlocks, ctxBlocks []Block) ([]string, [][]ContextMessage) {
	prompts := make([]string, len(actors))
	contexts := make([][]ContextMessage, len(actors))
	for i := range contexts {
		contexts[i] = []ContextMessage{}
	}

	for i, actor := range actors {
		for _, b := range sysBlocks {
			if labelsMatch(b.Actor, actor) {
				prompts[i] = b.Body
				break
			}
		}
		for _, b := range ctxBlocks {
			if labelsMatch(b.Actor, actor) {
				contexts[i] = decodeContext(b.Body)
				break
			}
		}
	}
	return prompts, contexts
}

// labelsMatch reports whether a tag label and a declared actor name refer to
// the same participant: case-insensitive containment in either direction.
func labelsMatch(label, actor string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	a := strings.ToLower(strings.TrimSpace(actor))
	if l == "" || a == "" {
		return false
	}
	return strings.Contains(l, a) || strings.Contains(a, l)
}

// decodeContext parses a CONTEXT body as a JSON array of role/content
// messages. Malformed JSON degrades to an empty sequence; the failure is
// strictly local to the slot.
func decodeContext(body string) []ContextMessage {
	var msgs []ContextMessage
	if err := json.Unmarshal([]byte(body), &msgs); err != nil || msgs == nil {
		return []ContextMessage{}
	}
	return msgs
}
