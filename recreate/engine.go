package recreate

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/theimaginaryfoundation/backrooms-replay/recreate/fileutils"
)

// GenerationRequest asks an engine to replay one conversation.
type GenerationRequest struct {
	// Models are engine-level model keys (e.g. "opus", "gpt4o"), one per
	// actor slot in the template.
	Models []string

	// TemplateName is the saved template to drive the dialogue from, without
	// extension.
	TemplateName string

	// MaxTurns is the number of full rounds (every actor speaks once per
	// round).
	MaxTurns int
}

// Engine produces a conversation transcript from a template. The transcript
// uses "### <actor> ###" headers, one section per spoken turn.
type Engine interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

func (r GenerationRequest) validate() error {
	if len(r.Models) == 0 {
		return fmt.Errorf("no models given")
	}
	if r.TemplateName == "" {
		return fmt.Errorf("template name is empty")
	}
	if r.MaxTurns <= 0 {
		return fmt.Errorf("max turns must be positive, got %d", r.MaxTurns)
	}
	return nil
}

// SubprocessEngine shells out to an external UniversalBackrooms checkout.
// The child inherits the parent environment, which is how API credentials
// reach it; stdout is the transcript.
type SubprocessEngine struct {
	// Dir is the UniversalBackrooms working directory (the one holding
	// backrooms.py and templates/).
	Dir string

	// Python overrides the interpreter; empty means "python3".
	Python string
}

func (e *SubprocessEngine) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", fmt.Errorf("SubprocessEngine.Generate: %w", err)
	}
	if e.Dir == "" {
		return "", fmt.Errorf("SubprocessEngine.Generate: Dir is empty")
	}

	python := e.Python
	if python == "" {
		python = "python3"
	}

	args := []string{"backrooms.py", "--lm"}
	args = append(args, req.Models...)
	args = append(args, "--template", req.TemplateName, "--max-turns", strconv.Itoa(req.MaxTurns))

	cmd := exec.CommandContext(ctx, python, args...)
	cmd.Dir = e.Dir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("SubprocessEngine.Generate: %s %s: %w: %s",
			python, strings.Join(args, " "), err,
			fileutils.Truncate(fileutils.FlattenNewlines(stderr.String()), 500))
	}
	return stdout.String(), nil
}

// TurnRequest is one model call inside a dialogue.
type TurnRequest struct {
	// Model is the provider API model name.
	Model string

	// Actor is the speaker's display label, for diagnostics.
	Actor string

	SystemPrompt string
	Messages     []ContextMessage
	Temperature  float64
}

// TurnGenerator produces a single turn of dialogue. Implementations live in
// recreate/provider.
type TurnGenerator interface {
	GenerateTurn(ctx context.Context, req TurnRequest) (string, error)
}

// ModelSpec maps an engine-level model key onto a provider.
type ModelSpec struct {
	APIName     string
	DisplayName string
	Company     string
}

// DefaultModelCatalog mirrors the model set the external tool knows about.
// The "cli" world-interface pseudo-model is deliberately absent: in-process
// replay only drives language models.
var DefaultModelCatalog = map[string]ModelSpec{
	"sonnet":     {APIName: "claude-3-5-sonnet-20240620", DisplayName: "Claude", Company: "anthropic"},
	"opus":       {APIName: "claude-3-opus-20240229", DisplayName: "Claude", Company: "anthropic"},
	"gpt4o":      {APIName: "gpt-4o-2024-08-06", DisplayName: "GPT4o", Company: "openai"},
	"o1-preview": {APIName: "o1-preview", DisplayName: "O1", Company: "openai"},
	"o1-mini":    {APIName: "o1-mini", DisplayName: "Mini", Company: "openai"},
}

// endOfDialogue is the in-band marker a model emits to end the conversation
// early.
const endOfDialogue = "^C^C"

// DialogueEngine replays a template in-process: each actor keeps its own
// message history seeded from the template context, actors speak round-robin,
// and every spoken turn lands as "assistant" in the speaker's history and
// "user" in everyone else's.
type DialogueEngine struct {
	TemplatesDir string

	// Generators routes turns by ModelSpec.Company.
	Generators map[string]TurnGenerator

	// Catalog overrides DefaultModelCatalog when non-nil.
	Catalog map[string]ModelSpec

	// Temperature for every turn; zero means 1.0, matching the external
	// tool's fixed setting.
	Temperature float64
}

func (e *DialogueEngine) catalog() map[string]ModelSpec {
	if e.Catalog != nil {
		return e.Catalog
	}
	return DefaultModelCatalog
}

func (e *DialogueEngine) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", fmt.Errorf("DialogueEngine.Generate: %w", err)
	}

	specs := make([]ModelSpec, 0, len(req.Models))
	actors := make([]string, 0, len(req.Models))
	for i, key := range req.Models {
		spec, ok := e.catalog()[key]
		if !ok {
			return "", fmt.Errorf("DialogueEngine.Generate: unknown model %q", key)
		}
		if _, ok := e.Generators[spec.Company]; !ok {
			return "", fmt.Errorf("DialogueEngine.Generate: no generator for company %q (model %q)", spec.Company, key)
		}
		specs = append(specs, spec)
		actors = append(actors, fmt.Sprintf("%s %d", spec.DisplayName, i+1))
	}

	configs, err := LoadTemplate(e.TemplatesDir, req.TemplateName)
	if err != nil {
		return "", fmt.Errorf("DialogueEngine.Generate: %w", err)
	}
	if len(configs) != len(req.Models) {
		return "", fmt.Errorf("DialogueEngine.Generate: template %q has %d actors, %d models given",
			req.TemplateName, len(configs), len(req.Models))
	}

	expand := placeholderReplacer(specs, actors)
	prompts := make([]string, len(configs))
	histories := make([][]ContextMessage, len(configs))
	for i, cfg := range configs {
		prompts[i] = expand.Replace(cfg.SystemPrompt)
		history := make([]ContextMessage, 0, len(cfg.Context))
		for _, msg := range cfg.Context {
			history = append(history, ContextMessage{Role: msg.Role, Content: expand.Replace(msg.Content)})
		}
		histories[i] = history
	}

	temperature := e.Temperature
	if temperature == 0 {
		temperature = 1.0
	}

	var transcript strings.Builder
	for turn := 0; turn < req.MaxTurns; turn++ {
		for i := range specs {
			response, err := e.Generators[specs[i].Company].GenerateTurn(ctx, TurnRequest{
				Model:        specs[i].APIName,
				Actor:        actors[i],
				SystemPrompt: prompts[i],
				Messages:     histories[i],
				Temperature:  temperature,
			})
			if err != nil {
				return "", fmt.Errorf("DialogueEngine.Generate: turn %d, %s: %w", turn+1, actors[i], err)
			}

			fmt.Fprintf(&transcript, "\n### %s ###\n%s\n", actors[i], response)

			if strings.Contains(response, endOfDialogue) {
				fmt.Fprintf(&transcript, "\n%s has ended the conversation with %s.\n", actors[i], endOfDialogue)
				return transcript.String(), nil
			}

			for j := range histories {
				role := "user"
				if j == i {
					role = "assistant"
				}
				histories[j] = append(histories[j], ContextMessage{Role: role, Content: response})
			}
		}
	}

	fmt.Fprintf(&transcript, "\nReached maximum number of turns (%d). Conversation ended.\n", req.MaxTurns)
	return transcript.String(), nil
}

// placeholderReplacer expands {lmN_actor}/{lmN_company} variables for the
// participating models.
func placeholderReplacer(specs []ModelSpec, actors []string) *strings.Replacer {
	pairs := make([]string, 0, len(specs)*4)
	for i := range specs {
		pairs = append(pairs,
			fmt.Sprintf("{lm%d_actor}", i+1), actors[i],
			fmt.Sprintf("{lm%d_company}", i+1), specs[i].Company,
		)
	}
	return strings.NewReplacer(pairs...)
}
