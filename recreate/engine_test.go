package recreate

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// scriptedGenerator replays canned responses and records the requests it saw.
type scriptedGenerator struct {
	responses []string
	calls     []TurnRequest
}

func (g *scriptedGenerator) GenerateTurn(_ context.Context, req TurnRequest) (string, error) {
	g.calls = append(g.calls, req)
	if len(g.responses) == 0 {
		return "", fmt.Errorf("scriptedGenerator: out of responses")
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	return resp, nil
}

func saveEngineTemplate(t *testing.T, dir, name string, configs []TemplateConfig) {
	t.Helper()
	if err := SaveTemplate(dir, name, configs); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
}

func TestDialogueEngine_RoundRobin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	saveEngineTemplate(t, dir, "duet", []TemplateConfig{
		{SystemPrompt: "You are {lm1_actor}.", Context: []ContextMessage{{Role: "user", Content: "start"}}},
		{SystemPrompt: "You are {lm2_actor}.", Context: []ContextMessage{}},
	})

	gen := &scriptedGenerator{responses: []string{"first reply", "second reply", "third reply", "fourth reply"}}
	engine := &DialogueEngine{
		TemplatesDir: dir,
		Generators:   map[string]TurnGenerator{"anthropic": gen},
	}

	transcript, err := engine.Generate(context.Background(), GenerationRequest{
		Models:       []string{"opus", "opus"},
		TemplateName: "duet",
		MaxTurns:     2,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(gen.calls) != 4 {
		t.Fatalf("calls=%d, want 4 (2 rounds x 2 actors)", len(gen.calls))
	}

	// Placeholders expanded with display names.
	if gen.calls[0].SystemPrompt != "You are Claude 1." {
		t.Fatalf("call 0 system prompt=%q", gen.calls[0].SystemPrompt)
	}
	if gen.calls[1].SystemPrompt != "You are Claude 2." {
		t.Fatalf("call 1 system prompt=%q", gen.calls[1].SystemPrompt)
	}

	// Speaker 2's first call sees speaker 1's reply as a user message.
	call1 := gen.calls[1]
	if len(call1.Messages) != 1 || call1.Messages[0].Role != "user" || call1.Messages[0].Content != "first reply" {
		t.Fatalf("call 1 messages=%v", call1.Messages)
	}

	// Speaker 1's second call has its own reply as assistant and the peer's
	// as user, after the seeded context.
	call2 := gen.calls[2]
	wantRoles := []string{"user", "assistant", "user"}
	if len(call2.Messages) != 3 {
		t.Fatalf("call 2 messages=%v", call2.Messages)
	}
	for i, want := range wantRoles {
		if call2.Messages[i].Role != want {
			t.Fatalf("call 2 message %d role=%q, want %q", i, call2.Messages[i].Role, want)
		}
	}

	for _, section := range []string{
		"### Claude 1 ###\nfirst reply",
		"### Claude 2 ###\nsecond reply",
		"Reached maximum number of turns (2).",
	} {
		if !strings.Contains(transcript, section) {
			t.Fatalf("transcript missing %q:\n%s", section, transcript)
		}
	}
}

func TestDialogueEngine_EndMarkerStopsDialogue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	saveEngineTemplate(t, dir, "short", []TemplateConfig{
		{Context: []ContextMessage{{Role: "user", Content: "go"}}},
		{Context: []ContextMessage{}},
	})

	gen := &scriptedGenerator{responses: []string{"done here ^C^C", "should never be used"}}
	engine := &DialogueEngine{
		TemplatesDir: dir,
		Generators:   map[string]TurnGenerator{"anthropic": gen},
	}

	transcript, err := engine.Generate(context.Background(), GenerationRequest{
		Models:       []string{"opus", "opus"},
		TemplateName: "short",
		MaxTurns:     5,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("calls=%d, want 1 after end marker", len(gen.calls))
	}
	if !strings.Contains(transcript, "has ended the conversation with ^C^C") {
		t.Fatalf("transcript missing end message:\n%s", transcript)
	}
}

func TestDialogueEngine_Validation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	saveEngineTemplate(t, dir, "solo", []TemplateConfig{{Context: []ContextMessage{}}})

	engine := &DialogueEngine{
		TemplatesDir: dir,
		Generators:   map[string]TurnGenerator{"anthropic": &scriptedGenerator{}},
	}
	ctx := context.Background()

	if _, err := engine.Generate(ctx, GenerationRequest{Models: []string{"mystery"}, TemplateName: "solo", MaxTurns: 1}); err == nil {
		t.Fatalf("expected unknown model error")
	}
	if _, err := engine.Generate(ctx, GenerationRequest{Models: []string{"gpt4o"}, TemplateName: "solo", MaxTurns: 1}); err == nil {
		t.Fatalf("expected missing generator error for openai company")
	}
	if _, err := engine.Generate(ctx, GenerationRequest{Models: []string{"opus", "opus"}, TemplateName: "solo", MaxTurns: 1}); err == nil {
		t.Fatalf("expected actor count mismatch error")
	}
	if _, err := engine.Generate(ctx, GenerationRequest{Models: []string{"opus"}, TemplateName: "solo", MaxTurns: 0}); err == nil {
		t.Fatalf("expected max turns error")
	}
}

func TestSubprocessEngine_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	engine := &SubprocessEngine{}
	if _, err := engine.Generate(ctx, GenerationRequest{Models: []string{"opus"}, TemplateName: "t", MaxTurns: 1}); err == nil {
		t.Fatalf("expected error for empty Dir")
	}

	engine = &SubprocessEngine{Dir: "somewhere"}
	if _, err := engine.Generate(ctx, GenerationRequest{TemplateName: "t", MaxTurns: 1}); err == nil {
		t.Fatalf("expected error for missing models")
	}
}
