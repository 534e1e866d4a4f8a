package recreate

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleStructures() []ConversationStructure {
	return []ConversationStructure{
		{
			Timestamp: 100,
			Scenario:  "alpha",
			ConversationTurns: []ConversationTurn{
				{Actor: "explorer", Content: "what is this place"},
				{Actor: "Claude 1", Content: "the backrooms, obviously"},
				{Actor: "explorer", Content: "lead the way"},
			},
		},
		{
			Timestamp: 200,
			Scenario:  "beta",
			ConversationTurns: []ConversationTurn{
				{Actor: "claude-2", Content: "a single turn"},
			},
		},
	}
}

func decodeLines[T any](t *testing.T, buf *bytes.Buffer) []T {
	t.Helper()
	var out []T
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			t.Fatalf("unmarshal line %q: %v", line, err)
		}
		out = append(out, v)
	}
	return out
}

func TestWriteFlatDataset(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteFlatDataset(&buf, sampleStructures()); err != nil {
		t.Fatalf("WriteFlatDataset: %v", err)
	}

	records := decodeLines[FlatTurnRecord](t, &buf)
	if len(records) != 4 {
		t.Fatalf("records=%d, want 4", len(records))
	}
	if records[0].Actor != "explorer" || records[0].Scenario != "alpha" || records[0].Timestamp != 100 {
		t.Fatalf("records[0]=%+v", records[0])
	}
	if records[3].Scenario != "beta" {
		t.Fatalf("records[3]=%+v", records[3])
	}
}

func TestWriteChatDataset_RoleAssignment(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteChatDataset(&buf, sampleStructures()); err != nil {
		t.Fatalf("WriteChatDataset: %v", err)
	}

	records := decodeLines[ChatRecord](t, &buf)
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}

	roles := make([]string, 0, len(records[0].Messages))
	for _, m := range records[0].Messages {
		roles = append(roles, m.Role)
	}
	if strings.Join(roles, ",") != "user,assistant,user" {
		t.Fatalf("roles=%v, want claude actors as assistant", roles)
	}
	if records[1].Messages[0].Role != "assistant" {
		t.Fatalf("records[1] role=%q, want assistant for claude-2", records[1].Messages[0].Role)
	}
}

func TestWriteInstructionDataset(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteInstructionDataset(&buf, sampleStructures()); err != nil {
		t.Fatalf("WriteInstructionDataset: %v", err)
	}

	records := decodeLines[InstructionRecord](t, &buf)
	// Two pairs from the first conversation; the single-turn conversation
	// yields none.
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if records[0].Input != "what is this place" || records[0].Output != "the backrooms, obviously" {
		t.Fatalf("records[0]=%+v", records[0])
	}
	if records[0].Instruction != "Respond as Claude 1 in the alpha scenario" {
		t.Fatalf("instruction=%q", records[0].Instruction)
	}
}
