package recreate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FlatTurnRecord is one dialogue turn as a standalone training example.
type FlatTurnRecord struct {
	Text      string `json:"text"`
	Actor     string `json:"actor"`
	Scenario  string `json:"scenario"`
	Timestamp int64  `json:"timestamp"`
}

// ChatRecord is one whole conversation as a role-tagged message list.
type ChatRecord struct {
	Messages  []ContextMessage `json:"messages"`
	Scenario  string           `json:"scenario"`
	Timestamp int64            `json:"timestamp"`
}

// InstructionRecord pairs each turn with the turn before it as
// instruction/input/output.
type InstructionRecord struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	Scenario    string `json:"scenario"`
	Timestamp   int64  `json:"timestamp"`
}

// chatRole maps an actor label to a training role. The archive's dialogues
// are Claude-to-Claude, so Claude-named actors become the assistant side.
func chatRole(actor string) string {
	if strings.Contains(strings.ToLower(actor), "claude") {
		return "assistant"
	}
	return "user"
}

// WriteFlatDataset streams one FlatTurnRecord per turn, one JSON object per
// line.
func WriteFlatDataset(w io.Writer, structures []ConversationStructure) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, s := range structures {
		for _, turn := range s.ConversationTurns {
			rec := FlatTurnRecord{
				Text:      turn.Content,
				Actor:     turn.Actor,
				Scenario:  s.Scenario,
				Timestamp: s.Timestamp,
			}
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("WriteFlatDataset: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteFlatDataset: %w", err)
	}
	return nil
}

// WriteChatDataset streams one ChatRecord per conversation.
func WriteChatDataset(w io.Writer, structures []ConversationStructure) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, s := range structures {
		messages := make([]ContextMessage, 0, len(s.ConversationTurns))
		for _, turn := range s.ConversationTurns {
			messages = append(messages, ContextMessage{
				Role:    chatRole(turn.Actor),
				Content: turn.Content,
			})
		}
		rec := ChatRecord{Messages: messages, Scenario: s.Scenario, Timestamp: s.Timestamp}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("WriteChatDataset: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteChatDataset: %w", err)
	}
	return nil
}

// WriteInstructionDataset streams one InstructionRecord per turn that has a
// preceding turn; the first turn of each conversation only ever serves as
// input.
func WriteInstructionDataset(w io.Writer, structures []ConversationStructure) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, s := range structures {
		for i := 1; i < len(s.ConversationTurns); i++ {
			turn := s.ConversationTurns[i]
			prev := s.ConversationTurns[i-1]
			rec := InstructionRecord{
				Instruction: fmt.Sprintf("Respond as %s in the %s scenario", turn.Actor, s.Scenario),
				Input:       prev.Content,
				Output:      turn.Content,
				Scenario:    s.Scenario,
				Timestamp:   s.Timestamp,
			}
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("WriteInstructionDataset: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteInstructionDataset: %w", err)
	}
	return nil
}
