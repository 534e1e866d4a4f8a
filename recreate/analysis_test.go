package recreate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeConversation(t *testing.T) {
	t.Parallel()

	s := ConversationStructure{
		Timestamp:     1714479738,
		Scenario:      "vanilla_backrooms",
		Actors:        []string{"claude-1", "claude-2"},
		Models:        []string{"opus", "opus"},
		Temperature:   []float64{0.7},
		SystemPrompts: []string{"a", "b"},
		ConversationTurns: []ConversationTurn{
			{Actor: "claude-1", Content: "x"},
			{Actor: "claude-2", Content: "y"},
		},
	}

	rec := AnalyzeConversation("conversation_1714479738_scenario_vanilla_backrooms.txt", s)
	if rec.NumTurns != 2 || rec.SystemPromptsCount != 2 {
		t.Fatalf("rec=%+v", rec)
	}
	if !strings.HasPrefix(rec.Date, "2024-04-30") {
		t.Fatalf("Date=%q, want ISO date for the embedded timestamp", rec.Date)
	}
}

func TestRebuildMetadata_CMSOrdering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	write := func(ts int64, scenario, cmsDate string) {
		t.Helper()
		base := fmt.Sprintf("conversation_%d_scenario_%s", ts, scenario)
		content := "actors: claude-1\n<claude-1>\na turn\n"
		if err := os.WriteFile(filepath.Join(dir, base+".txt"), []byte(content), 0o644); err != nil {
			t.Fatalf("write txt: %v", err)
		}
		if cmsDate != "" {
			html := "<p>Last Published: " + cmsDate + "</p>"
			if err := os.WriteFile(filepath.Join(dir, base+".html"), []byte(html), 0o644); err != nil {
				t.Fatalf("write html: %v", err)
			}
		}
	}

	// Timestamps and CMS dates deliberately disagree; CMS date wins.
	write(300, "first_published", "Mon Apr 01 2024 09:00:00 GMT+0000")
	write(100, "later_published", "Tue Apr 30 2024 12:00:00 GMT+0000")
	write(200, "no_cms", "")

	records, err := RebuildMetadata(dir, ParseOptions{}, nil)
	if err != nil {
		t.Fatalf("RebuildMetadata: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3", len(records))
	}

	var order []string
	for _, r := range records {
		order = append(order, r.Filename)
	}
	want := []string{
		// No CMS date sorts to the epoch, ahead of dated entries.
		"conversation_200_scenario_no_cms.txt",
		"conversation_300_scenario_first_published.txt",
		"conversation_100_scenario_later_published.txt",
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order=%v, want %v", order, want)
		}
	}

	if records[1].CMSDate == "" || records[1].NumTurns != 1 {
		t.Fatalf("records[1]=%+v", records[1])
	}
	if records[1].Roles[0] != "claude-1" {
		t.Fatalf("Roles=%v", records[1].Roles)
	}
}

func TestGenerateMatrix(t *testing.T) {
	t.Parallel()

	entries := []MasterIndexEntry{
		{
			Filename:  "conversation_1_scenario_vanilla_backrooms.txt",
			Timestamp: 1,
			CMSDate:   "Mon Apr 01 2024 09:00:00",
			SourceURL: "https://example.com/1",
		},
	}
	matrix := GenerateMatrix(entries)
	lines := strings.Split(matrix, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d, want header+separator+row:\n%s", len(lines), matrix)
	}
	if !strings.HasPrefix(lines[0], "| Filename | Scenario |") {
		t.Fatalf("header=%q", lines[0])
	}
	if !strings.Contains(lines[2], "| vanilla_backrooms |") {
		t.Fatalf("row missing scenario:\n%s", lines[2])
	}
	if !strings.Contains(lines[2], "[link](https://example.com/1)") {
		t.Fatalf("row missing source link:\n%s", lines[2])
	}
}

func TestCMSSortTime(t *testing.T) {
	t.Parallel()

	got := cmsSortTime("Tue Apr 30 2024 12:22:18 GMT+0000 (Coordinated Universal Time)")
	if got.IsZero() {
		t.Fatalf("expected parse of prefixed CMS date")
	}
	if !cmsSortTime("not a date").IsZero() {
		t.Fatalf("expected zero time for malformed date")
	}
}
