package recreate

import (
	"regexp"
	"strings"
)

// TagKind discriminates the tag dialect used in archived conversation records:
// plain turn tags (<claude-1>), actor-qualified SYSTEM/CONTEXT tags
// (<claude-1#SYSTEM>), and terminator markers (</s>).
type TagKind int

const (
	TagTurn TagKind = iota
	TagSystem
	TagContext
	TagTerminator
)

// Block is one tagged region: the actor label from the tag and the raw body
// running up to the next tag of any kind (or end of input).
type Block struct {
	Actor string
	Body  string
}

// tagMark is a tokenized tag occurrence. BodyStart is the offset just past the
// closing '>'; the body of a mark ends at the TagStart of the next mark.
type tagMark struct {
	Label     string
	Kind      TagKind
	TagStart  int
	BodyStart int
}

// tagPattern matches one tag. Labels cannot contain angle brackets or
// newlines; everything else (dashes, spaces, '#') is legitimate actor text.
var tagPattern = regexp.MustCompile(`<([^<>\n]+)>`)

// scanTags tokenizes content into ordered tag marks. This is the single place
// that knows where a body begins and ends: every extraction mode slices
// between consecutive marks.
func scanTags(content string) []tagMark {
	locs := tagPattern.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	marks := make([]tagMark, 0, len(locs))
	for _, loc := range locs {
		raw := content[loc[2]:loc[3]]
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}

		mark := tagMark{Label: label, Kind: TagTurn, TagStart: loc[0], BodyStart: loc[1]}
		switch {
		case strings.HasPrefix(label, "/"):
			mark.Kind = TagTerminator
		case strings.Contains(label, "#"):
			idx := strings.Index(label, "#")
			actor := strings.TrimSpace(label[:idx])
			suffix := strings.TrimSpace(label[idx+1:])
			switch strings.ToUpper(suffix) {
			case "SYSTEM":
				mark.Kind = TagSystem
			case "CONTEXT":
				mark.Kind = TagContext
			default:
				// Unknown qualifier: keep the full label as a turn tag, the
				// way raw captures sometimes embed '#' in actor names.
				actor = label
			}
			mark.Label = actor
			if mark.Label == "" {
				continue
			}
		}
		marks = append(marks, mark)
	}
	return marks
}

// markBody slices the body for mark i: from its BodyStart to the start of the
// next mark, or end of input. Terminator marks still bound bodies, which is
// what gives SYSTEM blocks their "</s> if present, next tag otherwise" end.
func markBody(content string, marks []tagMark, i int) string {
	end := len(content)
	if i+1 < len(marks) {
		end = marks[i+1].TagStart
	}
	return strings.TrimSpace(content[marks[i].BodyStart:end])
}

// extractBlocks returns the ordered (actor, body) pairs for every tag of the
// given kind. Zero matches yields an empty slice, never an error.
func extractBlocks(content string, kind TagKind) []Block {
	marks := scanTags(content)
	var blocks []Block
	for i, m := range marks {
		if m.Kind != kind {
			continue
		}
		blocks = append(blocks, Block{Actor: m.Label, Body: markBody(content, marks, i)})
	}
	return blocks
}

// extractTurns returns the dialogue turns in document order: bodies of plain
// turn tags, raw labels preserved. SYSTEM/CONTEXT tags and terminator markers
// are excluded, as are turns whose body is empty (terminators and back-to-back
// tags otherwise produce phantom empty turns).
func extractTurns(content string) []ConversationTurn {
	marks := scanTags(content)
	var turns []ConversationTurn
	for i, m := range marks {
		if m.Kind != TagTurn {
			continue
		}
		body := markBody(content, marks, i)
		if body == "" {
			continue
		}
		turns = append(turns, ConversationTurn{Actor: m.Label, Content: body})
	}
	return turns
}
