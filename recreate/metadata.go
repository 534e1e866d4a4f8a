package recreate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	actorsLinePattern = regexp.MustCompile(`actors:\s*(.+)`)
	modelsLinePattern = regexp.MustCompile(`models:\s*(.+)`)
	tempLinePattern   = regexp.MustCompile(`temp:\s*(.+)`)

	// conversationNamePattern recovers the embedded timestamp and scenario
	// slug. It is matched against the filename first and the record content
	// second (some captures repeat the filename as a header line).
	conversationNamePattern = regexp.MustCompile(`conversation_(\d+)_scenario_(.+?)\.txt`)

	// timestampOnlyPattern is enough for chronological ordering of a
	// directory listing without parsing whole records.
	timestampOnlyPattern = regexp.MustCompile(`conversation_(\d+)`)

	cmsDatePattern = regexp.MustCompile(`Last Published: ([^<\n]+)`)

	lmActorPattern = regexp.MustCompile(`(?i)\{(lm[12]_actor)\}`)
)

// headerList extracts a comma-separated header line ("actors: a, b") into a
// trimmed, ordered list. A missing line yields an empty list, not an error.
func headerList(content string, pattern *regexp.Regexp) []string {
	m := pattern.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// headerTemperatures parses the temp: header. One non-numeric token degrades
// the whole list to empty; the rest of the record is unaffected.
func headerTemperatures(content string) []float64 {
	tokens := headerList(content, tempLinePattern)
	if len(tokens) == 0 {
		return nil
	}
	temps := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil
		}
		temps = append(temps, f)
	}
	return temps
}

// timestampAndScenario recovers the unix timestamp and scenario slug from a
// conversation_<digits>_scenario_<slug>.txt name. ok is false when the
// pattern is absent, which is the caller's hard parse gate.
func timestampAndScenario(s string) (timestamp int64, scenario string, ok bool) {
	m := conversationNamePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return ts, m[2], true
}

// timestampFromName extracts just the embedded timestamp, for sorting.
func timestampFromName(name string) (int64, bool) {
	m := timestampOnlyPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// cmsDateFromHTML pulls the CMS publication date out of a rendered HTML
// fallback page, when present.
func cmsDateFromHTML(html string) string {
	m := cmsDatePattern.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// lmActorPlaceholders lists the distinct {lm1_actor}/{lm2_actor} placeholders
// appearing in a record, in first-appearance order.
func lmActorPlaceholders(content string) []string {
	matches := lmActorPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, 2)
	var out []string
	for _, m := range matches {
		key := strings.ToLower(m[1])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
