package recreate

import (
	"fmt"
	"html"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FormatWebsitePage wraps one transcript in the archive's terminal-styled
// HTML shell. The transcript is escaped; raw tag markers inside it render as
// text, not markup.
func FormatWebsitePage(title, transcript string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", html.EscapeString(title))
	b.WriteString(`    <style>
        body { font-family: monospace; background: #000; color: #0f0; padding: 20px; }
        .conversation { white-space: pre-wrap; }
        .actor { color: #ff0; font-weight: bold; }
    </style>
</head>
<body>
`)
	fmt.Fprintf(&b, "    <h1>%s</h1>\n", html.EscapeString(title))
	b.WriteString("    <div class=\"conversation\">\n")
	b.WriteString(html.EscapeString(transcript))
	b.WriteString("\n    </div>\n</body>\n</html>")
	return b.String()
}

// FormatWebsiteIndex builds the landing page linking every formatted
// conversation, sorted by name.
func FormatWebsiteIndex(pageNames []string) string {
	sorted := make([]string, len(pageNames))
	copy(sorted, pageNames)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <title>Recreated Infinite Backrooms Conversations</title>
    <style>
        body { font-family: monospace; background: #000; color: #0f0; padding: 20px; }
        a { color: #0ff; }
        ul { list-style-type: none; }
    </style>
</head>
<body>
    <h1>Recreated Infinite Backrooms Conversations</h1>
    <p>Conversations recreated in chronological order from March 19, 2024 onwards.</p>
    <ul>
`)
	for _, name := range sorted {
		escaped := html.EscapeString(name)
		fmt.Fprintf(&b, "        <li><a href=\"%s\">%s</a></li>\n", escaped, escaped)
	}
	b.WriteString("    </ul>\n</body>\n</html>")
	return b.String()
}

// WebsitePageName maps a transcript filename onto its page name: the
// recreated_ prefix becomes website_, and the extension becomes .html.
func WebsitePageName(transcriptName string) string {
	name := strings.TrimSuffix(transcriptName, filepath.Ext(transcriptName))
	if strings.HasPrefix(name, "recreated_") {
		name = "website_" + strings.TrimPrefix(name, "recreated_")
	} else {
		name = "website_" + name
	}
	return name + ".html"
}

// ListTranscriptFiles finds every .txt transcript under root, recursively,
// sorted by path. Personality runs live in subdirectories, so the walk
// descends.
func ListTranscriptFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".txt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ListTranscriptFiles: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
