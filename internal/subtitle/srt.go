package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	timingRe    = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2},\d{3})`)
	blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)
)

// Parse reads SRT content into a Document. Blocks are separated by a
// blank line: an index line, a "HH:MM:SS,mmm --> HH:MM:SS,mmm" timing
// line, then one or more text lines. Blocks without a timing line are
// skipped; a document that yields no entries at all is a parse failure.
func Parse(content string) (*Document, error) {
	text := strings.ReplaceAll(content, "\r\n", "\n")
	text = strings.TrimPrefix(text, "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty subtitle document")
	}

	var entries []Entry
	for _, block := range blankLineRe.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		timingIdx := -1
		var m []string
		for i, line := range lines {
			if mm := timingRe.FindStringSubmatch(strings.TrimSpace(line)); mm != nil {
				timingIdx, m = i, mm
				break
			}
		}
		if timingIdx == -1 {
			continue
		}

		// The line before the timing line is the identifier. It is kept
		// as written; some sources use non-numeric keys.
		id := ""
		if timingIdx > 0 {
			id = strings.TrimSpace(lines[timingIdx-1])
		}
		if id == "" {
			id = strconv.Itoa(len(entries) + 1)
		}

		body := strings.TrimSpace(strings.Join(lines[timingIdx+1:], "\n"))
		if body == "" {
			continue
		}

		entries = append(entries, Entry{
			ID:    id,
			Start: m[1],
			End:   m[2],
			Text:  body,
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no subtitle entries found")
	}
	return &Document{Entries: entries}, nil
}

// Format re-emits a Document as SRT, preferring translated text when a
// run has filled it and falling back to the original otherwise.
func Format(doc *Document) string {
	var sb strings.Builder
	for _, e := range doc.Entries {
		text := e.Text
		if e.Translated != "" {
			text = e.Translated
		}
		sb.WriteString(e.ID)
		sb.WriteString("\n")
		sb.WriteString(e.Start)
		sb.WriteString(" --> ")
		sb.WriteString(e.End)
		sb.WriteString("\n")
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
