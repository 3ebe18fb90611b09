package translate

import "strings"

// SegmentDelimiter separates subtitle segments inside one backend
// payload. It is a multi-character marker that must never occur in
// dialogue text.
const SegmentDelimiter = "[---]"

// EncodeSegments joins batch segments into one payload with the
// delimiter on its own line between consecutive segments. Order is
// positional: segment i of the payload is segment i of the batch.
func EncodeSegments(segments []string) string {
	return strings.Join(segments, "\n"+SegmentDelimiter+"\n")
}

// DecodeSegments splits a backend response back into one string per
// original segment. The delimiter split is authoritative; when the
// backend ignored the delimiter instruction but still produced one
// line per segment, the line split is accepted instead. If neither
// split matches the expected count the originals are returned
// unchanged. The result always holds exactly len(originals) strings;
// nothing is truncated or padded.
func DecodeSegments(payload string, originals []string) []string {
	if len(originals) == 0 {
		return []string{}
	}

	parts := strings.Split(payload, SegmentDelimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == len(originals) {
		return parts
	}

	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(payload, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == len(originals) {
		return lines
	}

	fallback := make([]string, len(originals))
	copy(fallback, originals)
	return fallback
}
