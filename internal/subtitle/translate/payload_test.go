package translate

import (
	"reflect"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]string{
		{"Hello there."},
		{"One", "Two", "Three"},
		{"First line\nsecond line", "Single", "Another\nmulti\nline"},
	}
	for _, segments := range cases {
		payload := EncodeSegments(segments)
		decoded := DecodeSegments(payload, segments)
		if !reflect.DeepEqual(decoded, segments) {
			t.Errorf("round trip failed: %v != %v", decoded, segments)
		}
	}
}

func TestEncodeDelimiterOnOwnLine(t *testing.T) {
	payload := EncodeSegments([]string{"a", "b"})
	if payload != "a\n"+SegmentDelimiter+"\nb" {
		t.Fatalf("unexpected payload: %q", payload)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if payload := EncodeSegments(nil); payload != "" {
		t.Fatalf("expected empty payload, got %q", payload)
	}
	decoded := DecodeSegments("", nil)
	if len(decoded) != 0 {
		t.Fatalf("expected empty sequence, got %v", decoded)
	}
}

func TestDecodePrimaryPath(t *testing.T) {
	originals := []string{"x", "y", "z"}
	payload := "uno\n" + SegmentDelimiter + "\ndos\n" + SegmentDelimiter + "\ntres"
	decoded := DecodeSegments(payload, originals)
	if !reflect.DeepEqual(decoded, []string{"uno", "dos", "tres"}) {
		t.Fatalf("primary split failed: %v", decoded)
	}
}

func TestDecodeTrimsPieces(t *testing.T) {
	originals := []string{"x", "y"}
	payload := "  uno  \n" + SegmentDelimiter + "\n\n dos \n"
	decoded := DecodeSegments(payload, originals)
	if !reflect.DeepEqual(decoded, []string{"uno", "dos"}) {
		t.Fatalf("pieces not trimmed: %q", decoded)
	}
}

func TestDecodeMultiLineSegment(t *testing.T) {
	originals := []string{"a\nb", "c"}
	payload := EncodeSegments([]string{"first\nkeeps break", "second"})
	decoded := DecodeSegments(payload, originals)
	if decoded[0] != "first\nkeeps break" {
		t.Fatalf("line break inside segment lost: %q", decoded[0])
	}
}

func TestDecodeNewlineRecovery(t *testing.T) {
	// Backend ignored the delimiter entirely and emitted one line per
	// segment.
	originals := []string{"a", "b", "c"}
	decoded := DecodeSegments("uno\ndos\ntres", originals)
	if !reflect.DeepEqual(decoded, []string{"uno", "dos", "tres"}) {
		t.Fatalf("newline recovery failed: %v", decoded)
	}

	// Two delimiter pieces but exactly three non-empty lines: the line
	// split wins.
	decoded = DecodeSegments("uno\n"+SegmentDelimiter+" dos\ntres", originals)
	if len(decoded) != 3 || decoded[0] != "uno" || decoded[2] != "tres" {
		t.Fatalf("line split not used: %v", decoded)
	}
}

func TestDecodeNewlineRecoverySkipsBlankLines(t *testing.T) {
	originals := []string{"a", "b", "c"}
	payload := "uno\n\n  \ndos\r\ntres\n"
	decoded := DecodeSegments(payload, originals)
	if !reflect.DeepEqual(decoded, []string{"uno", "dos", "tres"}) {
		t.Fatalf("blank lines not discarded: %v", decoded)
	}
}

func TestDecodeFallsBackToOriginals(t *testing.T) {
	originals := []string{"keep", "these", "lines"}
	cases := []string{
		"",
		"only one piece",
		"too\nmany\nlines\nhere\nnow",
		"one" + SegmentDelimiter + "two" + SegmentDelimiter + "three" + SegmentDelimiter + "four",
	}
	for _, payload := range cases {
		decoded := DecodeSegments(payload, originals)
		if !reflect.DeepEqual(decoded, originals) {
			t.Errorf("payload %q: expected originals back, got %v", payload, decoded)
		}
	}
}

func TestDecodeNeverChangesLength(t *testing.T) {
	originals := []string{"a", "b", "c", "d", "e"}
	payloads := []string{
		"",
		"x",
		strings.Repeat("line\n", 50),
		EncodeSegments([]string{"1", "2"}),
		EncodeSegments([]string{"1", "2", "3", "4", "5", "6", "7"}),
	}
	for _, payload := range payloads {
		decoded := DecodeSegments(payload, originals)
		if len(decoded) != len(originals) {
			t.Errorf("payload %q: length %d != %d", payload, len(decoded), len(originals))
		}
	}
}

func TestDecodeFallbackDoesNotAliasOriginals(t *testing.T) {
	originals := []string{"a", "b"}
	decoded := DecodeSegments("irreconcilable", originals)
	decoded[0] = "mutated"
	if originals[0] != "a" {
		t.Fatal("fallback slice shares backing array with originals")
	}
}
