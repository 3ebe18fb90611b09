package translate

import (
	"strings"
	"testing"
)

func TestBuildPromptLayout(t *testing.T) {
	payload := EncodeSegments([]string{"seg one", "seg two"})
	prompt := BuildPrompt(payload, 2, Options{TargetLang: "fr"})

	parts := strings.SplitN(prompt, "\n\n", 3)
	if len(parts) != 3 {
		t.Fatalf("expected three sections, got %d", len(parts))
	}
	if parts[2] != payload {
		t.Fatalf("payload not last: %q", parts[2])
	}
	if !strings.Contains(parts[0], "French") {
		t.Fatalf("target language missing from instructions: %q", parts[0])
	}
	if !strings.Contains(parts[1], "2 subtitle segments") || !strings.Contains(parts[1], SegmentDelimiter) {
		t.Fatalf("delimiter contract missing: %q", parts[1])
	}
}

func TestBuildPromptCustomInstructions(t *testing.T) {
	opts := Options{TargetLang: "de", CustomPrompt: "Keep product names untranslated."}
	prompt := BuildPrompt("x", 1, opts)
	if !strings.Contains(prompt, "User instructions: Keep product names untranslated.") {
		t.Fatalf("custom prompt not included:\n%s", prompt)
	}

	plain := BuildPrompt("x", 1, Options{TargetLang: "de"})
	if strings.Contains(plain, "User instructions") {
		t.Fatalf("unexpected user instructions section:\n%s", plain)
	}
}

func TestBuildPromptPresets(t *testing.T) {
	cases := []struct {
		preset string
		marker string
	}{
		{PresetGeneral, "meaning faithful"},
		{PresetDialogue, "spoken dialogue"},
		{PresetDocumentary, "documentary narration"},
		{"no-such-preset", "meaning faithful"},
		{"", "meaning faithful"},
	}
	for _, c := range cases {
		prompt := BuildPrompt("x", 1, Options{TargetLang: "fr", Preset: c.preset})
		if !strings.Contains(prompt, c.marker) {
			t.Fatalf("preset %q: marker %q not found", c.preset, c.marker)
		}
	}
}

func TestBuildPromptAutoSource(t *testing.T) {
	prompt := BuildPrompt("x", 1, Options{SourceLang: "auto", TargetLang: "fr"})
	if !strings.Contains(prompt, "the original language") {
		t.Fatalf("auto source not worded: %q", prompt)
	}

	prompt = BuildPrompt("x", 1, Options{SourceLang: "en", TargetLang: "fr"})
	if !strings.Contains(prompt, "English") {
		t.Fatalf("source language missing: %q", prompt)
	}
}

func TestLangName(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"fr", "French"},
		{"es", "Spanish"},
		{"ja", "Japanese"},
		{"", ""},
		{"auto", ""},
		{"AUTO", ""},
		{"!!!", "!!!"},
	}
	for _, c := range cases {
		if got := langName(c.code); got != c.want {
			t.Fatalf("langName(%q) = %q, want %q", c.code, got, c.want)
		}
	}
}
