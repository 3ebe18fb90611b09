package translate

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Preset names accepted in translation requests.
const (
	PresetGeneral     = "general"
	PresetDialogue    = "dialogue"
	PresetDocumentary = "documentary"
	PresetCustom      = "custom"
)

// Options carries the tuning for a single translation run. SourceLang and
// TargetLang are language codes ("en", "pt-BR"); SourceLang may be empty or
// "auto" to let the model detect the source. CustomPrompt is appended to the
// preset instructions when set.
type Options struct {
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
	Preset       string `json:"preset"`
	CustomPrompt string `json:"custom_prompt"`
}

// BuildPrompt assembles the full prompt for one batch: preset instructions,
// optional user instructions, the delimiter contract, then the encoded
// payload. Each section is its own paragraph.
func BuildPrompt(payload string, count int, opts Options) string {
	var b strings.Builder

	b.WriteString(presetPrompt(opts))

	if custom := strings.TrimSpace(opts.CustomPrompt); custom != "" {
		b.WriteString("\n\nUser instructions: ")
		b.WriteString(custom)
	}

	fmt.Fprintf(&b, "\n\nThe text below contains %d subtitle segments separated by lines containing only %s. Translate every segment in order and reply with exactly %d segments separated by the same %s lines. Keep line breaks that appear inside a segment. Output only the translation, with no numbering or commentary.",
		count, SegmentDelimiter, count, SegmentDelimiter)

	b.WriteString("\n\n")
	b.WriteString(payload)
	return b.String()
}

func presetPrompt(opts Options) string {
	source := langName(opts.SourceLang)
	if source == "" {
		source = "the original language"
	}
	target := langName(opts.TargetLang)
	if target == "" {
		target = opts.TargetLang
	}

	switch opts.Preset {
	case PresetDialogue:
		return fmt.Sprintf("You are a professional subtitle translator specializing in spoken dialogue. Translate the subtitles from %s into %s, preserving the tone, register and intent of each speaker; keep colloquial lines colloquial and keep every translation short enough to read on screen.", source, target)
	case PresetDocumentary:
		return fmt.Sprintf("You are a professional subtitle translator specializing in documentary narration. Translate the subtitles from %s into %s using precise terminology and a neutral, formal register suited to voice-over text.", source, target)
	default:
		return fmt.Sprintf("You are a professional subtitle translator. Translate the subtitles from %s into %s. Keep the meaning faithful, the phrasing natural, and each translation short enough to read comfortably on screen.", source, target)
	}
}

// langName turns a language code into its English display name. Unknown codes
// are used as-is; empty and "auto" report as empty so callers can substitute
// their own wording.
func langName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "auto") {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
