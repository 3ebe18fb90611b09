package subtitle

// Entry is a single subtitle block. Start and End are kept as the
// formatted strings found in the source file and are never parsed as
// time values; they must survive translation byte for byte.
type Entry struct {
	ID         string `json:"id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Text       string `json:"text"`
	Translated string `json:"translated,omitempty"`
}

// Document is the ordered sequence of entries from one subtitle file.
// The entry count is fixed once parsing completes; a translation run
// only fills the Translated slots in place.
type Document struct {
	Entries []Entry `json:"entries"`
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.Entries)
}

// Texts returns the original text of every entry, in document order.
func (d *Document) Texts() []string {
	texts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		texts[i] = e.Text
	}
	return texts
}

// Translated reports how many entries carry translated text.
func (d *Document) Translated() int {
	count := 0
	for _, e := range d.Entries {
		if e.Translated != "" {
			count++
		}
	}
	return count
}
