package model

// Section is one contiguous region of the source document. Sections are
// created once during grounding and never mutated afterward; SectionID is the
// stable key every downstream stage uses to refer back to the text.
type Section struct {
	SectionID string `json:"section_id"` // S1, S2, ...
	Title     string `json:"title"`
	PageRange []int  `json:"page_range"` // pages the section spans, ascending
	Content   string `json:"content"`    // raw text, capped during grounding
}

// Document is the grounded form of a single source file. One per job,
// immutable after grounding.
type Document struct {
	DocID    string    `json:"doc_id"`
	Sections []Section `json:"sections"`
}

// SectionByID looks up a section by its stable ID.
func (d *Document) SectionByID(id string) (Section, bool) {
	for _, s := range d.Sections {
		if s.SectionID == id {
			return s, true
		}
	}
	return Section{}, false
}

// HasSection reports whether id resolves to a section of this document.
func (d *Document) HasSection(id string) bool {
	_, ok := d.SectionByID(id)
	return ok
}
