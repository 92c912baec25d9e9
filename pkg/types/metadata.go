// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Metadata holds the bibliographic fields extracted from a PDF. Every field
// is optional: an all-empty value is the valid "nothing found" result, never
// an error. Extraction strategies fill only the fields they are confident
// about; consumers must cope with any subset being absent.
type Metadata struct {
	// Title is the document title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists the authors in source order. The first author drives
	// filename generation.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year, or 0 when unknown. Only values inside
	// [1000, current_year+1] are ever stored; implausible years are
	// dropped, not clamped.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the Digital Object Identifier, when one was found.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier, when one was found.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
}

// IsEmpty reports whether no field carries a value.
func (m Metadata) IsEmpty() bool {
	return m.Title == "" && len(m.Authors) == 0 && m.Year == 0 && m.DOI == "" && m.ArxivID == ""
}

// FirstAuthor returns the first author, or "" when none are known.
func (m Metadata) FirstAuthor() string {
	if len(m.Authors) == 0 {
		return ""
	}
	return m.Authors[0]
}
