// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import "strings"

// authorPlaceholders are junk values some producers write into Author.
var authorPlaceholders = map[string]bool{
	"unknown":   true,
	"anonymous": true,
	"n/a":       true,
	"none":      true,
	"null":      true,
}

// SplitAuthors breaks a raw author string into individual names. Semicolons
// win, then the word "and", then commas when at least two are present (a
// single comma usually means "Lastname, Firstname"). Placeholder values are
// dropped; whitespace is normalized.
func SplitAuthors(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parts []string
	switch {
	case strings.Contains(raw, ";"):
		parts = strings.Split(raw, ";")
	case strings.Contains(raw, " and "):
		parts = strings.Split(raw, " and ")
	case strings.Count(raw, ",") >= 2:
		parts = strings.Split(raw, ",")
	default:
		parts = []string{raw}
	}

	var authors []string
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p == "" || authorPlaceholders[strings.ToLower(p)] {
			continue
		}
		authors = append(authors, p)
	}
	return authors
}
