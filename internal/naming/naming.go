// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming turns bibliographic metadata into descriptive,
// filesystem-safe PDF filenames.
package naming

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/paperorg/paperorg/pkg/types"
)

// maxSlugLen caps the title part of a generated filename.
const maxSlugLen = 50

// Synthesize builds "Surname_Year_Title.pdf" from whatever metadata fields
// are present, omitting segments that are empty. With neither a title nor
// an author to work from it returns fallback unchanged. The function is
// pure: equal inputs always produce equal outputs.
func Synthesize(meta types.Metadata, fallback string) string {
	surname := slugChars(surnameOf(meta.FirstAuthor()))
	titleSlug := Slugify(meta.Title)

	if surname == "" && titleSlug == "" {
		return fallback
	}

	var parts []string
	if surname != "" {
		parts = append(parts, surname)
	}
	if meta.Year != 0 {
		parts = append(parts, strconv.Itoa(meta.Year))
	}
	if titleSlug != "" {
		parts = append(parts, titleSlug)
	}

	return strings.Join(parts, "_") + ".pdf"
}

// Slugify converts a title into a filename-safe slug: diacritics folded to
// ASCII, punctuation dropped, whitespace runs collapsed to single
// underscores, and the result truncated at a word boundary.
func Slugify(title string) string {
	return truncateSlug(slugChars(title), maxSlugLen)
}

// surnameOf extracts the family name: the part before a comma when one is
// present ("Vaswani, Ashish"), otherwise the last whitespace token
// ("Ashish Vaswani").
func surnameOf(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return ""
	}
	if i := strings.Index(author, ","); i >= 0 {
		return strings.TrimSpace(author[:i])
	}
	fields := strings.Fields(author)
	return fields[len(fields)-1]
}

// slugChars folds diacritics, keeps letters and digits, and joins words
// with underscores. Everything else disappears.
func slugChars(s string) string {
	s = foldDiacritics(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), "_")
}

// foldDiacritics strips combining marks: "Müller" becomes "Muller". The
// transformer chain is built per call; chains carry internal buffers and
// sharing one would make the function unsafe for concurrent use.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// truncateSlug cuts slug to max bytes without leaving a dangling partial
// word: when the cut lands inside a word the slug retreats to the previous
// underscore. A single word longer than max is cut hard.
func truncateSlug(slug string, max int) string {
	if len(slug) <= max {
		return slug
	}
	cut := slug[:max]
	if slug[max] != '_' {
		if i := strings.LastIndex(cut, "_"); i >= 0 {
			cut = cut[:i]
		}
	}
	return strings.Trim(cut, "_")
}
