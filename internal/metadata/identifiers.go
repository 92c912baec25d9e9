// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Match is an identifier found in page text, ranked by how explicit its
// surrounding context was.
type Match struct {
	Value      string
	Confidence float64
}

type pattern struct {
	re         *regexp.Regexp
	confidence float64
}

// DOI references, most explicit context first. A labeled "doi:" beats a
// doi.org URL beats a bare match in running text.
var doiPatterns = []pattern{
	{regexp.MustCompile(`(?i)\bdoi\s*[:=]\s*(10\.\d{4,9}/[^\s"<>\]]+)`), 1.0},
	{regexp.MustCompile(`(?i)https?://(?:dx\.)?doi\.org/(10\.\d{4,9}/[^\s"<>\]]+)`), 0.95},
	{regexp.MustCompile(`\b(10\.\d{4,9}/[^\s"<>\]]+)`), 0.8},
}

// arXiv identifiers, new-style (YYMM.NNNNN) and old-style
// (category/YYMMNNN), each with labeled, URL and bare variants.
var arxivPatterns = []pattern{
	{regexp.MustCompile(`(?i)\barxiv\s*:\s*(\d{4}\.\d{4,5}(?:v\d+)?)\b`), 1.0},
	{regexp.MustCompile(`(?i)https?://arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5}(?:v\d+)?)`), 0.95},
	{regexp.MustCompile(`\b(\d{4}\.\d{4,5}(?:v\d+)?)\b`), 0.7},
	{regexp.MustCompile(`(?i)\barxiv\s*:\s*([a-z-]+(?:\.[A-Z]{2})?/\d{7})\b`), 1.0},
	{regexp.MustCompile(`(?i)https?://arxiv\.org/(?:abs|pdf)/([a-z-]+(?:\.[A-Z]{2})?/\d{7})`), 0.95},
	{regexp.MustCompile(`\b([a-z-]+(?:\.[A-Z]{2})?/\d{7})\b`), 0.6},
}

// FindDOIs scans text for DOI references, highest confidence first.
func FindDOIs(text string) []Match {
	found := map[string]float64{}
	for _, p := range doiPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			v := cleanDOI(m[1])
			if !validDOI(v) {
				continue
			}
			if c, ok := found[v]; !ok || p.confidence > c {
				found[v] = p.confidence
			}
		}
	}
	return rank(found)
}

// FindArxivIDs scans text for arXiv identifiers, highest confidence first.
func FindArxivIDs(text string) []Match {
	found := map[string]float64{}
	for _, p := range arxivPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			v := m[1]
			if !validArxivID(v) {
				continue
			}
			if c, ok := found[v]; !ok || p.confidence > c {
				found[v] = p.confidence
			}
		}
	}
	return rank(found)
}

func rank(found map[string]float64) []Match {
	matches := make([]Match, 0, len(found))
	for v, c := range found {
		matches = append(matches, Match{Value: v, Confidence: c})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Value < matches[j].Value
	})
	return matches
}

// cleanDOI strips sentence punctuation that regularly trails a DOI in
// running text.
func cleanDOI(s string) string {
	return strings.TrimRight(s, `.,;:)]}"'`)
}

func validDOI(s string) bool {
	if !strings.HasPrefix(s, "10.") {
		return false
	}
	slash := strings.Index(s, "/")
	return slash > 3 && slash < len(s)-1
}

// oldArxivArchives are the pre-2007 archive names that may prefix an
// old-style identifier. Anything else before the slash is a URL fragment or
// similar noise, not an arXiv ID.
var oldArxivArchives = map[string]bool{
	"alg-geom": true, "astro-ph": true, "cmp-lg": true, "cond-mat": true,
	"cs": true, "gr-qc": true, "hep-ex": true, "hep-lat": true,
	"hep-ph": true, "hep-th": true, "math": true, "math-ph": true,
	"nlin": true, "nucl-ex": true, "nucl-th": true, "physics": true,
	"q-alg": true, "q-bio": true, "q-fin": true, "quant-ph": true,
	"stat": true,
}

// validArxivID rejects matches that merely look like arXiv IDs: the month
// part of a new-style ID must be a real month, and the archive of an
// old-style ID must be one arXiv ever used.
func validArxivID(s string) bool {
	if i := strings.Index(s, "/"); i >= 0 {
		archive := s[:i]
		if dot := strings.Index(archive, "."); dot >= 0 {
			archive = archive[:dot]
		}
		return oldArxivArchives[strings.ToLower(archive)] && len(s)-i-1 == 7
	}
	dot := strings.Index(s, ".")
	if dot != 4 {
		return false
	}
	month, err := strconv.Atoi(s[2:4])
	return err == nil && month >= 1 && month <= 12
}
